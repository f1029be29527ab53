package api

import (
	"context"
	"fmt"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Users lists accounts, optionally filtered by role.
func (c *Client) Users(ctx context.Context, role string) ([]model.User, error) {
	path := "/admin/users"
	if role != "" {
		path += "?role=" + role
	}

	var users []model.User
	if err := c.Get(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User returns one account.
func (c *Client) User(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/admin/users/"+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser edits an account's name or email.
func (c *Client) UpdateUser(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error) {
	var user model.User
	if err := c.Patch(ctx, "/admin/users/"+userID, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.Delete(ctx, "/admin/users/"+userID)
}

// Analytics returns the platform-wide analytics overview.
func (c *Client) Analytics(ctx context.Context) (*model.AnalyticsOverview, error) {
	var overview model.AnalyticsOverview
	if err := c.Get(ctx, "/admin/analytics", &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// CourseUsersAnalytics returns per-user progress for one course.
func (c *Client) CourseUsersAnalytics(ctx context.Context, courseID string) (*model.CourseUsersAnalytics, error) {
	var report model.CourseUsersAnalytics
	path := fmt.Sprintf("/admin/analytics/courses/%s/users", courseID)
	if err := c.Get(ctx, path, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateCourse creates a course with its chapters.
func (c *Client) CreateCourse(ctx context.Context, course model.Course) (*model.Course, error) {
	var created model.Course
	if err := c.Post(ctx, "/admin/courses", course, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCourse replaces a course's content.
func (c *Client) UpdateCourse(ctx context.Context, courseID string, course model.Course) (*model.Course, error) {
	var updated model.Course
	if err := c.Put(ctx, "/admin/courses/"+courseID, course, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.Delete(ctx, "/admin/courses/"+courseID)
}

// EnrollUser enrolls a single user into a course by email.
func (c *Client) EnrollUser(ctx context.Context, courseID, email string) error {
	body := map[string]string{"email": email}
	return c.Post(ctx, "/admin/courses/"+courseID+"/enroll-user", body, nil)
}

// AdminCourseAssignments lists every assignment of a course.
func (c *Client) AdminCourseAssignments(ctx context.Context, courseID string) ([]model.AssignmentShort, error) {
	var assignments []model.AssignmentShort
	if err := c.Get(ctx, "/admin/courses/"+courseID+"/assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// CreateAssignment adds an assignment to a course.
func (c *Client) CreateAssignment(
	ctx context.Context,
	courseID string,
	payload model.AssignmentCreate,
) (*model.AssignmentDetail, error) {
	var detail model.AssignmentDetail
	if err := c.Post(ctx, "/admin/courses/"+courseID+"/assignments", payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateAssignment edits an assignment.
func (c *Client) UpdateAssignment(
	ctx context.Context,
	assignmentID string,
	payload model.AssignmentUpdate,
) (*model.AssignmentDetail, error) {
	var detail model.AssignmentDetail
	if err := c.Patch(ctx, "/admin/assignments/"+assignmentID, payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// DeleteAssignment removes an assignment.
func (c *Client) DeleteAssignment(ctx context.Context, assignmentID string) error {
	return c.Delete(ctx, "/admin/assignments/"+assignmentID)
}
