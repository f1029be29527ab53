package api

import (
	"context"
	"fmt"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Courses returns the full course catalog.
func (c *Client) Courses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.Get(ctx, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// UserCourses returns the courses the caller is enrolled in, with progress.
func (c *Client) UserCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	if err := c.Get(ctx, "/courses/user", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Course returns one course with its chapter list.
func (c *Client) Course(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	if err := c.Get(ctx, "/courses/"+courseID, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Chapter returns one chapter's content and quiz.
func (c *Client) Chapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error) {
	path := fmt.Sprintf("/courses/%s/chapters/%s", courseID, chapterID)
	var chapter model.Chapter
	if err := c.Get(ctx, path, &chapter); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// CompleteChapter records the chapter as finished for the caller.
func (c *Client) CompleteChapter(ctx context.Context, courseID, chapterID string) error {
	path := fmt.Sprintf("/courses/%s/chapters/%s/complete", courseID, chapterID)
	return c.Post(ctx, path, nil, nil)
}

// SubmitQuiz grades the caller's answers for a chapter quiz. Answers are
// keyed by question id; choice questions carry the selected option index,
// text questions the free-form answer.
func (c *Client) SubmitQuiz(
	ctx context.Context,
	courseID, chapterID string,
	answers map[string]interface{},
) (*model.QuizResult, error) {
	path := fmt.Sprintf("/courses/%s/chapters/%s/quiz", courseID, chapterID)
	body := map[string]interface{}{"answers": answers}

	var result model.QuizResult
	if err := c.Post(ctx, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Participate enrolls the caller into a course using its enrollment code.
func (c *Client) Participate(ctx context.Context, courseID, enrollmentCode string) error {
	body := map[string]string{"enrollmentCode": enrollmentCode}
	return c.Post(ctx, "/courses/"+courseID+"/participate", body, nil)
}

// CourseAssignments lists the assignments of a course visible to the caller.
func (c *Client) CourseAssignments(ctx context.Context, courseID string) ([]model.AssignmentShort, error) {
	var assignments []model.AssignmentShort
	if err := c.Get(ctx, "/courses/"+courseID+"/assignments", &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}
