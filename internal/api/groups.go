package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// GroupFilter narrows the admin group listing.
type GroupFilter struct {
	CourseID string
	OwnerID  string
	Status   string
}

// Groups lists groups, optionally filtered.
func (c *Client) Groups(ctx context.Context, filter GroupFilter) ([]model.GroupSummary, error) {
	params := url.Values{}
	if filter.CourseID != "" {
		params.Set("course_id", filter.CourseID)
	}
	if filter.OwnerID != "" {
		params.Set("owner_id", filter.OwnerID)
	}
	if filter.Status != "" {
		params.Set("status_filter", filter.Status)
	}

	path := "/admin/groups"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var groups []model.GroupSummary
	if err := c.Get(ctx, path, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a new study group.
func (c *Client) CreateGroup(ctx context.Context, payload model.GroupCreate) (*model.GroupDetail, error) {
	var detail model.GroupDetail
	if err := c.Post(ctx, "/admin/groups", payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Group returns one group with members and courses.
func (c *Client) Group(ctx context.Context, groupID string) (*model.GroupDetail, error) {
	var detail model.GroupDetail
	if err := c.Get(ctx, "/admin/groups/"+groupID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateGroup edits a group's name, description, or status.
func (c *Client) UpdateGroup(ctx context.Context, groupID string, payload model.GroupUpdate) (*model.GroupDetail, error) {
	var detail model.GroupDetail
	if err := c.Patch(ctx, "/admin/groups/"+groupID, payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ArchiveGroup retires a group.
func (c *Client) ArchiveGroup(ctx context.Context, groupID string) error {
	return c.Delete(ctx, "/admin/groups/"+groupID)
}

// AddGroupMember adds a user to a group by id or email.
func (c *Client) AddGroupMember(ctx context.Context, groupID string, payload model.GroupMemberAdd) (*model.GroupDetail, error) {
	var detail model.GroupDetail
	if err := c.Post(ctx, "/admin/groups/"+groupID+"/members", payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// RemoveGroupMember removes a user from a group.
func (c *Client) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return c.Delete(ctx, fmt.Sprintf("/admin/groups/%s/members/%s", groupID, userID))
}

// EnrollGroup enrolls every member of a group into a course.
func (c *Client) EnrollGroup(ctx context.Context, groupID, courseID string) (*model.GroupDetail, error) {
	var detail model.GroupDetail
	path := fmt.Sprintf("/admin/groups/%s/courses/%s/enroll", groupID, courseID)
	if err := c.Post(ctx, path, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CourseParticipants returns the enrolled-user roster of a course with
// each participant's group memberships.
func (c *Client) CourseParticipants(ctx context.Context, courseID string) (*model.CourseParticipants, error) {
	var roster model.CourseParticipants
	if err := c.Get(ctx, "/admin/courses/"+courseID+"/participants", &roster); err != nil {
		return nil, err
	}
	return &roster, nil
}
