package api

import (
	"context"
	"fmt"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Assignment returns one assignment's full record.
func (c *Client) Assignment(ctx context.Context, assignmentID string) (*model.AssignmentDetail, error) {
	var detail model.AssignmentDetail
	if err := c.Get(ctx, "/assignments/"+assignmentID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateSubmission hands in work for an assignment.
func (c *Client) CreateSubmission(
	ctx context.Context,
	assignmentID string,
	payload model.SubmissionCreate,
) (*model.SubmissionDetail, error) {
	var detail model.SubmissionDetail
	path := "/assignments/" + assignmentID + "/submissions"
	if err := c.Post(ctx, path, payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Submissions lists an assignment's submissions. For students the server
// scopes the list to their own; admins see everyone's.
func (c *Client) Submissions(ctx context.Context, assignmentID string) ([]model.SubmissionSummary, error) {
	var subs []model.SubmissionSummary
	path := "/assignments/" + assignmentID + "/submissions"
	if err := c.Get(ctx, path, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Submission returns one submission with grading state.
func (c *Client) Submission(ctx context.Context, assignmentID, submissionID string) (*model.SubmissionDetail, error) {
	var detail model.SubmissionDetail
	path := fmt.Sprintf("/assignments/%s/submissions/%s", assignmentID, submissionID)
	if err := c.Get(ctx, path, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GradeSubmission records a grade and feedback on a submission.
func (c *Client) GradeSubmission(
	ctx context.Context,
	assignmentID, submissionID string,
	payload model.Grade,
) (*model.SubmissionDetail, error) {
	var detail model.SubmissionDetail
	path := fmt.Sprintf("/assignments/%s/submissions/%s/grade", assignmentID, submissionID)
	if err := c.Post(ctx, path, payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// MyAssignments summarizes the caller's standing across all assignments.
func (c *Client) MyAssignments(ctx context.Context) ([]model.MyAssignmentWork, error) {
	var resp struct {
		Items []model.MyAssignmentWork `json:"items"`
	}
	if err := c.Get(ctx, "/users/me/assignments", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
