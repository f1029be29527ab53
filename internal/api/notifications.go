package api

import (
	"context"

	"github.com/teamup-platform/teamup-cli/internal/model"
)

// Notifications returns the caller's inbox, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var resp struct {
		Items []model.Notification `json:"items"`
	}
	if err := c.Get(ctx, "/notifications", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UnreadCount returns the server-side unread notification count. It may
// cover items not present in the current listing page.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.Get(ctx, "/notifications/unread-count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.Post(ctx, "/notifications/"+id+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Post(ctx, "/notifications/read-all", nil, nil)
}

// ClearNotifications empties the caller's inbox.
func (c *Client) ClearNotifications(ctx context.Context) error {
	return c.Post(ctx, "/notifications/clear", nil, nil)
}
