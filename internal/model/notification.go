package model

import "time"

// Entity reference types a notification may point at. Notifications with
// any other (or no) entity type do not navigate on click.
const (
	EntityCourse     = "course"
	EntityAssignment = "assignment"
)

// Notification is one inbox entry as returned by the server.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Type is the server-side category tag (e.g. "assignment_graded").
	Type string `json:"type"`

	// Title is the headline text.
	Title string `json:"title"`

	// Body is optional detail text.
	Body string `json:"body,omitempty"`

	// EntityType and EntityID reference the resource this notification is
	// about; both empty when there is nothing to navigate to.
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`

	// IsRead indicates whether the user has opened this notification.
	IsRead bool `json:"is_read"`

	// CreatedAt is when the server generated this notification.
	CreatedAt time.Time `json:"created_at"`
}
