package model

// GroupSummary is the admin group listing shape.
type GroupSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	OwnerID     *string `json:"ownerId,omitempty"`
	MemberCount int     `json:"memberCount"`
	CourseCount int     `json:"courseCount"`
}

// GroupMember is one member row inside a group detail.
type GroupMember struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// GroupCourse is one enrolled course row inside a group detail.
type GroupCourse struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
}

// GroupDetail is the full group record with members and courses.
type GroupDetail struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      string        `json:"status"`
	OwnerID     *string       `json:"ownerId,omitempty"`
	Members     []GroupMember `json:"members"`
	Courses     []GroupCourse `json:"courses"`
}

// GroupCreate is the admin payload for creating a group.
type GroupCreate struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CourseID    *string `json:"courseId,omitempty"`
}

// GroupUpdate is the admin payload for editing a group.
type GroupUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// GroupMemberAdd identifies a user to add to a group, by id or email.
type GroupMemberAdd struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ParticipantGroup names one group a course participant belongs to.
type ParticipantGroup struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

// CourseParticipant is one enrolled user with their group memberships.
type CourseParticipant struct {
	UserID string             `json:"userId"`
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Groups []ParticipantGroup `json:"groups"`
}

// CourseParticipants is the admin roster for one course.
type CourseParticipants struct {
	CourseID     string              `json:"courseId"`
	Title        string              `json:"title"`
	Participants []CourseParticipant `json:"participants"`
}
