package model

// AssignmentShort is the listing shape for course assignments.
type AssignmentShort struct {
	ID        string  `json:"id"`
	CourseID  string  `json:"courseId"`
	ChapterID *string `json:"chapterId,omitempty"`
	Title     string  `json:"title"`
	DueDate   *string `json:"dueDate,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// AssignmentDetail is the full assignment record.
type AssignmentDetail struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"courseId"`
	ChapterID   *string `json:"chapterId,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt,omitempty"`
}

// AssignmentCreate is the admin payload for creating an assignment.
type AssignmentCreate struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate,omitempty"`
	ChapterID   *string `json:"chapterId,omitempty"`
}

// AssignmentUpdate is the admin payload for editing an assignment.
// Nil fields are left unchanged.
type AssignmentUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	ChapterID   *string `json:"chapterId,omitempty"`
}

// SubmissionCreate is the student payload for handing in work.
type SubmissionCreate struct {
	RepositoryURL string `json:"repositoryUrl,omitempty"`
	TextAnswer    string `json:"textAnswer,omitempty"`
}

// SubmissionSummary is the listing shape for an assignment's submissions.
type SubmissionSummary struct {
	ID           string   `json:"id"`
	AssignmentID string   `json:"assignmentId"`
	UserID       string   `json:"userId"`
	UserName     string   `json:"userName"`
	CreatedAt    string   `json:"createdAt"`
	Grade        *float64 `json:"grade,omitempty"`
	Feedback     *string  `json:"feedback,omitempty"`
	GradedAt     *string  `json:"gradedAt,omitempty"`
}

// SubmissionDetail is the full submission record including grading state.
type SubmissionDetail struct {
	ID            string   `json:"id"`
	AssignmentID  string   `json:"assignmentId"`
	UserID        string   `json:"userId"`
	UserName      string   `json:"userName"`
	UserEmail     string   `json:"userEmail"`
	RepositoryURL *string  `json:"repositoryUrl,omitempty"`
	TextAnswer    *string  `json:"textAnswer,omitempty"`
	Grade         *float64 `json:"grade,omitempty"`
	Feedback      *string  `json:"feedback,omitempty"`
	GradedAt      *string  `json:"gradedAt,omitempty"`
	GradedBy      *string  `json:"gradedBy,omitempty"`
	CreatedAt     *string  `json:"createdAt,omitempty"`
}

// Grade is the admin payload for grading a submission.
type Grade struct {
	Grade    *float64 `json:"grade,omitempty"`
	Feedback *string  `json:"feedback,omitempty"`
}

// MyAssignmentWork summarizes the caller's standing on one assignment.
type MyAssignmentWork struct {
	AssignmentID       string   `json:"assignmentId"`
	AssignmentTitle    string   `json:"assignmentTitle"`
	CourseID           string   `json:"courseId"`
	CourseTitle        string   `json:"courseTitle"`
	LatestSubmissionID *string  `json:"latestSubmissionId,omitempty"`
	LatestCreatedAt    *string  `json:"latestCreatedAt,omitempty"`
	Grade              *float64 `json:"grade,omitempty"`
	Feedback           *string  `json:"feedback,omitempty"`
	GradedAt           *string  `json:"gradedAt,omitempty"`
}
