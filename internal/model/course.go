package model

// Quiz is a single question attached to a chapter.
type Quiz struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`

	// Type is "choice" or "text"; empty means "choice".
	Type string `json:"type,omitempty"`
}

// Chapter is a unit of course content with an optional quiz.
type Chapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Quiz      []Quiz `json:"quiz"`
	Completed bool   `json:"completed,omitempty"`
}

// Course as returned by the course listing and detail endpoints.
// Progress and Enrolled are only meaningful on user-scoped listings.
type Course struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ImageURL         string    `json:"imageUrl"`
	Chapters         []Chapter `json:"chapters"`
	Progress         float64   `json:"progress,omitempty"`
	Enrolled         bool      `json:"enrolled,omitempty"`
	EnrollmentCode   string    `json:"enrollmentCode,omitempty"`
	EstimatedMinutes *int      `json:"estimatedMinutes,omitempty"`
}

// QuizResult is the grading outcome of a quiz submission.
type QuizResult struct {
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	CorrectAnswers int     `json:"correctAnswers"`
	TotalQuestions int     `json:"totalQuestions"`
}
