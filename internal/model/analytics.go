package model

// CourseAnalytics is the per-course row in the admin analytics overview.
type CourseAnalytics struct {
	CourseID         string  `json:"courseId"`
	Title            string  `json:"title"`
	TotalEnrollments int     `json:"totalEnrollments"`
	CompletionRate   float64 `json:"completionRate"`
}

// AnalyticsOverview is the platform-wide admin analytics snapshot.
type AnalyticsOverview struct {
	TotalUsers            int               `json:"totalUsers"`
	TotalAdmins           int               `json:"totalAdmins"`
	TotalStudents         int               `json:"totalStudents"`
	TotalCourses          int               `json:"totalCourses"`
	TotalChapters         int               `json:"totalChapters"`
	TotalQuizzes          int               `json:"totalQuizzes"`
	TotalEnrollments      int               `json:"totalEnrollments"`
	TotalCompletedCh      int               `json:"totalCompletedChapters"`
	AverageCompletionRate float64           `json:"averageCompletionRate"`
	Courses               []CourseAnalytics `json:"courses"`
}

// CourseUserProgress is one user's progress row in the per-course report.
type CourseUserProgress struct {
	UserID              string  `json:"userId"`
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Progress            float64 `json:"progress"`
	CompletedChapters   int     `json:"completedChapters"`
	CurrentChapterOrder *int    `json:"currentChapterOrder,omitempty"`
	CurrentChapterTitle *string `json:"currentChapterTitle,omitempty"`
}

// CourseUsersAnalytics is the admin per-course progress report.
type CourseUsersAnalytics struct {
	CourseID      string               `json:"courseId"`
	Title         string               `json:"title"`
	TotalChapters int                  `json:"totalChapters"`
	Users         []CourseUserProgress `json:"users"`
}
