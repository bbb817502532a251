package models

// AdminStats is the cross-user usage summary shown on the admin dashboard.
// FailedUsers lists users whose counts could not be read; they count as zero.
type AdminStats struct {
	UserCount     int      `json:"userCount"`
	TotalNotes    int64    `json:"totalNotes"`
	TotalCareLogs int64    `json:"totalCareLogs"`
	FailedUsers   []string `json:"failedUsers,omitempty"`
}

// Dashboard is the landing summary of a signed-in user.
type Dashboard struct {
	Profile     UserProfile `json:"profile"`
	RecentCare  []CareLog   `json:"recentCare"`
	RecentNotes []Note      `json:"recentNotes"`
}

const (
	DashboardCareLimit = 5
	DashboardNoteLimit = 3
)
