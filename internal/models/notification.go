package models

import "time"

// Notification kinds pushed to clients.
const (
	NotificationSystem = "notification" // shown by the OS when permission was granted
	NotificationToast  = "toast"        // in-app transient message
)

// Notification is a reminder alert delivered to a user.
type Notification struct {
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	ReminderID string    `json:"reminderId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReminderNotification builds the alert for a due reminder.
func ReminderNotification(r Reminder, now time.Time) Notification {
	return Notification{
		Title:      "Reminder",
		Message:    r.Title,
		ReminderID: r.ID,
		CreatedAt:  now,
	}
}
