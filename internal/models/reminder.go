package models

import (
	"sort"
	"time"
)

// TimeLayout is the wall-clock format of a reminder's time field.
const TimeLayout = "15:04"

type Reminder struct {
	ID        string `bson:"-" json:"id"`
	Title     string `bson:"title" json:"title" validate:"required"`
	Date      string `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `bson:"time" json:"time" validate:"required,datetime=15:04"`
	Completed bool   `bson:"completed" json:"completed"`
}

// ReminderInput is the body of a reminder creation request.
type ReminderInput struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// DueAt returns the moment the reminder falls due in loc.
func (r Reminder) DueAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+"T"+TimeLayout, r.Date+"T"+r.Time, loc)
}

func (r Reminder) dueKey() string {
	return r.Date + "T" + r.Time
}

// SortReminders orders reminders by date and time, earliest first.
func SortReminders(reminders []Reminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].dueKey() < reminders[j].dueKey()
	})
}
