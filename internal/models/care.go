package models

import "sort"

type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodBad   Mood = "bad"
)

// DateLayout is the calendar date format used for care logs and reminders.
const DateLayout = "2006-01-02"

// CareLog is one day of personal-care metrics. Date is also the document
// key, so a user has at most one log per date.
type CareLog struct {
	WaterIntake     int     `bson:"waterIntake" json:"waterIntake" validate:"gte=0"`
	SleepHours      float64 `bson:"sleepHours" json:"sleepHours" validate:"gte=0,lte=24"`
	ExerciseMinutes int     `bson:"exerciseMinutes" json:"exerciseMinutes" validate:"gte=0"`
	Mood            Mood    `bson:"mood" json:"mood" validate:"oneof=great good okay bad"`
	Date            string  `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
}

// SortCareLogs orders logs by date, most recent first. Dates are validated
// YYYY-MM-DD strings, so lexical order is calendar order.
func SortCareLogs(logs []CareLog) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date > logs[j].Date
	})
}
