package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortNotesNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := []Note{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
	}
	SortNotes(notes)
	assert.Equal(t, "new", notes[0].ID)
	assert.Equal(t, "mid", notes[1].ID)
	assert.Equal(t, "old", notes[2].ID)
}

func TestSortCareLogsByDateDescending(t *testing.T) {
	logs := []CareLog{{Date: "2024-01-02"}, {Date: "2023-12-31"}, {Date: "2024-02-01"}}
	SortCareLogs(logs)
	assert.Equal(t, []string{"2024-02-01", "2024-01-02", "2023-12-31"},
		[]string{logs[0].Date, logs[1].Date, logs[2].Date})
}

func TestSortRemindersByDueTimeAscending(t *testing.T) {
	reminders := []Reminder{
		{ID: "c", Date: "2024-01-02", Time: "08:00"},
		{ID: "a", Date: "2024-01-01", Time: "09:30"},
		{ID: "b", Date: "2024-01-01", Time: "17:00"},
	}
	SortReminders(reminders)
	assert.Equal(t, "a", reminders[0].ID)
	assert.Equal(t, "b", reminders[1].ID)
	assert.Equal(t, "c", reminders[2].ID)
}

func TestFilterNotesMatchesTitleContentAndTags(t *testing.T) {
	notes := []Note{
		{ID: "1", Title: "Groceries", Content: "milk"},
		{ID: "2", Title: "Work", Content: "Quarterly REPORT"},
		{ID: "3", Title: "Misc", Tags: []string{"Health"}},
	}

	assert.Len(t, FilterNotes(notes, ""), 3)
	assert.Equal(t, "2", FilterNotes(notes, "report")[0].ID)
	assert.Equal(t, "3", FilterNotes(notes, "heal")[0].ID)
	assert.Equal(t, "1", FilterNotes(notes, "GROC")[0].ID)
	assert.Empty(t, FilterNotes(notes, "nothing"))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"work", "urgent"}, ParseTags(" work, ,urgent ,"))
	assert.Empty(t, ParseTags(""))
}

func TestNoteUpdateApply(t *testing.T) {
	title := "X2"
	n := NoteUpdate{Title: &title}.Apply(Note{ID: "1", Title: "X", Content: "Y"})
	assert.Equal(t, "X2", n.Title)
	assert.Equal(t, "Y", n.Content)
	assert.True(t, NoteUpdate{}.Empty())
}

func TestReminderDueAt(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	due, err := Reminder{Date: "2024-03-10", Time: "07:45"}.DueAt(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 7, 45, 0, 0, time.UTC), due)

	_, err = Reminder{Date: "2024-03-10", Time: "7pm"}.DueAt(loc)
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", NormalizeEmail("  A@Example.COM "))
}
