package repository

import (
	"context"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// Feeds bundles the live feeds of the three per-user subcollections.
type Feeds struct {
	Notes     *NoteRepository
	Care      *CareRepository
	Reminders *ReminderRepository
}

func (f Feeds) WatchNotes(ctx context.Context, owner string, fn func([]models.Note)) (store.Subscription, error) {
	return f.Notes.WatchNotes(ctx, owner, fn)
}

func (f Feeds) WatchCareLogs(ctx context.Context, owner string, fn func([]models.CareLog)) (store.Subscription, error) {
	return f.Care.WatchCareLogs(ctx, owner, fn)
}

func (f Feeds) WatchReminders(ctx context.Context, owner string, fn func([]models.Reminder)) (store.Subscription, error) {
	return f.Reminders.WatchReminders(ctx, owner, fn)
}
