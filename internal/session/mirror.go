package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// Mirror is a local copy of a remote collection. Every snapshot replaces the
// list wholesale and is re-sorted before anyone sees it.
type Mirror[T any] struct {
	mu       sync.RWMutex
	items    []T
	sortFn   func([]T)
	onUpdate func([]T)
}

func NewMirror[T any](sortFn func([]T), onUpdate func([]T)) *Mirror[T] {
	return &Mirror[T]{sortFn: sortFn, onUpdate: onUpdate}
}

// Apply installs a new full snapshot.
func (m *Mirror[T]) Apply(snapshot []T) {
	items := make([]T, len(snapshot))
	copy(items, snapshot)
	if m.sortFn != nil {
		m.sortFn(items)
	}

	m.mu.Lock()
	m.items = items
	m.mu.Unlock()

	if m.onUpdate != nil {
		m.onUpdate(m.Items())
	}
}

// Items returns a copy of the current list.
func (m *Mirror[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Sources are the live feeds a session mirrors.
type Sources interface {
	WatchNotes(ctx context.Context, owner string, fn func([]models.Note)) (store.Subscription, error)
	WatchCareLogs(ctx context.Context, owner string, fn func([]models.CareLog)) (store.Subscription, error)
	WatchReminders(ctx context.Context, owner string, fn func([]models.Reminder)) (store.Subscription, error)
}

// Listener receives every mirror update; nil fields are ignored.
type Listener struct {
	Notes     func([]models.Note)
	Care      func([]models.CareLog)
	Reminders func([]models.Reminder)
}

// Mirrors groups the three per-user mirrors.
type Mirrors struct {
	Notes     *Mirror[models.Note]
	Care      *Mirror[models.CareLog]
	Reminders *Mirror[models.Reminder]
}

// OpenMirrors subscribes to the user's notes, care logs and reminders. Each
// subscription is tracked by sess, so closing the session cancels them; on
// error the caller should close the session.
func OpenMirrors(ctx context.Context, sess *Session, src Sources, l Listener) (*Mirrors, error) {
	if err := Require(sess); err != nil {
		return nil, err
	}
	owner := sess.Email()
	m := &Mirrors{
		Notes:     NewMirror(models.SortNotes, l.Notes),
		Care:      NewMirror(models.SortCareLogs, l.Care),
		Reminders: NewMirror(models.SortReminders, l.Reminders),
	}

	sub, err := src.WatchNotes(ctx, owner, m.Notes.Apply)
	if err != nil {
		return nil, fmt.Errorf("watch notes: %w", err)
	}
	sess.Track(sub)

	sub, err = src.WatchCareLogs(ctx, owner, m.Care.Apply)
	if err != nil {
		return nil, fmt.Errorf("watch care logs: %w", err)
	}
	sess.Track(sub)

	sub, err = src.WatchReminders(ctx, owner, m.Reminders.Apply)
	if err != nil {
		return nil, fmt.Errorf("watch reminders: %w", err)
	}
	sess.Track(sub)

	return m, nil
}
