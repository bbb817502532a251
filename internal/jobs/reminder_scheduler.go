package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
)

const notifyTimeout = 30 * time.Second

type armed struct {
	timer *time.Timer
	due   time.Time
}

// ReminderScheduler keeps one timer per pending reminder and notifies the
// owner when it fires. Reminders whose due time has passed are never armed.
type ReminderScheduler struct {
	notifier Notifier
	loc      *time.Location
	now      func() time.Time

	mu      sync.Mutex
	timers  map[string]*armed
	stopped bool
	wg      sync.WaitGroup
}

// NewReminderScheduler creates a scheduler that reads reminder dates and
// times in loc.
func NewReminderScheduler(notifier Notifier, loc *time.Location) *ReminderScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderScheduler{
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		timers:   make(map[string]*armed),
	}
}

func timerKey(owner, reminderID string) string {
	return owner + "|" + reminderID
}

// Schedule arms the reminder if it is open and due in the future, and
// reports whether a timer is now armed for it. Scheduling an already armed
// reminder with an unchanged due time keeps the existing timer.
func (s *ReminderScheduler) Schedule(owner string, r models.Reminder) bool {
	key := timerKey(owner, r.ID)
	if r.Completed {
		s.Cancel(owner, r.ID)
		return false
	}

	due, err := r.DueAt(s.loc)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"reminderID": r.ID,
			"error":      err,
		}).Warn("Reminder has an unreadable due time")
		return false
	}
	delay := due.Sub(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if prev, ok := s.timers[key]; ok {
		if prev.due.Equal(due) && delay > 0 {
			return true
		}
		prev.timer.Stop()
		delete(s.timers, key)
	}
	if delay <= 0 {
		return false
	}

	a := &armed{due: due}
	a.timer = time.AfterFunc(delay, func() { s.fire(key, owner, r, a) })
	s.timers[key] = a

	logrus.WithFields(logrus.Fields{
		"owner":      owner,
		"reminderID": r.ID,
		"due":        due,
	}).Debug("Reminder armed")
	return true
}

// Cancel disarms the reminder; unknown reminders are ignored.
func (s *ReminderScheduler) Cancel(owner, reminderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey(owner, reminderID)
	if a, ok := s.timers[key]; ok {
		a.timer.Stop()
		delete(s.timers, key)
	}
}

// Pending returns the number of armed timers.
func (s *ReminderScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer and waits for notifications already firing.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key, a := range s.timers {
		a.timer.Stop()
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ReminderScheduler) fire(key, owner string, r models.Reminder, a *armed) {
	s.mu.Lock()
	if s.stopped || s.timers[key] != a {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	n := models.ReminderNotification(r, s.now())
	if err := s.notifier.Notify(ctx, owner, n); err != nil {
		logrus.WithFields(logrus.Fields{
			"owner":      owner,
			"reminderID": r.ID,
			"error":      err,
		}).Error("Failed to deliver reminder")
		return
	}
	logrus.WithFields(logrus.Fields{
		"owner":      owner,
		"reminderID": r.ID,
	}).Info("Reminder delivered")
}

// UserLister lists the keys of all user profiles.
type UserLister interface {
	ListUserKeys(ctx context.Context) ([]string, error)
}

// ReminderLister lists one user's reminders.
type ReminderLister interface {
	ListReminders(ctx context.Context, owner string) ([]models.Reminder, error)
}

// Recovery re-arms reminders from storage so timers survive restarts.
type Recovery struct {
	Users     UserLister
	Reminders ReminderLister
	Scheduler *ReminderScheduler
}

// Run scans every user's reminders and arms the open future ones. A user
// whose reminders cannot be read is skipped. Run is safe to repeat.
func (r *Recovery) Run(ctx context.Context) error {
	owners, err := r.Users.ListUserKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	armedCount, skipped := 0, 0
	for _, owner := range owners {
		reminders, err := r.Reminders.ListReminders(ctx, owner)
		if err != nil {
			skipped++
			logrus.WithFields(logrus.Fields{
				"owner": owner,
				"error": err,
			}).Warn("Failed to load reminders for recovery")
			continue
		}
		for _, rem := range reminders {
			if r.Scheduler.Schedule(owner, rem) {
				armedCount++
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"users":   len(owners),
		"armed":   armedCount,
		"skipped": skipped,
	}).Info("Reminder recovery completed")
	return nil
}

// Location is the zone reminder dates and times are read in.
func (s *ReminderScheduler) Location() *time.Location {
	return s.loc
}
