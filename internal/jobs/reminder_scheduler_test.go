package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type inbox struct {
	mu   sync.Mutex
	got  []models.Notification
	fail error
}

func (i *inbox) Notify(_ context.Context, owner string, n models.Notification) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fail != nil {
		return i.fail
	}
	i.got = append(i.got, n)
	return nil
}

func (i *inbox) count() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.got)
}

var dueReminder = models.Reminder{ID: "r1", Title: "Dentist", Date: "2030-01-01", Time: "09:00"}

// newScheduler returns a scheduler whose clock sits lead before dueReminder.
func newScheduler(t *testing.T, n Notifier, lead time.Duration) *ReminderScheduler {
	t.Helper()
	s := NewReminderScheduler(n, time.UTC)
	due, err := dueReminder.DueAt(time.UTC)
	require.NoError(t, err)
	s.now = func() time.Time { return due.Add(-lead) }
	t.Cleanup(s.Stop)
	return s
}

func TestScheduleFiresFutureReminder(t *testing.T) {
	box := &inbox{}
	s := newScheduler(t, box, 20*time.Millisecond)

	assert.True(t, s.Schedule("ann@example.com", dueReminder))
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool { return box.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Dentist", box.got[0].Message)
	assert.Equal(t, "r1", box.got[0].ReminderID)
	assert.Zero(t, s.Pending())
}

func TestSchedulePastReminderNeverFires(t *testing.T) {
	box := &inbox{}
	s := newScheduler(t, box, -time.Minute)

	assert.False(t, s.Schedule("ann@example.com", dueReminder))
	assert.Zero(t, s.Pending())
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, box.count())
}

func TestScheduleSkipsCompleted(t *testing.T) {
	s := newScheduler(t, &inbox{}, time.Hour)
	done := dueReminder
	done.Completed = true

	assert.False(t, s.Schedule("ann@example.com", done))
	assert.Zero(t, s.Pending())
}

func TestCancelDisarms(t *testing.T) {
	box := &inbox{}
	s := newScheduler(t, box, 30*time.Millisecond)

	require.True(t, s.Schedule("ann@example.com", dueReminder))
	s.Cancel("ann@example.com", dueReminder.ID)
	s.Cancel("ann@example.com", "unknown")
	assert.Zero(t, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, box.count())
}

func TestScheduleIsIdempotent(t *testing.T) {
	s := newScheduler(t, &inbox{}, time.Hour)

	require.True(t, s.Schedule("ann@example.com", dueReminder))
	require.True(t, s.Schedule("ann@example.com", dueReminder))
	require.True(t, s.Schedule("bob@example.com", dueReminder))
	assert.Equal(t, 2, s.Pending())
}

func TestChainFallsThrough(t *testing.T) {
	failing := &inbox{fail: errors.New("no client")}
	ok := &inbox{}

	require.NoError(t, Chain{failing, ok}.Notify(context.Background(), "ann@example.com", models.Notification{}))
	assert.Equal(t, 1, ok.count())

	err := Chain{failing}.Notify(context.Background(), "ann@example.com", models.Notification{})
	assert.ErrorContains(t, err, "no client")
}

type fakeMailer struct{ to, subject string }

func (f *fakeMailer) SendEmail(to, subject, _ string) error {
	f.to, f.subject = to, subject
	return nil
}

func TestEmailNotifierAddressesOwner(t *testing.T) {
	m := &fakeMailer{}
	n := models.ReminderNotification(dueReminder, time.Now())
	require.NoError(t, EmailNotifier{Mailer: m}.Notify(context.Background(), "ann@example.com", n))
	assert.Equal(t, "ann@example.com", m.to)
	assert.Contains(t, m.subject, "Dentist")
}

func TestRecoveryArmsOpenFutureReminders(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	users := repository.NewUserRepository(st)
	reminders := repository.NewReminderRepository(st)

	_, err := users.CreateUser(ctx, &models.UserProfile{UID: "u1", Email: "ann@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	future, err := reminders.CreateReminder(ctx, "ann@example.com", models.ReminderInput{Title: "later", Date: "2030-01-01", Time: "09:00"})
	require.NoError(t, err)
	_, err = reminders.CreateReminder(ctx, "ann@example.com", models.ReminderInput{Title: "past", Date: "2020-01-01", Time: "09:00"})
	require.NoError(t, err)
	done, err := reminders.CreateReminder(ctx, "ann@example.com", models.ReminderInput{Title: "done", Date: "2031-01-01", Time: "09:00"})
	require.NoError(t, err)
	require.NoError(t, reminders.SetCompleted(ctx, "ann@example.com", done.ID, true))

	s := NewReminderScheduler(&inbox{}, time.UTC)
	s.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(s.Stop)

	rec := &Recovery{Users: users, Reminders: reminders, Scheduler: s}
	require.NoError(t, rec.Run(ctx))
	require.NoError(t, rec.Run(ctx))
	assert.Equal(t, 1, s.Pending())

	s.Cancel("ann@example.com", future.ID)
	assert.Zero(t, s.Pending())
}
