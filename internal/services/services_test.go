package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
	"github.com/Dias221467/MemoMe/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakyStore fails Count for the keys in failCount, either a namespace or
// "namespace/collection", and counts every List call.
type flakyStore struct {
	store.Store
	failCount map[string]bool
	lists     atomic.Int32
}

func (f *flakyStore) Count(ctx context.Context, p store.Path) (int64, error) {
	if f.failCount[p.Namespace] || f.failCount[p.Namespace+"/"+p.Collection] {
		return 0, apperrors.Unavailable("count", errors.New("connection reset"))
	}
	return f.Store.Count(ctx, p)
}

func (f *flakyStore) List(ctx context.Context, p store.Path) ([]store.Record, error) {
	f.lists.Add(1)
	return f.Store.List(ctx, p)
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled []string
	cancelled []string
}

func (r *recordingScheduler) Schedule(owner string, rem models.Reminder) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, owner+"/"+rem.ID)
	return true
}

func (r *recordingScheduler) Cancel(owner, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, owner+"/"+id)
}

type env struct {
	store     *flakyStore
	users     *repository.UserRepository
	notes     *repository.NoteRepository
	care      *repository.CareRepository
	reminders *repository.ReminderRepository
	scheduler *recordingScheduler
}

func newEnv() *env {
	fs := &flakyStore{Store: store.NewMemoryStore(), failCount: map[string]bool{}}
	return &env{
		store:     fs,
		users:     repository.NewUserRepository(fs),
		notes:     repository.NewNoteRepository(fs),
		care:      repository.NewCareRepository(fs),
		reminders: repository.NewReminderRepository(fs),
		scheduler: &recordingScheduler{},
	}
}

func (e *env) signUp(t *testing.T, email string, role models.Role) *session.Session {
	t.Helper()
	p, err := e.users.CreateUser(context.Background(), &models.UserProfile{
		UID: "uid-" + email, Email: email, DisplayName: "Tester", Role: role,
	})
	require.NoError(t, err)
	return session.New(*p)
}

func careLog(date string) models.CareLog {
	return models.CareLog{WaterIntake: 6, SleepHours: 7.5, ExerciseMinutes: 30, Mood: models.MoodGood, Date: date}
}

func TestOperationsRequireSession(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	closed := e.signUp(t, "ann@example.com", models.RoleUser)
	closed.Close()

	for _, sess := range []*session.Session{nil, closed} {
		_, err := NewNoteService(e.notes).CreateNote(ctx, sess, models.NoteInput{Title: "x"})
		assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

		_, err = NewCareService(e.care).LogCare(ctx, sess, careLog("2024-06-01"))
		assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

		_, err = NewReminderService(e.reminders, e.scheduler).AddReminder(ctx, sess, models.ReminderInput{Title: "x", Date: "2030-01-01", Time: "09:00"})
		assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)

		_, err = NewAdminService(e.users, e.notes, e.care, 0).Stats(ctx, sess)
		assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	}

	n, err := e.notes.CountNotes(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, e.scheduler.scheduled)
}

func TestNoteServiceLifecycle(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := e.signUp(t, "ann@example.com", models.RoleUser)
	svc := NewNoteService(e.notes)

	created, err := svc.CreateNote(ctx, sess, models.NoteInput{Title: "Groceries", Content: "milk", Tags: []string{"home"}})
	require.NoError(t, err)

	_, err = svc.UpdateNote(ctx, sess, created.ID, models.NoteUpdate{})
	assert.True(t, apperrors.IsValidation(err))

	title := "Groceries list"
	updated, err := svc.UpdateNote(ctx, sess, created.ID, models.NoteUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "milk", updated.Content)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	found, err := svc.ListNotes(ctx, sess, "HOME")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = svc.ListNotes(ctx, sess, "work")
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, svc.DeleteNote(ctx, sess, created.ID))
	assert.ErrorIs(t, svc.DeleteNote(ctx, sess, created.ID), apperrors.ErrNotFound)
}

func TestCareServiceOverwritesSameDate(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := e.signUp(t, "ann@example.com", models.RoleUser)
	svc := NewCareService(e.care)

	_, err := svc.LogCare(ctx, sess, careLog("2024-06-01"))
	require.NoError(t, err)
	second := careLog("2024-06-01")
	second.Mood = models.MoodBad
	_, err = svc.LogCare(ctx, sess, second)
	require.NoError(t, err)

	logs, err := svc.ListCareLogs(ctx, sess)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.MoodBad, logs[0].Mood)
}

func TestReminderServiceKeepsTimersInStep(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := e.signUp(t, "ann@example.com", models.RoleUser)
	svc := NewReminderService(e.reminders, e.scheduler)

	r, err := svc.AddReminder(ctx, sess, models.ReminderInput{Title: "Dentist", Date: "2030-01-01", Time: "09:00"})
	require.NoError(t, err)
	key := "ann@example.com/" + r.ID
	assert.Equal(t, []string{key}, e.scheduler.scheduled)

	toggled, err := svc.ToggleReminder(ctx, sess, r.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, []string{key}, e.scheduler.cancelled)

	toggled, err = svc.ToggleReminder(ctx, sess, r.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
	assert.Len(t, e.scheduler.scheduled, 2)

	require.NoError(t, svc.DeleteReminder(ctx, sess, r.ID))
	assert.Len(t, e.scheduler.cancelled, 2)

	_, err = svc.ToggleReminder(ctx, sess, r.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := e.signUp(t, "ann@example.com", models.RoleUser)
	svc := NewUserService(e.users, e.notes, e.care)

	blank := "   "
	_, err := svc.UpdateProfile(ctx, sess, models.ProfileUpdate{DisplayName: &blank})
	assert.True(t, apperrors.IsValidation(err))

	name := "Ann"
	p, err := svc.UpdateProfile(ctx, sess, models.ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ann", p.DisplayName)
	assert.Equal(t, "Ann", sess.Profile().DisplayName)
}

func TestDashboardShowsRecentItems(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	sess := e.signUp(t, "ann@example.com", models.RoleUser)
	notes := NewNoteService(e.notes)
	care := NewCareService(e.care)

	for i := 1; i <= 7; i++ {
		_, err := care.LogCare(ctx, sess, careLog(fmt.Sprintf("2024-06-%02d", i)))
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		_, err := notes.CreateNote(ctx, sess, models.NoteInput{Title: fmt.Sprintf("note %d", i)})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	d, err := NewUserService(e.users, e.notes, e.care).Dashboard(ctx, sess)
	require.NoError(t, err)
	require.Len(t, d.RecentCare, models.DashboardCareLimit)
	assert.Equal(t, "2024-06-07", d.RecentCare[0].Date)
	require.Len(t, d.RecentNotes, models.DashboardNoteLimit)
	assert.Equal(t, "note 3", d.RecentNotes[0].Title)
}

func TestAdminStatsSumsAcrossUsers(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.signUp(t, "admin@example.com", models.RoleAdmin)
	ann := e.signUp(t, "ann@example.com", models.RoleUser)
	bob := e.signUp(t, "bob@example.com", models.RoleUser)

	notes := NewNoteService(e.notes)
	care := NewCareService(e.care)
	for _, s := range []*session.Session{ann, ann, bob} {
		_, err := notes.CreateNote(ctx, s, models.NoteInput{Title: "n"})
		require.NoError(t, err)
	}
	_, err := care.LogCare(ctx, bob, careLog("2024-06-01"))
	require.NoError(t, err)

	stats, err := NewAdminService(e.users, e.notes, e.care, 2).Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UserCount)
	assert.Equal(t, int64(3), stats.TotalNotes)
	assert.Equal(t, int64(1), stats.TotalCareLogs)
	assert.Empty(t, stats.FailedUsers)
}

func TestAdminStatsIsolatesFailingUser(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.signUp(t, "admin@example.com", models.RoleAdmin)
	ann := e.signUp(t, "ann@example.com", models.RoleUser)
	bob := e.signUp(t, "bob@example.com", models.RoleUser)

	notes := NewNoteService(e.notes)
	for _, s := range []*session.Session{ann, bob, bob} {
		_, err := notes.CreateNote(ctx, s, models.NoteInput{Title: "n"})
		require.NoError(t, err)
	}
	e.store.failCount["bob@example.com"] = true

	stats, err := NewAdminService(e.users, e.notes, e.care, 0).Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UserCount)
	assert.Equal(t, int64(1), stats.TotalNotes)
	assert.Equal(t, []string{"bob@example.com"}, stats.FailedUsers)
}

func TestAdminStatsDropsUserWithOneFailedCount(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	admin := e.signUp(t, "admin@example.com", models.RoleAdmin)
	ann := e.signUp(t, "ann@example.com", models.RoleUser)
	bob := e.signUp(t, "bob@example.com", models.RoleUser)

	notes := NewNoteService(e.notes)
	care := NewCareService(e.care)
	for _, s := range []*session.Session{ann, bob, bob} {
		_, err := notes.CreateNote(ctx, s, models.NoteInput{Title: "n"})
		require.NoError(t, err)
	}
	_, err := care.LogCare(ctx, ann, careLog("2024-06-01"))
	require.NoError(t, err)
	e.store.failCount["bob@example.com/"+store.CareCollection] = true

	stats, err := NewAdminService(e.users, e.notes, e.care, 0).Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalNotes)
	assert.Equal(t, int64(1), stats.TotalCareLogs)
	assert.Equal(t, []string{"bob@example.com"}, stats.FailedUsers)
}

func TestAdminStatsDeniedForNonAdmin(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	ann := e.signUp(t, "ann@example.com", models.RoleUser)
	svc := NewAdminService(e.users, e.notes, e.care, 0)

	before := e.store.lists.Load()
	_, err := svc.Stats(ctx, ann)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	_, err = svc.ListUsers(ctx, ann)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	assert.Equal(t, before, e.store.lists.Load())
}

func TestAdminListUsers(t *testing.T) {
	e := newEnv()
	admin := e.signUp(t, "admin@example.com", models.RoleAdmin)
	e.signUp(t, "ann@example.com", models.RoleUser)

	users, err := NewAdminService(e.users, e.notes, e.care, 0).ListUsers(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
