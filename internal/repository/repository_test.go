package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

const owner = "a@example.com"

func TestCareLogUpsertOverwritesSameDate(t *testing.T) {
	ctx := context.Background()
	repo := NewCareRepository(store.NewMemoryStore())

	_, err := repo.UpsertCareLog(ctx, owner, models.CareLog{WaterIntake: 3, Mood: models.MoodOkay, Date: "2024-01-01"})
	require.NoError(t, err)
	_, err = repo.UpsertCareLog(ctx, owner, models.CareLog{WaterIntake: 5, Mood: models.MoodGood, Date: "2024-01-01"})
	require.NoError(t, err)

	logs, err := repo.ListCareLogs(ctx, owner)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 5, logs[0].WaterIntake)
	assert.Equal(t, models.MoodGood, logs[0].Mood)
}

func TestCareLogValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewCareRepository(store.NewMemoryStore())

	cases := map[string]struct {
		log   models.CareLog
		field string
	}{
		"sleep over 24h":  {models.CareLog{SleepHours: 25, Mood: models.MoodOkay, Date: "2024-01-01"}, "sleepHours"},
		"negative water":  {models.CareLog{WaterIntake: -1, Mood: models.MoodOkay, Date: "2024-01-01"}, "waterIntake"},
		"unknown mood":    {models.CareLog{Mood: "meh", Date: "2024-01-01"}, "mood"},
		"malformed date":  {models.CareLog{Mood: models.MoodBad, Date: "01/01/2024"}, "date"},
		"missing date":    {models.CareLog{Mood: models.MoodBad}, "date"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := repo.UpsertCareLog(ctx, owner, tc.log)
			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNoteLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(store.NewMemoryStore())

	created, err := repo.CreateNote(ctx, owner, models.NoteInput{Title: "X", Content: "Y"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{}, created.Tags)

	title := "X2"
	updated, err := repo.UpdateNote(ctx, owner, created.ID, models.NoteUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "X2", updated.Title)
	assert.Equal(t, "Y", updated.Content)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, created.ID, notes[0].ID)
	assert.Equal(t, "X2", notes[0].Title)

	require.NoError(t, repo.DeleteNote(ctx, owner, created.ID))
	notes, err = repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteWithoutTitleStaysVisible(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewNoteRepository(s)

	created, err := repo.CreateNote(ctx, owner, models.NoteInput{Content: "body"})
	require.NoError(t, err)
	_, err = s.Add(ctx, store.UserPath(owner, store.NotesCollection), bson.M{"content": "from another client"})
	require.NoError(t, err)

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, created.ID, notes[0].ID)
	assert.Empty(t, notes[1].Title)
}

func TestListNotesSortedAndSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewNoteRepository(s)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	first, err := repo.CreateNote(ctx, owner, models.NoteInput{Title: "first"})
	require.NoError(t, err)
	second, err := repo.CreateNote(ctx, owner, models.NoteInput{Title: "second"})
	require.NoError(t, err)

	// A record written by some other client with a malformed title.
	_, err = s.Add(ctx, store.UserPath(owner, store.NotesCollection), bson.M{"title": 42, "content": "orphan"})
	require.NoError(t, err)

	notes, err := repo.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestMissingTagsDecodeAsEmpty(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	repo := NewNoteRepository(s)

	id, err := s.Add(ctx, store.UserPath(owner, store.NotesCollection), bson.M{"title": "legacy", "createdAt": time.Now()})
	require.NoError(t, err)

	note, err := repo.GetNote(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, []string{}, note.Tags)
}

func TestReminderCreateAndComplete(t *testing.T) {
	ctx := context.Background()
	repo := NewReminderRepository(store.NewMemoryStore())

	r, err := repo.CreateReminder(ctx, owner, models.ReminderInput{Title: "Pills", Date: "2024-05-01", Time: "08:00"})
	require.NoError(t, err)
	assert.False(t, r.Completed)

	require.NoError(t, repo.SetCompleted(ctx, owner, r.ID, true))
	got, err := repo.GetReminder(ctx, owner, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, "Pills", got.Title)

	_, err = repo.CreateReminder(ctx, owner, models.ReminderInput{Title: "Bad", Date: "2024-05-01", Time: "8am"})
	assert.True(t, apperrors.IsValidation(err))

	assert.ErrorIs(t, repo.DeleteReminder(ctx, owner, "missing"), apperrors.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())

	_, err := repo.GetUserByEmail(ctx, owner)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.CreateUser(ctx, &models.UserProfile{UID: "u1", Email: owner, DisplayName: "A", Role: models.RoleUser})
	require.NoError(t, err)

	name := "Alice"
	updated, err := repo.UpdateUser(ctx, owner, models.ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.DisplayName)
	assert.Equal(t, models.RoleUser, updated.Role)

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].DisplayName)

	_, err = repo.CreateUser(ctx, &models.UserProfile{UID: "u2", Email: "b@example.com", Role: "root"})
	assert.True(t, apperrors.IsValidation(err))
}
