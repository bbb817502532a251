package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// NoteRepository handles the "notes" subcollection of each user.
type NoteRepository struct {
	store store.Store
	now   func() time.Time
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(s store.Store) *NoteRepository {
	return &NoteRepository{store: s, now: time.Now}
}

func notesPath(owner string) store.Path {
	return store.UserPath(owner, store.NotesCollection)
}

// stamp returns now at the precision the store keeps.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}

// CreateNote adds a note with a store-assigned id.
func (r *NoteRepository) CreateNote(ctx context.Context, owner string, in models.NoteInput) (*models.Note, error) {
	note := &models.Note{
		Title:     in.Title,
		Content:   in.Content,
		Tags:      models.CleanTags(in.Tags),
		CreatedAt: stamp(r.now),
	}
	if err := validateRecord(note); err != nil {
		return nil, err
	}
	doc, err := toDoc(note)
	if err != nil {
		return nil, err
	}

	id, err := r.store.Add(ctx, notesPath(owner), doc)
	if err != nil {
		logrus.WithError(err).WithField("owner", owner).Error("Failed to insert note")
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	note.ID = id

	logrus.WithFields(logrus.Fields{
		"owner":  owner,
		"noteID": id,
	}).Info("Note created successfully")
	return note, nil
}

// GetNote fetches one note by id.
func (r *NoteRepository) GetNote(ctx context.Context, owner, id string) (*models.Note, error) {
	doc, err := r.store.Get(ctx, notesPath(owner), id)
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	note, err := decodeNote(id, doc)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote merges the set fields of update into the stored note.
func (r *NoteRepository) UpdateNote(ctx context.Context, owner, id string, update models.NoteUpdate) (*models.Note, error) {
	current, err := r.GetNote(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	note := update.Apply(*current)
	note.UpdatedAt = stamp(r.now)
	if err := validateRecord(note); err != nil {
		return nil, err
	}

	fields := bson.M{"updatedAt": note.UpdatedAt}
	if update.Title != nil {
		fields["title"] = note.Title
	}
	if update.Content != nil {
		fields["content"] = note.Content
	}
	if update.Tags != nil {
		fields["tags"] = note.Tags
	}

	if err := r.store.Update(ctx, notesPath(owner), id, fields); err != nil {
		logrus.WithError(err).WithField("noteID", id).Error("Failed to update note")
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	logrus.WithField("noteID", id).Info("Note updated successfully")
	return &note, nil
}

// DeleteNote removes a note.
func (r *NoteRepository) DeleteNote(ctx context.Context, owner, id string) error {
	if err := r.store.Delete(ctx, notesPath(owner), id); err != nil {
		logrus.WithError(err).WithField("noteID", id).Error("Failed to delete note")
		return fmt.Errorf("failed to delete note: %w", err)
	}
	logrus.WithField("noteID", id).Info("Note deleted successfully")
	return nil
}

// ListNotes returns the owner's notes, newest first.
func (r *NoteRepository) ListNotes(ctx context.Context, owner string) ([]models.Note, error) {
	records, err := r.store.List(ctx, notesPath(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	return decodeNotes(records), nil
}

// CountNotes returns the size of the owner's notes subcollection.
func (r *NoteRepository) CountNotes(ctx context.Context, owner string) (int64, error) {
	return r.store.Count(ctx, notesPath(owner))
}

// WatchNotes streams sorted snapshots of the owner's notes.
func (r *NoteRepository) WatchNotes(ctx context.Context, owner string, fn func([]models.Note)) (store.Subscription, error) {
	return r.store.Watch(ctx, notesPath(owner), func(records []store.Record) {
		fn(decodeNotes(records))
	})
}

func decodeNote(id string, doc bson.M) (models.Note, error) {
	note, err := fromDoc[models.Note](doc)
	if err != nil {
		return note, err
	}
	note.ID = id
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

func decodeNotes(records []store.Record) []models.Note {
	notes := make([]models.Note, 0, len(records))
	for _, rec := range records {
		note, err := decodeNote(rec.Key, rec.Data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"noteID": rec.Key,
				"error":  err,
			}).Warn("Skipping invalid note")
			continue
		}
		notes = append(notes, note)
	}
	models.SortNotes(notes)
	return notes
}
