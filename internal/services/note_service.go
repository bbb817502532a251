package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
)

// NoteService handles the signed-in user's notes.
type NoteService struct {
	repo *repository.NoteRepository
}

func NewNoteService(repo *repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// ListNotes returns notes newest first, filtered by term when it is set.
func (s *NoteService) ListNotes(ctx context.Context, sess *session.Session, term string) ([]models.Note, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, sess.Email())
	if err != nil {
		return nil, err
	}
	return models.FilterNotes(notes, term), nil
}

func (s *NoteService) CreateNote(ctx context.Context, sess *session.Session, in models.NoteInput) (*models.Note, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	note, err := s.repo.CreateNote(ctx, sess.Email(), in)
	if err != nil {
		logrus.WithError(err).WithField("email", sess.Email()).Error("Failed to save note")
		return nil, err
	}
	return note, nil
}

// UpdateNote overwrites the given fields of an existing note; the note keeps
// its id and creation time.
func (s *NoteService) UpdateNote(ctx context.Context, sess *session.Session, id string, update models.NoteUpdate) (*models.Note, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if update.Empty() {
		return nil, &apperrors.ValidationError{Field: "note", Rule: "nonempty_update"}
	}
	note, err := s.repo.UpdateNote(ctx, sess.Email(), id, update)
	if err != nil {
		logrus.WithError(err).WithField("noteID", id).Error("Failed to update note")
		return nil, err
	}
	return note, nil
}

func (s *NoteService) DeleteNote(ctx context.Context, sess *session.Session, id string) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	return s.repo.DeleteNote(ctx, sess.Email(), id)
}
