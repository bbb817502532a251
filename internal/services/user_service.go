package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
)

// UserService encapsulates the business logic for profile operations.
type UserService struct {
	repo  *repository.UserRepository
	notes *repository.NoteRepository
	care  *repository.CareRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository, notes *repository.NoteRepository, care *repository.CareRepository) *UserService {
	return &UserService{repo: repo, notes: notes, care: care}
}

// GetProfile returns the profile cached on the session.
func (s *UserService) GetProfile(sess *session.Session) (models.UserProfile, error) {
	if err := session.Require(sess); err != nil {
		return models.UserProfile{}, err
	}
	return sess.Profile(), nil
}

// UpdateProfile changes the signed-in user's editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, sess *session.Session, update models.ProfileUpdate) (*models.UserProfile, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return nil, &apperrors.ValidationError{Field: "displayName", Rule: "required"}
		}
		update.DisplayName = &name
	}

	logrus.WithField("email", sess.Email()).Info("Updating profile")
	user, err := s.repo.UpdateUser(ctx, sess.Email(), update)
	if err != nil {
		logrus.WithError(err).Error("Failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	sess.SetProfile(*user)
	return user, nil
}

// Dashboard returns the most recent care logs and notes of the user.
func (s *UserService) Dashboard(ctx context.Context, sess *session.Session) (*models.Dashboard, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}

	notes, err := s.notes.ListNotes(ctx, sess.Email())
	if err != nil {
		return nil, err
	}
	logs, err := s.care.ListCareLogs(ctx, sess.Email())
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Profile:     sess.Profile(),
		RecentCare:  head(logs, models.DashboardCareLimit),
		RecentNotes: head(notes, models.DashboardNoteLimit),
	}, nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
