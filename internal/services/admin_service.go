package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
)

// AdminService computes cross-user usage figures. Only counts and profiles
// are exposed, never note or care content.
type AdminService struct {
	users       *repository.UserRepository
	notes       *repository.NoteRepository
	care        *repository.CareRepository
	concurrency int
}

// NewAdminService creates an AdminService. concurrency caps the number of
// in-flight count reads; 0 means no cap.
func NewAdminService(users *repository.UserRepository, notes *repository.NoteRepository, care *repository.CareRepository, concurrency int) *AdminService {
	return &AdminService{users: users, notes: notes, care: care, concurrency: concurrency}
}

func requireAdmin(sess *session.Session) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	if !sess.IsAdmin() {
		logrus.WithField("email", sess.Email()).Warn("Non-admin attempted to access admin data")
		return apperrors.ErrNotAuthorized
	}
	return nil
}

// Stats counts users and sums every user's notes and care logs. The two
// counts per user run concurrently. A failed count is logged and contributes
// zero; the user is then listed in FailedUsers.
func (s *AdminService) Stats(ctx context.Context, sess *session.Session) (*models.AdminStats, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	emails, err := s.users.ListUserKeys(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users for admin stats")
		return nil, err
	}

	var (
		noteCounts = make([]int64, len(emails))
		careCounts = make([]int64, len(emails))
		noteErrs   = make([]error, len(emails))
		careErrs   = make([]error, len(emails))
	)

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, email := range emails {
		i, email := i, email
		g.Go(func() error {
			noteCounts[i], noteErrs[i] = s.notes.CountNotes(gctx, email)
			return nil
		})
		g.Go(func() error {
			careCounts[i], careErrs[i] = s.care.CountCareLogs(gctx, email)
			return nil
		})
	}
	_ = g.Wait()

	stats := &models.AdminStats{UserCount: len(emails)}
	for i, email := range emails {
		if noteErrs[i] != nil || careErrs[i] != nil {
			logrus.WithFields(logrus.Fields{
				"email":    email,
				"notesErr": noteErrs[i],
				"careErr":  careErrs[i],
			}).Warn("Failed to count user records")
			stats.FailedUsers = append(stats.FailedUsers, email)
			continue
		}
		stats.TotalNotes += noteCounts[i]
		stats.TotalCareLogs += careCounts[i]
	}

	logrus.WithFields(logrus.Fields{
		"admin":  sess.Email(),
		"users":  stats.UserCount,
		"failed": len(stats.FailedUsers),
	}).Info("Admin stats computed")
	return stats, nil
}

// ListUsers returns every profile for the admin user list.
func (s *AdminService) ListUsers(ctx context.Context, sess *session.Session) ([]*models.UserProfile, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
