package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
)

// CareService handles daily personal-care logs.
type CareService struct {
	repo *repository.CareRepository
}

func NewCareService(repo *repository.CareRepository) *CareService {
	return &CareService{repo: repo}
}

func (s *CareService) ListCareLogs(ctx context.Context, sess *session.Session) ([]models.CareLog, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	return s.repo.ListCareLogs(ctx, sess.Email())
}

// LogCare stores the log for its date, overwriting an earlier log of the
// same date.
func (s *CareService) LogCare(ctx context.Context, sess *session.Session, log models.CareLog) (*models.CareLog, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	saved, err := s.repo.UpsertCareLog(ctx, sess.Email(), log)
	if err != nil {
		logrus.WithError(err).WithField("date", log.Date).Error("Failed to log care data")
		return nil, err
	}
	return saved, nil
}
