package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// CareRepository handles the "care" subcollection, keyed by calendar date.
type CareRepository struct {
	store store.Store
}

func NewCareRepository(s store.Store) *CareRepository {
	return &CareRepository{store: s}
}

func carePath(owner string) store.Path {
	return store.UserPath(owner, store.CareCollection)
}

// UpsertCareLog writes the log under its date, replacing any log already
// stored for that date.
func (r *CareRepository) UpsertCareLog(ctx context.Context, owner string, log models.CareLog) (*models.CareLog, error) {
	if err := validateRecord(log); err != nil {
		return nil, err
	}
	doc, err := toDoc(log)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, carePath(owner), log.Date, doc); err != nil {
		logrus.WithError(err).WithField("date", log.Date).Error("Failed to upsert care log")
		return nil, fmt.Errorf("failed to save care log: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"owner": owner,
		"date":  log.Date,
	}).Info("Care log saved")
	return &log, nil
}

// ListCareLogs returns the owner's logs, most recent date first.
func (r *CareRepository) ListCareLogs(ctx context.Context, owner string) ([]models.CareLog, error) {
	records, err := r.store.List(ctx, carePath(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch care logs: %w", err)
	}
	return decodeCareLogs(records), nil
}

func (r *CareRepository) CountCareLogs(ctx context.Context, owner string) (int64, error) {
	return r.store.Count(ctx, carePath(owner))
}

func (r *CareRepository) WatchCareLogs(ctx context.Context, owner string, fn func([]models.CareLog)) (store.Subscription, error) {
	return r.store.Watch(ctx, carePath(owner), func(records []store.Record) {
		fn(decodeCareLogs(records))
	})
}

func decodeCareLogs(records []store.Record) []models.CareLog {
	logs := make([]models.CareLog, 0, len(records))
	for _, rec := range records {
		log, err := fromDoc[models.CareLog](rec.Data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"date":  rec.Key,
				"error": err,
			}).Warn("Skipping invalid care log")
			continue
		}
		log.Date = rec.Key
		logs = append(logs, log)
	}
	models.SortCareLogs(logs)
	return logs
}
