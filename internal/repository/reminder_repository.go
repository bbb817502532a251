package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// ReminderRepository handles the "reminders" subcollection of each user.
type ReminderRepository struct {
	store store.Store
}

func NewReminderRepository(s store.Store) *ReminderRepository {
	return &ReminderRepository{store: s}
}

func remindersPath(owner string) store.Path {
	return store.UserPath(owner, store.RemindersCollection)
}

// CreateReminder stores a new, not yet completed reminder.
func (r *ReminderRepository) CreateReminder(ctx context.Context, owner string, in models.ReminderInput) (*models.Reminder, error) {
	reminder := &models.Reminder{
		Title:     in.Title,
		Date:      in.Date,
		Time:      in.Time,
		Completed: false,
	}
	if err := validateRecord(reminder); err != nil {
		return nil, err
	}
	doc, err := toDoc(reminder)
	if err != nil {
		return nil, err
	}

	id, err := r.store.Add(ctx, remindersPath(owner), doc)
	if err != nil {
		logrus.WithError(err).WithField("owner", owner).Error("Failed to insert reminder")
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	reminder.ID = id

	logrus.WithFields(logrus.Fields{
		"owner":      owner,
		"reminderID": id,
	}).Info("Reminder created successfully")
	return reminder, nil
}

func (r *ReminderRepository) GetReminder(ctx context.Context, owner, id string) (*models.Reminder, error) {
	doc, err := r.store.Get(ctx, remindersPath(owner), id)
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}
	reminder, err := fromDoc[models.Reminder](doc)
	if err != nil {
		return nil, err
	}
	reminder.ID = id
	return &reminder, nil
}

// SetCompleted updates only the completed flag.
func (r *ReminderRepository) SetCompleted(ctx context.Context, owner, id string, completed bool) error {
	if err := r.store.Update(ctx, remindersPath(owner), id, bson.M{"completed": completed}); err != nil {
		logrus.WithError(err).WithField("reminderID", id).Error("Failed to update reminder")
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) DeleteReminder(ctx context.Context, owner, id string) error {
	if err := r.store.Delete(ctx, remindersPath(owner), id); err != nil {
		logrus.WithError(err).WithField("reminderID", id).Error("Failed to delete reminder")
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ListReminders returns the owner's reminders, earliest due first.
func (r *ReminderRepository) ListReminders(ctx context.Context, owner string) ([]models.Reminder, error) {
	records, err := r.store.List(ctx, remindersPath(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	return decodeReminders(records), nil
}

func (r *ReminderRepository) WatchReminders(ctx context.Context, owner string, fn func([]models.Reminder)) (store.Subscription, error) {
	return r.store.Watch(ctx, remindersPath(owner), func(records []store.Record) {
		fn(decodeReminders(records))
	})
}

func decodeReminders(records []store.Record) []models.Reminder {
	reminders := make([]models.Reminder, 0, len(records))
	for _, rec := range records {
		reminder, err := fromDoc[models.Reminder](rec.Data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"reminderID": rec.Key,
				"error":      err,
			}).Warn("Skipping invalid reminder")
			continue
		}
		reminder.ID = rec.Key
		reminders = append(reminders, reminder)
	}
	models.SortReminders(reminders)
	return reminders
}
