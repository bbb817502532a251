package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/session"
)

// ReminderScheduler arms and disarms due-time notifications.
type ReminderScheduler interface {
	Schedule(owner string, r models.Reminder) bool
	Cancel(owner, reminderID string)
}

// ReminderService handles reminders and keeps their timers in step.
type ReminderService struct {
	repo      *repository.ReminderRepository
	scheduler ReminderScheduler
}

func NewReminderService(repo *repository.ReminderRepository, scheduler ReminderScheduler) *ReminderService {
	return &ReminderService{repo: repo, scheduler: scheduler}
}

func (s *ReminderService) ListReminders(ctx context.Context, sess *session.Session) ([]models.Reminder, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	return s.repo.ListReminders(ctx, sess.Email())
}

// AddReminder stores the reminder and arms its notification when it is
// still in the future.
func (s *ReminderService) AddReminder(ctx context.Context, sess *session.Session, in models.ReminderInput) (*models.Reminder, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	reminder, err := s.repo.CreateReminder(ctx, sess.Email(), in)
	if err != nil {
		logrus.WithError(err).WithField("email", sess.Email()).Error("Failed to add reminder")
		return nil, err
	}

	if s.scheduler != nil {
		s.scheduler.Schedule(sess.Email(), *reminder)
	}
	return reminder, nil
}

// ToggleReminder flips the completed flag. Completing disarms the timer;
// reopening re-arms it if the reminder is still ahead.
func (s *ReminderService) ToggleReminder(ctx context.Context, sess *session.Session, id string) (*models.Reminder, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	reminder, err := s.repo.GetReminder(ctx, sess.Email(), id)
	if err != nil {
		return nil, err
	}

	reminder.Completed = !reminder.Completed
	if err := s.repo.SetCompleted(ctx, sess.Email(), id, reminder.Completed); err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if reminder.Completed {
			s.scheduler.Cancel(sess.Email(), id)
		} else {
			s.scheduler.Schedule(sess.Email(), *reminder)
		}
	}

	logrus.WithFields(logrus.Fields{
		"reminderID": id,
		"completed":  reminder.Completed,
	}).Info("Reminder toggled")
	return reminder, nil
}

func (s *ReminderService) DeleteReminder(ctx context.Context, sess *session.Session, id string) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	if err := s.repo.DeleteReminder(ctx, sess.Email(), id); err != nil {
		return err
	}
	if s.scheduler != nil {
		s.scheduler.Cancel(sess.Email(), id)
	}
	return nil
}
