package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/models"
)

// Notifier delivers a due-reminder alert to its owner.
type Notifier interface {
	Notify(ctx context.Context, owner string, n models.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, owner string, n models.Notification) error

func (f NotifierFunc) Notify(ctx context.Context, owner string, n models.Notification) error {
	return f(ctx, owner, n)
}

// Chain tries each notifier in order and stops at the first that succeeds.
type Chain []Notifier

func (c Chain) Notify(ctx context.Context, owner string, n models.Notification) error {
	var errs []error
	for _, notifier := range c {
		err := notifier.Notify(ctx, owner, n)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Mailer sends a plain text email.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// EmailNotifier mails the alert to the owner's address.
type EmailNotifier struct {
	Mailer Mailer
}

func (e EmailNotifier) Notify(_ context.Context, owner string, n models.Notification) error {
	body := fmt.Sprintf("%s\n\nDue: %s", n.Message, n.CreatedAt.Format("Jan 2, 15:04"))
	if err := e.Mailer.SendEmail(owner, "MemoMe reminder: "+n.Message, body); err != nil {
		return fmt.Errorf("failed to email reminder: %w", err)
	}
	return nil
}

// LogNotifier only records the alert. It never fails, so it goes last in a
// Chain.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, owner string, n models.Notification) error {
	logrus.WithFields(logrus.Fields{
		"owner":      owner,
		"reminderID": n.ReminderID,
		"title":      n.Message,
	}).Info("Reminder due with no delivery channel")
	return nil
}
