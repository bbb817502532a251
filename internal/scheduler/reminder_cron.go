package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/jobs"
)

const sweepTimeout = 5 * time.Minute

// StartReminderCronJobs runs the reminder recovery pass on spec so timers
// missed by other server instances are still armed here. The caller stops
// the returned cron on shutdown.
func StartReminderCronJobs(spec string, recovery *jobs.Recovery) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(recovery.Scheduler.Location()))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if err := recovery.Run(ctx); err != nil {
			logrus.WithError(err).Error("Reminder sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder sweep schedule %q: %w", spec, err)
	}

	c.Start()
	logrus.WithField("spec", spec).Info("Reminder sweep scheduled")
	return c, nil
}

// StartReminderRecovery makes reminder timers durable: it runs the recovery
// pass once and starts the periodic sweep. When disabled, timers live only
// in memory and nothing is started. The returned stop waits for a running
// sweep to finish and is never nil.
func StartReminderRecovery(ctx context.Context, enabled bool, spec string, recovery *jobs.Recovery) (stop func(), err error) {
	if !enabled {
		logrus.Info("Reminder recovery disabled")
		return func() {}, nil
	}

	if err := recovery.Run(ctx); err != nil {
		logrus.WithError(err).Error("Reminder recovery failed")
	}

	c, err := StartReminderCronJobs(spec, recovery)
	if err != nil {
		return nil, err
	}
	return func() { <-c.Stop().Done() }, nil
}
