// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Schedule runs an incremental backup every night at 02:00 in the
// given zone. The returned scheduler is already started; the caller
// shuts it down on exit.
func Schedule(svc *Service, loc *time.Location) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create backup scheduler: %w", err)
	}

	job, err := scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := svc.Incremental(ctx); err != nil {
				slog.Error("nightly backup failed", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule nightly backup: %w", err)
	}

	scheduler.Start()

	if next, err := job.NextRun(); err == nil {
		slog.Info("nightly backup scheduled", "next_run", next)
	}
	return scheduler, nil
}
