// Package scheduler runs background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueSource lists planned activities dated before today.
type OverdueSource interface {
	Overdue(ctx context.Context) ([]models.Activity, error)
}

type Publisher interface {
	Publish(e realtime.Event)
}

// Digest periodically counts overdue activities, logs them and tells open
// sessions so they can refresh their reminder badge.
type Digest struct {
	source    OverdueSource
	publisher Publisher
	logger    *zap.Logger
	timeout   time.Duration

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	last int
}

// NewDigest validates schedule ("@every 15m", "0 8 * * 1-5", ...) and
// registers the job. Call Start to begin running it.
func NewDigest(schedule string, source OverdueSource, publisher Publisher, logger *zap.Logger) (*Digest, error) {
	d := &Digest{
		source:    source,
		publisher: publisher,
		logger:    logger,
		timeout:   time.Minute,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
		ctx: context.Background(),
	}
	if _, err := d.cron.AddFunc(schedule, d.tick); err != nil {
		return nil, fmt.Errorf("parse digest schedule %q: %w", schedule, err)
	}
	return d, nil
}

func (d *Digest) Start(ctx context.Context) {
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.cron.Start()
	d.logger.Info("overdue digest scheduled", zap.Int("entries", len(d.cron.Entries())))
}

// Stop waits up to ten seconds for a running digest to finish.
func (d *Digest) Stop() {
	done := d.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(10 * time.Second):
		d.logger.Warn("digest stop timed out")
	}
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Digest) tick() {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()
	if _, err := d.RunOnce(ctx); err != nil {
		d.logger.Error("overdue digest failed", zap.Error(err))
	}
}

// RunOnce computes one digest and returns the overdue count.
func (d *Digest) RunOnce(ctx context.Context) (int, error) {
	overdue, err := d.source.Overdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("load overdue activities: %w", err)
	}

	d.mu.Lock()
	d.last = len(overdue)
	d.mu.Unlock()

	if len(overdue) > 0 {
		d.logger.Info("overdue activities",
			zap.Int("count", len(overdue)),
			zap.String("oldest_id", overdue[0].ID),
			zap.String("oldest_date", overdue[0].Date),
		)
	}
	if d.publisher != nil {
		d.publisher.Publish(realtime.Event{Entity: "activity", Action: "overdue", Count: len(overdue)})
	}
	return len(overdue), nil
}

// Last returns the count computed by the latest run.
func (d *Digest) Last() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}
