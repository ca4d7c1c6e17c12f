package lookup

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/dvmgo/trunkcore/internal/radioid"
)

// Scheduler drives the table's periodic reload and, when a RadioID.net
// syncer is configured, the upstream RID database refresh that feeds it.
// Replaces the teacher's raw time.Ticker reload loop
// (internal/lookup/dmr_lookup.go's reloadLoop) with gocron/v2, matching
// the scheduling library the rest of the pack uses for periodic jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	table     *Table
	syncer    *radioid.Syncer
	logger    *slog.Logger
}

// NewScheduler creates a scheduler bound to table. syncer may be nil if
// this deployment doesn't sync from RadioID.net (e.g. a purely manual
// RID list).
func NewScheduler(table *Table, syncer *radioid.Syncer, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: s, table: table, syncer: syncer, logger: logger}, nil
}

// Start registers the reload and (optional) upstream sync jobs and
// begins running them. reloadEvery is the table's own reload cadence
// (e.g. 1 minute, since reload is a cheap local DB read); syncEvery is
// the RadioID.net upstream refresh cadence (e.g. 24 hours).
func (s *Scheduler) Start(ctx context.Context, reloadEvery, syncEvery time.Duration) error {
	if _, err := s.scheduler.NewJob(
		gocron.DurationJob(reloadEvery),
		gocron.NewTask(func() {
			if err := s.table.Reload(); err != nil {
				s.logger.Warn("lookup: scheduled reload failed", "error", err)
			}
		}),
	); err != nil {
		return err
	}

	if s.syncer != nil {
		if _, err := s.scheduler.NewJob(
			gocron.DurationJob(syncEvery),
			gocron.NewTask(func() {
				if err := s.syncer.SyncNow(ctx); err != nil {
					s.logger.Warn("lookup: radioid sync failed", "error", err)
					return
				}
				if err := s.table.Reload(); err != nil {
					s.logger.Warn("lookup: post-sync reload failed", "error", err)
				}
			}),
		); err != nil {
			return err
		}
	}

	s.scheduler.Start()
	return nil
}

// Stop halts all scheduled jobs, blocking until they finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
