package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FileCleaner removes export files older than a given age.
type FileCleaner interface {
	CleanupOlderThan(maxAge time.Duration) (int, error)
}

// ExportPruner drops expired export ids from the status index.
type ExportPruner interface {
	PruneExpired(ctx context.Context) (int, error)
}

type Config struct {
	// Schedule is a six-field cron spec (with seconds).
	Schedule string
	MaxAge   time.Duration
}

type Scheduler struct {
	cron    *cron.Cron
	cleaner FileCleaner
	pruner  ExportPruner
	maxAge  time.Duration
	logger  *zap.Logger
}

func New(cfg Config, cleaner FileCleaner, pruner ExportPruner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 */5 * * * *"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Minute
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		cleaner: cleaner,
		pruner:  pruner,
		maxAge:  cfg.MaxAge,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.RunOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce removes stale export files and prunes expired export ids.
func (s *Scheduler) RunOnce() {
	if s.cleaner != nil {
		n, err := s.cleaner.CleanupOlderThan(s.maxAge)
		if err != nil {
			s.logger.Error("export file cleanup", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("export files removed", zap.Int("count", n))
		}
	}

	if s.pruner != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := s.pruner.PruneExpired(ctx)
		if err != nil {
			s.logger.Error("prune export ids", zap.Error(err))
		} else if n > 0 {
			s.logger.Info("expired exports pruned", zap.Int("count", n))
		}
	}
}
