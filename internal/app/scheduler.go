package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const pruneInterval = 24 * time.Hour

// AuditPruner удаляет старые записи журнала
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	audit     AuditPruner
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(audit AuditPruner, retention time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		audit:     audit,
		retention: retention,
		interval:  pruneInterval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	s.wg.Add(1)
	go s.runPruneTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runPruneTask периодически чистит журнал
func (s *Scheduler) runPruneTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.prune(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.prune(ctx)
		case <-s.stopChan:
			s.logger.Info("Audit prune task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Audit prune task cancelled")
			return
		}
	}
}

func (s *Scheduler) prune(ctx context.Context) {
	if s.retention <= 0 {
		return
	}

	deleted, err := s.audit.Prune(ctx, s.retention)
	if err != nil {
		s.logger.Error("Failed to prune audit log", zap.Error(err))
		return
	}

	s.logger.Info("Audit log pruned",
		zap.Int64("deleted", deleted),
		zap.Duration("retention", s.retention),
	)
}
