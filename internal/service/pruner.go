package service

import (
	"context"
	"sync"
	"time"

	"github.com/clinai/neurodiag/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultPrunerInterval  = 1 * time.Hour
	defaultPrunerRetention = 30 * 24 * time.Hour
)

// TranscriptPruner deletes old transcript messages on a periodic schedule so
// the conversation history table does not grow without bound.
type TranscriptPruner struct {
	store  domain.TranscriptStore
	logger *zap.Logger

	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewTranscriptPruner(store domain.TranscriptStore, logger *zap.Logger) *TranscriptPruner {
	return &TranscriptPruner{
		store:     store,
		logger:    logger,
		interval:  defaultPrunerInterval,
		retention: defaultPrunerRetention,
		stopCh:    make(chan struct{}),
	}
}

func (s *TranscriptPruner) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *TranscriptPruner) SetRetention(d time.Duration) {
	s.retention = d
}

// Start runs the pruner in a background goroutine.
func (s *TranscriptPruner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("transcript pruner started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("transcript pruner stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the pruner.
func (s *TranscriptPruner) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *TranscriptPruner) run(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to prune transcripts", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("pruned old transcript messages", zap.Int64("count", deleted))
	}
}
