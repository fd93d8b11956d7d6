package directory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

const (
	taskTimeout   = time.Minute
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// Syncer dispatches directory upserts off the caller's critical path. Each
// task runs on its own detached context with a bounded retry budget, so a
// cancelled caller never cancels an in-flight sync and a failing directory
// never fails the primary operation. Outcomes are logged per task id.
type Syncer struct {
	client *Client
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewSyncer builds a background syncer over the directory client.
func NewSyncer(client *Client, logger *slog.Logger) *Syncer {
	return &Syncer{client: client, logger: logger}
}

// Enqueue schedules one upsert and returns immediately. When the client is
// disabled this is a no-op.
func (s *Syncer) Enqueue(rec Record) {
	if !s.client.Enabled() {
		return
	}

	taskID := uuid.NewString()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(taskID, rec)
	}()
}

func (s *Syncer) run(taskID string, rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	var created bool
	err := retry.Do(
		func() error {
			result, _, err := s.client.Sync(ctx, rec)
			if err != nil {
				return err
			}
			created = result.Created
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		// Best effort only: the failure is absorbed here, never surfaced.
		s.logger.Warn("directory sync failed",
			"task_id", taskID,
			"address", rec.PublicAddress,
			"error", err,
		)
		return
	}

	s.logger.Info("directory sync completed",
		"task_id", taskID,
		"address", rec.PublicAddress,
		"created", created,
	)
}

// Wait blocks until every enqueued task has finished. Used on shutdown and
// in tests.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
