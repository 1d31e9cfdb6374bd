// Package worker keeps the local snapshot cache in sync with the remote
// backend. It refreshes on change events from AMQP and on a periodic timer
// as a backup in case events are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/gateway"
)

// SnapshotSink is where refreshed snapshots land. Implemented by the
// SQLite cache.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, userID string, state core.AppState) error
	SnapshotAge(ctx context.Context, userID string) (time.Duration, bool, error)
}

// MirrorWorker refetches a user's full state and persists it locally.
type MirrorWorker struct {
	gw       gateway.Gateway
	sink     SnapshotSink
	userID   string
	maxAge   time.Duration
	interval time.Duration
}

func NewMirrorWorker(gw gateway.Gateway, sink SnapshotSink, userID string, interval time.Duration) *MirrorWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &MirrorWorker{
		gw:       gw,
		sink:     sink,
		userID:   userID,
		maxAge:   interval * 2,
		interval: interval,
	}
}

// HandleChange processes a single change event by refetching the affected
// user's state. The event carries no payload, so every change costs one
// full refresh; events for other users are skipped.
func (w *MirrorWorker) HandleChange(ctx context.Context, ev amqp.ChangeEvent) error {
	if w.userID != "" && ev.UserID != w.userID {
		slog.DebugContext(ctx, "Skipping change event for another user",
			"event_user", ev.UserID)
		return nil
	}

	slog.InfoContext(ctx, "Processing change event",
		"collection", ev.Collection,
		"op", ev.Op,
		"entity_id", ev.EntityID)

	return w.refresh(ctx, ev.UserID)
}

// StartupRefresh brings the mirror up to date when the worker boots. This
// recovers from missed events or worker downtime.
func (w *MirrorWorker) StartupRefresh(ctx context.Context) error {
	if w.userID == "" {
		slog.InfoContext(ctx, "No user configured, skipping startup refresh")
		return nil
	}
	slog.InfoContext(ctx, "Running startup refresh", "user_id", w.userID)
	return w.refresh(ctx, w.userID)
}

// RefreshIfStale refetches only when the cached snapshot is missing or
// older than twice the refresh interval.
func (w *MirrorWorker) RefreshIfStale(ctx context.Context) error {
	if w.userID == "" {
		return nil
	}
	age, ok, err := w.sink.SnapshotAge(ctx, w.userID)
	if err != nil {
		return fmt.Errorf("check snapshot age: %w", err)
	}
	if ok && age < w.maxAge {
		slog.DebugContext(ctx, "Snapshot fresh enough, skipping refresh",
			"age", age.Round(time.Second))
		return nil
	}
	return w.refresh(ctx, w.userID)
}

// Run consumes change events until the context is cancelled, with a
// periodic staleness check running alongside.
func (w *MirrorWorker) Run(ctx context.Context, client *amqp.Client) error {
	if err := w.StartupRefresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup refresh failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.RefreshIfStale(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
				}
			}
		}
	}()

	return client.ConsumeChanges(ctx, func(ev amqp.ChangeEvent) error {
		return w.HandleChange(ctx, ev)
	})
}

func (w *MirrorWorker) refresh(ctx context.Context, userID string) error {
	started := time.Now()
	state, err := gateway.FetchAppState(ctx, w.gw, userID)
	if err != nil {
		return fmt.Errorf("fetch state: %w", err)
	}
	if err := w.sink.SaveSnapshot(ctx, userID, state); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot mirrored",
		"user_id", userID,
		"products", len(state.Products),
		"sales", len(state.Sales),
		"expenses", len(state.Expenses),
		"took", time.Since(started).Round(time.Millisecond))
	return nil
}
