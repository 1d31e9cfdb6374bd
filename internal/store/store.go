// Package store holds the in-memory business snapshot and the actions that
// mutate it. Every action runs in two phases: the remote gateway write
// first, then a pure reducer over the snapshot. A failed write leaves the
// snapshot untouched.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/amqp"
	"caixa/internal/auth"
	"caixa/internal/core"
	"caixa/internal/gateway"
	"caixa/internal/notify"
)

// ErrValidation wraps entity validation failures surfaced by actions.
var ErrValidation = errors.New("validation failed")

type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
	OutcomeNotFound Outcome = "not_found"
)

// Result tags how an action resolved, so callers can tell an applied
// mutation from a guarded no-op.
type Result struct {
	Outcome Outcome
	Reason  string
}

func applied() Result          { return Result{Outcome: OutcomeApplied} }
func rejected(r string) Result { return Result{Outcome: OutcomeRejected, Reason: r} }
func noMatch() Result          { return Result{Outcome: OutcomeNotFound} }

// Cache persists snapshots locally so a restart can show the last known
// state before the remote fetch completes.
type Cache interface {
	SaveSnapshot(ctx context.Context, userID string, state core.AppState) error
	LoadSnapshot(ctx context.Context, userID string) (core.AppState, bool, error)
}

// Publisher emits change events after a mutation is applied.
type Publisher interface {
	PublishChange(ctx context.Context, ev amqp.ChangeEvent) error
}

type Store struct {
	mu    sync.RWMutex
	state core.AppState

	gw        gateway.Gateway
	sessions  auth.SessionSource
	notifier  notify.Notifier
	cache     Cache
	publisher Publisher
	log       *slog.Logger

	now   func() time.Time
	newID func() string
}

// Options carries the optional collaborators. Zero values are fine; the
// store then skips caching and event publishing and logs via slog.Default.
type Options struct {
	Cache     Cache
	Publisher Publisher
	Notifier  notify.Notifier
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

func New(gw gateway.Gateway, sessions auth.SessionSource, opts Options) *Store {
	s := &Store{
		state:     core.NewAppState(),
		gw:        gw,
		sessions:  sessions,
		notifier:  opts.Notifier,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.notifier == nil {
		s.notifier = notify.Logger{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Initialize replaces the snapshot with a fresh fetch of every collection.
// Without an active session it is a no-op; calling it again refetches.
func (s *Store) Initialize(ctx context.Context) error {
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if userID == "" {
		s.log.InfoContext(ctx, "skipping store initialization, no active session")
		return nil
	}

	state, err := gateway.FetchAppState(ctx, s.gw, userID)
	if err != nil {
		return s.fail(ctx, "não foi possível carregar os dados", err)
	}

	// An account with no tag rows has never been initialized. Register the
	// seed tags remotely so later renames and removals stay durable: from
	// here on the remote list is the source of truth.
	if len(state.ExpenseTags) == 0 {
		for _, tag := range core.DefaultExpenseTags {
			row := gateway.TokenRow{ID: s.newID(), UserID: userID, Name: tag}
			if err := s.gw.InsertExpenseTagToken(ctx, row); err != nil {
				return s.fail(ctx, "não foi possível carregar os dados", err)
			}
		}
		state.ExpenseTags = slices.Clone(core.DefaultExpenseTags)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	s.log.InfoContext(ctx, "store initialized",
		"user_id", userID,
		"products", len(state.Products),
		"sales", len(state.Sales),
		"expenses", len(state.Expenses))

	s.persist(ctx, userID, state)
	return nil
}

// RestoreSnapshot loads the last persisted snapshot for the user, if one
// exists. Missing or unreadable cache entries are not errors; the snapshot
// simply stays empty until Initialize runs.
func (s *Store) RestoreSnapshot(ctx context.Context) {
	if s.cache == nil {
		return
	}
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil || userID == "" {
		return
	}
	state, ok, err := s.cache.LoadSnapshot(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to restore cached snapshot", "error", err)
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.log.InfoContext(ctx, "restored cached snapshot", "user_id", userID)
}

// user resolves the acting user, notifying when no session is active.
func (s *Store) user(ctx context.Context) (string, error) {
	userID, err := s.sessions.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve session: %w", err)
	}
	if userID == "" {
		s.notifier.Notify(ctx, notify.Notice{Kind: notify.KindError, Message: "faça login para continuar"})
		return "", auth.ErrAuthRequired
	}
	return userID, nil
}

// fail logs the cause, surfaces a one-line notice, and returns the error.
func (s *Store) fail(ctx context.Context, message string, err error) error {
	s.log.ErrorContext(ctx, message, "error", err)
	s.notifier.Notify(ctx, notify.Notice{Kind: notify.KindError, Message: message})
	return err
}

// apply runs a reducer under the write lock and then persists and publishes
// best-effort. The reducer must only touch the snapshot it is handed.
func (s *Store) apply(ctx context.Context, userID string, ev amqp.ChangeEvent, reduce func(*core.AppState)) {
	s.mu.Lock()
	reduce(&s.state)
	state := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, userID, state)
	if s.publisher != nil {
		if err := s.publisher.PublishChange(ctx, ev); err != nil {
			s.log.WarnContext(ctx, "failed to publish change event",
				"error", err, "collection", ev.Collection, "op", ev.Op)
		}
	}
}

func (s *Store) persist(ctx context.Context, userID string, state core.AppState) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveSnapshot(ctx, userID, state); err != nil {
		s.log.WarnContext(ctx, "failed to persist snapshot cache", "error", err)
	}
}
