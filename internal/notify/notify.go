// Package notify carries user-facing notices out of the store. The HTTP
// layer surfaces them to the client; background components log them.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Notice is a short user-visible message.
type Notice struct {
	Kind    Kind
	Message string
}

// Notifier receives notices emitted by store actions.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Logger routes notices to structured logs. Used by the worker and as the
// default when no collector is wired in.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Notify(ctx context.Context, n Notice) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	switch n.Kind {
	case KindError:
		log.ErrorContext(ctx, "notice", "message", n.Message)
	case KindWarning:
		log.WarnContext(ctx, "notice", "message", n.Message)
	default:
		log.InfoContext(ctx, "notice", "message", n.Message)
	}
}

// Recorder accumulates notices; tests assert against them.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
