package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/gateway"
	"caixa/internal/gateway/memory"
)

type fakeSink struct {
	mu    sync.Mutex
	saved map[string]core.AppState
	age   time.Duration
	has   bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{saved: map[string]core.AppState{}}
}

func (f *fakeSink) SaveSnapshot(_ context.Context, userID string, state core.AppState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[userID] = state
	return nil
}

func (f *fakeSink) SnapshotAge(context.Context, string) (time.Duration, bool, error) {
	return f.age, f.has, nil
}

func TestHandleChangeRefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	gw := memory.New()
	if err := gw.InsertProduct(ctx, gateway.ProductRow{ID: "p1", Name: "Coxinha", Price: "4.50", UserID: "u1"}); err != nil {
		t.Fatalf("InsertProduct: %v", err)
	}
	sink := newFakeSink()
	w := NewMirrorWorker(gw, sink, "u1", time.Minute)

	err := w.HandleChange(ctx, amqp.NewChangeEvent("products", amqp.OpCreate, "p1", "u1"))
	if err != nil {
		t.Fatalf("HandleChange: %v", err)
	}

	state, ok := sink.saved["u1"]
	if !ok {
		t.Fatal("expected snapshot saved for u1")
	}
	if len(state.Products) != 1 || state.Products[0].Price.Cents != 450 {
		t.Errorf("unexpected mirrored state: %+v", state.Products)
	}
}

func TestHandleChangeSkipsOtherUsers(t *testing.T) {
	sink := newFakeSink()
	w := NewMirrorWorker(memory.New(), sink, "u1", time.Minute)

	err := w.HandleChange(context.Background(), amqp.NewChangeEvent("sales", amqp.OpCreate, "s1", "u2"))
	if err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	if len(sink.saved) != 0 {
		t.Error("events for other users must not trigger a refresh")
	}
}

func TestRefreshIfStaleSkipsFreshSnapshot(t *testing.T) {
	sink := newFakeSink()
	sink.has = true
	sink.age = time.Second
	w := NewMirrorWorker(memory.New(), sink, "u1", time.Minute)

	if err := w.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale: %v", err)
	}
	if len(sink.saved) != 0 {
		t.Error("fresh snapshot must not be refetched")
	}
}

func TestRefreshIfStaleRefetchesOldSnapshot(t *testing.T) {
	sink := newFakeSink()
	sink.has = true
	sink.age = time.Hour
	w := NewMirrorWorker(memory.New(), sink, "u1", time.Minute)

	if err := w.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("RefreshIfStale: %v", err)
	}
	if _, ok := sink.saved["u1"]; !ok {
		t.Error("stale snapshot must be refetched")
	}
}
