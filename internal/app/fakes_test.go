package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang-wa-broadcast/internal/domain"
	"golang-wa-broadcast/internal/ports"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMedia struct{ path, caption string }

func (m fakeMedia) MimeType() string { return "image/png" }

// fakeGateway records calls in order. Calls are logged as "check:<user>",
// "send:<user>" and "pause".
type fakeGateway struct {
	mu          sync.Mutex
	calls       []string
	unreachable map[string]bool
	sendErr     map[string]error
	loadErr     error
	loads       int
	texts       []string
	onSend      func(dest domain.Destination)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{unreachable: map[string]bool{}, sendErr: map[string]error{}}
}

func (g *fakeGateway) record(call string) {
	g.mu.Lock()
	g.calls = append(g.calls, call)
	g.mu.Unlock()
}

func (g *fakeGateway) IsReachable(_ context.Context, dest domain.Destination) (bool, error) {
	g.record("check:" + dest.User())
	return !g.unreachable[dest.User()], nil
}

func (g *fakeGateway) SendText(_ context.Context, dest domain.Destination, text string) error {
	g.record("send:" + dest.User())
	g.mu.Lock()
	g.texts = append(g.texts, text)
	g.mu.Unlock()
	if g.onSend != nil {
		g.onSend(dest)
	}
	return g.sendErr[dest.User()]
}

func (g *fakeGateway) LoadMedia(_ context.Context, path, caption string) (ports.Media, error) {
	g.mu.Lock()
	g.loads++
	g.mu.Unlock()
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	return fakeMedia{path: path, caption: caption}, nil
}

func (g *fakeGateway) SendMedia(_ context.Context, dest domain.Destination, _ ports.Media) error {
	g.record("send:" + dest.User())
	return g.sendErr[dest.User()]
}

func (g *fakeGateway) Close() {}

func (g *fakeGateway) sends() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if len(c) > 5 && c[:5] == "send:" {
			n++
		}
	}
	return n
}

// recordingPacer logs pauses into the gateway call log so ordering can be asserted.
func recordingPacer(g *fakeGateway, delays *[]time.Duration) Pacer {
	return func(_ context.Context, d time.Duration) error {
		g.record("pause")
		*delays = append(*delays, d)
		return nil
	}
}

type capturePublisher struct {
	mu     sync.Mutex
	events []domain.DeliveryEvent
}

func (p *capturePublisher) Publish(_ context.Context, ev domain.DeliveryEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}

// memoryRepository keeps events in insertion order, keyed like the
// postgres table.
type memoryRepository struct {
	mu      sync.Mutex
	events  []domain.DeliveryEvent
	seen    map[uuid.UUID]bool
	saveErr error
}

func (r *memoryRepository) SaveDelivery(_ context.Context, ev domain.DeliveryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.seen == nil {
		r.seen = map[uuid.UUID]bool{}
	}
	if !r.seen[ev.ID] {
		r.seen[ev.ID] = true
		r.events = append(r.events, ev)
	}
	return nil
}

func (r *memoryRepository) ListDeliveries(_ context.Context, broadcastID uuid.UUID) ([]domain.DeliveryEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DeliveryEvent
	for _, ev := range r.events {
		if ev.BroadcastID == broadcastID {
			out = append(out, ev)
		}
	}
	return out, nil
}
