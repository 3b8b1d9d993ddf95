package app

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"golang-wa-broadcast/internal/domain"
)

func newTestService(g *fakeGateway, delays *[]time.Duration, opts ...Option) *BroadcastService {
	opts = append([]Option{WithPacer(recordingPacer(g, delays))}, opts...)
	return NewBroadcastService(NewRegistry(), &MessageStore{}, NewSessionTracker(nil, discardLogger()), g, discardLogger(), opts...)
}

func TestSendTextRequiresMessage(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)
	svc.Registry().AddMany([]string{"111111"})

	if _, err := svc.SendText(context.Background()); !errors.Is(err, domain.ErrMessageNotSet) {
		t.Fatalf("err = %v, want ErrMessageNotSet", err)
	}
	if len(g.calls) != 0 {
		t.Fatalf("gateway was contacted: %v", g.calls)
	}
}

func TestSendTextRequiresRecipients(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)
	_ = svc.Message().Set("hi")

	if _, err := svc.SendText(context.Background()); !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}
	if len(g.calls) != 0 {
		t.Fatalf("gateway was contacted: %v", g.calls)
	}
}

func TestSendTextSkipsUnreachableAndPaces(t *testing.T) {
	g := newFakeGateway()
	g.unreachable["222222"] = true
	var delays []time.Duration
	pub := &capturePublisher{}
	svc := newTestService(g, &delays, WithSendDelay(1500*time.Millisecond), WithPublisher(pub))
	_ = svc.Message().Set("hello")
	svc.Registry().AddMany([]string{"111111", "222222", "333333", "444444"})

	res, err := svc.SendText(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"check:111111", "send:111111", "pause",
		"check:222222",
		"check:333333", "send:333333", "pause",
		"check:444444", "send:444444",
	}
	if !reflect.DeepEqual(g.calls, want) {
		t.Fatalf("calls = %v\nwant    %v", g.calls, want)
	}
	if res.Sent != 3 || res.Skipped != 1 || res.Attempted != 4 {
		t.Fatalf("result = %+v", res)
	}
	for _, d := range delays {
		if d != 1500*time.Millisecond {
			t.Fatalf("delay = %v, want configured 1.5s", d)
		}
	}
	for _, text := range g.texts {
		if text != "hello" {
			t.Fatalf("sent text = %q", text)
		}
	}
	if len(pub.events) != 4 {
		t.Fatalf("events = %d, want 4", len(pub.events))
	}
	if pub.events[1].Outcome != domain.OutcomeUnreachable || pub.events[1].Number != "222222" {
		t.Fatalf("event[1] = %+v", pub.events[1])
	}
	for _, ev := range pub.events {
		if ev.BroadcastID != res.ID || ev.Kind != domain.KindText {
			t.Fatalf("event not tied to broadcast: %+v", ev)
		}
	}
}

func TestSendTextDefaultDelay(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)
	_ = svc.Message().Set("hello")
	svc.Registry().AddMany([]string{"111111", "222222"})

	if _, err := svc.SendText(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(delays) != 1 || delays[0] != 2*time.Second {
		t.Fatalf("delays = %v, want [2s]", delays)
	}
}

func TestSendTextAbortsOnSendError(t *testing.T) {
	g := newFakeGateway()
	g.sendErr["222222"] = errors.New("socket closed")
	var delays []time.Duration
	svc := newTestService(g, &delays)
	_ = svc.Message().Set("hello")
	svc.Registry().AddMany([]string{"111111", "222222", "333333"})

	res, err := svc.SendText(context.Background())
	if !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
	if g.sends() != 2 {
		t.Fatalf("sends = %d, want 2 (third recipient never attempted)", g.sends())
	}
	if res.Sent != 1 {
		t.Fatalf("sent = %d, want 1", res.Sent)
	}
}

func TestSendTextSeesNumbersAddedMidBroadcast(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)
	_ = svc.Message().Set("hello")
	svc.Registry().AddMany([]string{"111111"})

	g.onSend = func(dest domain.Destination) {
		if dest.User() == "111111" {
			svc.Registry().AddMany([]string{"222222"})
		}
	}

	res, err := svc.SendText(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 2 {
		t.Fatalf("sent = %d, want 2", res.Sent)
	}
}

func TestSendTextStopsWhenContextCancelled(t *testing.T) {
	g := newFakeGateway()
	svc := NewBroadcastService(NewRegistry(), &MessageStore{}, NewSessionTracker(nil, discardLogger()), g, discardLogger(),
		WithSendDelay(time.Hour))
	_ = svc.Message().Set("hello")
	svc.Registry().AddMany([]string{"111111", "222222"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.SendText(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if g.sends() != 1 {
		t.Fatalf("sends = %d, want 1", g.sends())
	}
}

func TestSendMediaValidation(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)

	if _, err := svc.SendMedia(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.SendMedia(context.Background(), "/tmp/a.png", ""); !errors.Is(err, domain.ErrNoRecipients) {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}
	if g.loads != 0 {
		t.Fatalf("media loaded before validation passed")
	}
}

func TestSendMediaLoadsOnce(t *testing.T) {
	g := newFakeGateway()
	g.unreachable["111111"] = true
	var delays []time.Duration
	svc := newTestService(g, &delays)
	svc.Registry().AddMany([]string{"111111", "222222", "333333"})

	res, err := svc.SendMedia(context.Background(), "/tmp/a.png", "look")
	if err != nil {
		t.Fatal(err)
	}
	if g.loads != 1 {
		t.Fatalf("loads = %d, want 1", g.loads)
	}
	if res.Sent != 2 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(delays) != 1 {
		t.Fatalf("pauses = %d, want 1", len(delays))
	}
}

func TestSendMediaLoadFailureIsGatewayError(t *testing.T) {
	g := newFakeGateway()
	g.loadErr = errors.New("no such file")
	var delays []time.Duration
	svc := newTestService(g, &delays)
	svc.Registry().AddMany([]string{"111111"})

	if _, err := svc.SendMedia(context.Background(), "/missing", ""); !errors.Is(err, domain.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
	if g.sends() != 0 {
		t.Fatalf("sends = %d, want 0", g.sends())
	}
}

func TestStatusTracksRegistry(t *testing.T) {
	g := newFakeGateway()
	var delays []time.Duration
	svc := newTestService(g, &delays)

	st := svc.Status()
	if st.IsReady || st.HasQRCode || st.PhoneNumbersCount != 0 || st.MessageSet {
		t.Fatalf("initial status = %+v", st)
	}

	svc.Registry().AddMany([]string{"111111", "222222"})
	_ = svc.Message().Set("x")
	svc.Session().OnChallenge("qr")

	st = svc.Status()
	if !st.HasQRCode || st.PhoneNumbersCount != 2 || !st.MessageSet || st.IsReady {
		t.Fatalf("status = %+v", st)
	}

	svc.Session().OnReady()
	st = svc.Status()
	if !st.IsReady || st.HasQRCode {
		t.Fatalf("status after ready = %+v", st)
	}
}
