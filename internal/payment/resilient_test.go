package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

type flakyGateway struct {
	fail  bool
	calls int
}

func (f *flakyGateway) Capture(_ context.Context, code string, amount money.Cents) (Confirmation, error) {
	f.calls++
	if f.fail {
		return Confirmation{}, errors.New("provider timeout")
	}
	return Confirmation{Provider: "test", Reference: code, AmountCents: amount}, nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyGateway{fail: true}
	g := &ResilientGateway{Inner: inner, MaxFailures: 2, OpenFor: time.Hour}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := g.Capture(ctx, "ABCD2345", 100); err == nil {
			t.Fatal("expected capture failure")
		}
	}

	// Circuit is open: the provider must not be reached.
	_, err := g.Capture(ctx, "ABCD2345", 100)
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if inner.calls != 2 {
		t.Fatalf("provider called %d times, want 2", inner.calls)
	}
}

func TestBreakerRecoversThroughProbe(t *testing.T) {
	inner := &flakyGateway{fail: true}
	g := &ResilientGateway{Inner: inner, MaxFailures: 1, OpenFor: time.Nanosecond}

	ctx := context.Background()
	if _, err := g.Capture(ctx, "ABCD2345", 100); err == nil {
		t.Fatal("expected capture failure")
	}

	time.Sleep(time.Millisecond)
	inner.fail = false

	conf, err := g.Capture(ctx, "ABCD2345", 100)
	if err != nil {
		t.Fatalf("probe capture: %v", err)
	}
	if conf.AmountCents != 100 {
		t.Fatalf("amount = %d, want 100", conf.AmountCents)
	}

	// Closed again: subsequent captures flow through.
	if _, err := g.Capture(ctx, "WXYZ2345", 200); err != nil {
		t.Fatalf("capture after recovery: %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	inner := &flakyGateway{}
	g := &ResilientGateway{Inner: inner, MaxFailures: 2, OpenFor: time.Hour}
	ctx := context.Background()

	inner.fail = true
	if _, err := g.Capture(ctx, "A", 1); err == nil {
		t.Fatal("expected failure")
	}
	inner.fail = false
	if _, err := g.Capture(ctx, "B", 1); err != nil {
		t.Fatalf("capture: %v", err)
	}
	inner.fail = true
	if _, err := g.Capture(ctx, "C", 1); err == nil {
		t.Fatal("expected failure")
	}

	// One success between failures keeps the circuit closed.
	if _, err := g.Capture(ctx, "D", 1); errors.Is(err, ErrGatewayUnavailable) {
		t.Fatal("circuit opened despite interleaved success")
	}
}
