package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tour/internal/money"
)

// ErrGatewayUnavailable is returned when the breaker refuses a capture
// because the provider is considered down.
var ErrGatewayUnavailable = errors.New("payment: gateway unavailable")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ResilientGateway wraps a Gateway with a failure-threshold circuit
// breaker. Consecutive capture failures open the circuit; after the
// cool-off one probe capture decides whether it closes again. A capture
// refused by an open circuit never reaches the provider, so no money
// moves.
type ResilientGateway struct {
	Inner       Gateway
	MaxFailures int
	OpenFor     time.Duration
	Logger      zerolog.Logger

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
}

func (g *ResilientGateway) maxFailures() int {
	if g.MaxFailures <= 0 {
		return 3
	}
	return g.MaxFailures
}

func (g *ResilientGateway) openFor() time.Duration {
	if g.OpenFor <= 0 {
		return 30 * time.Second
	}
	return g.OpenFor
}

// Capture implements Gateway.
func (g *ResilientGateway) Capture(ctx context.Context, confirmationCode string, amountCents money.Cents) (Confirmation, error) {
	if !g.allow() {
		return Confirmation{}, ErrGatewayUnavailable
	}
	conf, err := g.Inner.Capture(ctx, confirmationCode, amountCents)
	g.report(err == nil)
	if err != nil {
		return Confirmation{}, err
	}
	return conf, nil
}

func (g *ResilientGateway) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != breakerOpen {
		return true
	}
	if time.Since(g.openedAt) >= g.openFor() {
		g.transition(breakerHalfOpen)
		return true
	}
	return false
}

func (g *ResilientGateway) report(success bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case breakerHalfOpen:
		if success {
			g.transition(breakerClosed)
		} else {
			g.transition(breakerOpen)
		}
	case breakerClosed:
		if success {
			g.failures = 0
			return
		}
		g.failures++
		if g.failures >= g.maxFailures() {
			g.transition(breakerOpen)
		}
	}
}

func (g *ResilientGateway) transition(next breakerState) {
	prev := g.state
	g.state = next
	g.failures = 0
	if next == breakerOpen {
		g.openedAt = time.Now()
	}
	g.Logger.Info().
		Str("from_state", prev.String()).
		Str("to_state", next.String()).
		Msg("payment breaker transition")
}
