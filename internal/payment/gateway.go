package payment

import (
	"context"
	"time"

	"github.com/noah-isme/backend-tour/internal/money"
)

// Confirmation is the capture confirmation returned by an upstream payment
// provider and consumed by MarkPaid. The gateway integration itself lives
// outside this core.
type Confirmation struct {
	Provider    string
	Reference   string
	AmountCents money.Cents
	CapturedAt  time.Time
}

// Gateway abstracts the external payment collaborator. Implementations are
// injected so the core stays testable without I/O.
type Gateway interface {
	// Capture charges the given amount and returns the provider confirmation.
	Capture(ctx context.Context, confirmationCode string, amountCents money.Cents) (Confirmation, error)
}

// StaticGateway confirms every capture immediately. Useful for tests and
// the admin "mark as paid" path where money changed hands out of band.
type StaticGateway struct {
	Provider string
	Now      func() time.Time
}

// Capture implements Gateway.
func (g StaticGateway) Capture(_ context.Context, confirmationCode string, amountCents money.Cents) (Confirmation, error) {
	provider := g.Provider
	if provider == "" {
		provider = "manual"
	}
	now := time.Now().UTC()
	if g.Now != nil {
		now = g.Now()
	}
	return Confirmation{
		Provider:    provider,
		Reference:   confirmationCode,
		AmountCents: amountCents,
		CapturedAt:  now,
	}, nil
}
