package booking

import (
	"errors"
	"testing"
)

func TestBuilderDraftVersusSubmittable(t *testing.T) {
	b := NewBuilder()
	if b.Submittable() {
		t.Fatal("empty builder must not be submittable")
	}

	b.AddTicket("trip-1", "boat-1", "adult", 2, 5_000)
	if b.Submittable() {
		t.Fatal("builder without customer must not be submittable")
	}

	b.Customer(Customer{Name: "Ari Wibowo", Email: "ari@example.com"})
	if !b.Submittable() {
		t.Fatal("complete builder must be submittable")
	}

	req, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(req.Items) != 1 || req.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", req.Items)
	}
}

func TestBuilderRejectsBadEmail(t *testing.T) {
	b := NewBuilder().
		Customer(Customer{Name: "Ari", Email: "not-an-email"}).
		AddTicket("trip-1", "boat-1", "adult", 1, 5_000)
	if _, err := b.Build(); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestBuilderDraftReusableAfterFailedBuild(t *testing.T) {
	b := NewBuilder().AddTicket("trip-1", "boat-1", "adult", 1, 5_000)
	if _, err := b.Build(); err == nil {
		t.Fatal("expected build failure")
	}
	b.Customer(Customer{Name: "Ari", Email: "ari@example.com"})
	if _, err := b.Build(); err != nil {
		t.Fatalf("build after completing draft: %v", err)
	}
}

func TestBuilderMalformedItemRejected(t *testing.T) {
	b := NewBuilder().
		Customer(Customer{Name: "Ari", Email: "ari@example.com"}).
		AddMerchandise("trip-1", "boat-1", "", "Tour Tee", "m", 1, 1_500)
	if _, err := b.Build(); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}
