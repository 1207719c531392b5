package booking

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-tour/internal/money"
)

var validate = validator.New()

// CreateRequest is a fully validated booking construction request. Only the
// Builder (or a validated API DTO) should produce one.
type CreateRequest struct {
	Customer     Customer    `json:"customer" validate:"required"`
	Items        []LineItem  `json:"items" validate:"required,min=1,dive"`
	DiscountCode string      `json:"discountCode,omitempty"`
	TipCents     money.Cents `json:"tipCents" validate:"gte=0"`
}

// Builder accumulates loosely-typed form state and only yields a
// well-formed CreateRequest once every required field is present. The draft
// versus submittable distinction is explicit: Build fails until the draft
// is complete.
type Builder struct {
	customer     *Customer
	items        []LineItem
	discountCode string
	tipCents     money.Cents
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Customer sets the booking customer.
func (b *Builder) Customer(c Customer) *Builder {
	b.customer = &c
	return b
}

// AddTicket appends a ticket line item.
func (b *Builder) AddTicket(tripID, boatID, ticketType string, quantity int, unitPrice money.Cents) *Builder {
	b.items = append(b.items, LineItem{
		TripID:            tripID,
		BoatID:            boatID,
		Kind:              ItemKindTicket,
		ItemType:          ticketType,
		Quantity:          quantity,
		PricePerUnitCents: unitPrice,
		Status:            ItemActive,
	})
	return b
}

// AddMerchandise appends a merchandise line item.
func (b *Builder) AddMerchandise(tripID, boatID, merchandiseID, name, variant string, quantity int, unitPrice money.Cents) *Builder {
	b.items = append(b.items, LineItem{
		TripID:            tripID,
		BoatID:            boatID,
		Kind:              ItemKindMerchandise,
		ItemType:          name,
		Quantity:          quantity,
		PricePerUnitCents: unitPrice,
		MerchandiseID:     merchandiseID,
		VariantOption:     variant,
		Status:            ItemActive,
	})
	return b
}

// Discount sets the discount or access code to apply.
func (b *Builder) Discount(code string) *Builder {
	b.discountCode = code
	return b
}

// Tip sets the tip amount in cents.
func (b *Builder) Tip(cents money.Cents) *Builder {
	b.tipCents = cents
	return b
}

// Submittable reports whether Build would succeed.
func (b *Builder) Submittable() bool {
	_, err := b.Build()
	return err == nil
}

// Build validates the accumulated state and returns the construction
// request. The draft remains reusable after a failed Build.
func (b *Builder) Build() (CreateRequest, error) {
	if b.customer == nil {
		return CreateRequest{}, fmt.Errorf("%w: customer is required", ErrValidation)
	}
	req := CreateRequest{
		Customer:     *b.customer,
		Items:        append([]LineItem(nil), b.items...),
		DiscountCode: b.discountCode,
		TipCents:     b.tipCents,
	}
	if err := validate.Struct(req); err != nil {
		return CreateRequest{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			return CreateRequest{}, err
		}
	}
	return req, nil
}
