package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// BookingsTotal counts booking creation attempts by result.
	BookingsTotal *prometheus.CounterVec
	// CapacityRejectionsTotal counts reservations refused by the inventory ledger.
	CapacityRejectionsTotal prometheus.Counter
	// RefundsTotal counts refund applications by result.
	RefundsTotal *prometheus.CounterVec
	// RefundAmountCents accumulates refunded amounts in cents.
	RefundAmountCents prometheus.Counter
	// DiscountRedemptionsTotal counts committed discount code redemptions.
	DiscountRedemptionsTotal prometheus.Counter
	// CheckInsTotal counts check-in and revert outcomes.
	CheckInsTotal *prometheus.CounterVec
	// EventsEmittedTotal counts domain events recorded on the bus by topic.
	EventsEmittedTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers booking domain
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BookingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of booking creation outcomes.",
		}, []string{"result"})
		CapacityRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capacity_rejections_total",
			Help:      "Reservations refused because a pool was exhausted.",
		})
		RefundsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_total",
			Help:      "Count of refund application outcomes.",
		}, []string{"result"})
		RefundAmountCents = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refund_amount_cents_total",
			Help:      "Sum of refunded amounts in cents.",
		})
		DiscountRedemptionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_redemptions_total",
			Help:      "Discount code redemptions committed at booking creation.",
		})
		CheckInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_ins_total",
			Help:      "Count of check-in and revert outcomes.",
		}, []string{"action", "result"})
		EventsEmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Domain events recorded on the event bus.",
		}, []string{"topic"})

		mustRegisterCollector(reg, BookingsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BookingsTotal = v
			}
		})
		mustRegisterCollector(reg, CapacityRejectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CapacityRejectionsTotal = v
			}
		})
		mustRegisterCollector(reg, RefundsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RefundsTotal = v
			}
		})
		mustRegisterCollector(reg, RefundAmountCents, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				RefundAmountCents = v
			}
		})
		mustRegisterCollector(reg, DiscountRedemptionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				DiscountRedemptionsTotal = v
			}
		})
		mustRegisterCollector(reg, CheckInsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckInsTotal = v
			}
		})
		mustRegisterCollector(reg, EventsEmittedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EventsEmittedTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
