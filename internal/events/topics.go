package events

// Topic constants for domain events emitted by the booking core.
const (
	TopicBookingCreated         = "booking.created"
	TopicBookingPaid            = "booking.paid"
	TopicBookingCheckedIn       = "booking.checked_in"
	TopicBookingCheckInReverted = "booking.check_in_reverted"
	TopicBookingRefunded        = "booking.refunded"
	TopicBookingCancelled       = "booking.cancelled"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicBookingCreated,
		TopicBookingPaid,
		TopicBookingCheckedIn,
		TopicBookingCheckInReverted,
		TopicBookingRefunded,
		TopicBookingCancelled,
	}
}
