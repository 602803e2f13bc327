// Package queue defines message payloads exchanged over the message broker.
package queue

// Event type names published to the notifications queue.
const (
	EventCredentialApproved = "credential.approved"
	EventCredentialDeclined = "credential.declined"
	EventBookingDecided     = "booking.decided"
	EventEntryRecorded      = "entry.recorded"
)

// NotificationEvent is published when a state change should reach a person:
// a visitor request was decided, a booking was decided, or a guest checked
// in at the gate.  It carries enough for downstream consumers to send mail
// or log without querying the primary database.  Delivery is best-effort;
// the state change that produced the event never depends on it.
type NotificationEvent struct {
	Type       string `json:"type"`
	Recipient  string `json:"recipient"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	OccurredAt string `json:"occurred_at"`
}
