// Package notifier delivers notification events produced by state changes.
// The core flows call Notify fire-and-forget: a delivery failure is logged
// by the implementation and must never roll back or fail the state change
// that produced the event, so every implementation returns its error only
// for the caller to log.
package notifier

import (
	"context"
	"log"

	"github.com/iliyamo/hoa-community-api/internal/queue"
)

// Notifier delivers a single notification event.  Implementations must be
// safe for concurrent use by request handlers.
type Notifier interface {
	Notify(ctx context.Context, ev queue.NotificationEvent) error
}

// Log writes events to the process log and nothing else.  It is the
// default when neither email nor the broker is configured, and keeps local
// development working without external services.
type Log struct{}

// NewLog returns a log-only notifier.
func NewLog() *Log { return &Log{} }

// Notify prints the event and always succeeds.
func (*Log) Notify(_ context.Context, ev queue.NotificationEvent) error {
	log.Printf("notify: type=%s recipient=%s subject=%q", ev.Type, ev.Recipient, ev.Subject)
	return nil
}

// Fanout delivers each event to every wrapped notifier and reports the
// first error after attempting all of them.
type Fanout struct {
	targets []Notifier
}

// NewFanout returns a notifier that forwards to all targets.
func NewFanout(targets ...Notifier) *Fanout { return &Fanout{targets: targets} }

// Notify forwards the event to every target.  Individual failures do not
// stop the remaining targets.
func (f *Fanout) Notify(ctx context.Context, ev queue.NotificationEvent) error {
	var first error
	for _, t := range f.targets {
		if err := t.Notify(ctx, ev); err != nil {
			log.Printf("notifier: delivery failed: %v", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}
