// Package access implements the entry-control core: one-time PIN issuance,
// visit-window evaluation and single-use consumption.  The package has no
// knowledge of HTTP or SQL; storage is accessed through small interfaces so
// the policy logic stays a pure function of its inputs wherever possible.
package access

import (
	"errors"
	"fmt"
	"time"
)

// Reason identifies why a consumption attempt was rejected.  The values are
// stable strings surfaced to API clients.
type Reason string

const (
	ReasonUnknownCode     Reason = "unknown_code"
	ReasonPendingApproval Reason = "pending_approval"
	ReasonDeclined        Reason = "declined"
	ReasonNotYetValid     Reason = "not_yet_valid"
	ReasonPastValid       Reason = "past_valid"
	ReasonAlreadyUsed     Reason = "already_used"
)

// CredentialStateError reports a consumption attempt against a credential
// that is not consumable right now.  WindowStart and WindowEnd carry the
// visit window when the rejection is time-related (not_yet_valid,
// past_valid) so callers can show the visitor when the PIN is usable; they
// are zero otherwise.
type CredentialStateError struct {
	Reason      Reason
	WindowStart time.Time
	WindowEnd   time.Time
}

func (e *CredentialStateError) Error() string {
	switch e.Reason {
	case ReasonNotYetValid:
		return fmt.Sprintf("credential not yet valid; window opens %s", e.WindowStart.Format(time.RFC3339))
	case ReasonPastValid:
		return fmt.Sprintf("credential no longer valid; window closed %s", e.WindowEnd.Format(time.RFC3339))
	default:
		return "credential not consumable: " + string(e.Reason)
	}
}

// ValidationError reports malformed credential fields such as an
// unparseable time of day.  It is caller-fixable and surfaced verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ErrCodeSpaceExhausted is returned by the issuer when no unused code could
// be found within the attempt bound.  It signals a saturated code space and
// must be treated as a fatal operational condition, not retried by callers.
var ErrCodeSpaceExhausted = errors.New("one-time code space exhausted")
