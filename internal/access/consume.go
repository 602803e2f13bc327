package access

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hoa-community-api/internal/model"
)

// ErrCredentialNotFound is returned by GateStore implementations when no
// credential holds the given code.
var ErrCredentialNotFound = errors.New("credential not found")

// Guest carries what the visitor states at the gate when checking in.
type Guest struct {
	Name    string
	Email   string
	Contact string
}

// GateStore is the persistence surface the consumption flow needs.  The
// critical member is ConsumeAndRecordEntry: it must flip the credential
// from approved to used with a single conditional update (matched on code
// and current status) and create the entry record in the same transaction,
// reporting via its bool whether the update actually hit a row.  That
// affected-row check, not a prior read, is what makes consumption
// at-most-once under concurrent attempts.
type GateStore interface {
	// FindByCode loads the credential holding the code, or
	// ErrCredentialNotFound.
	FindByCode(ctx context.Context, code string) (*model.VisitorCredential, error)
	// ConsumeAndRecordEntry atomically marks the credential used and
	// persists the entry record.  It returns false when the credential was
	// no longer in approved state, in which case nothing is written.
	ConsumeAndRecordEntry(ctx context.Context, code string, entry *model.EntryRecord) (bool, error)
	// MarkExpired flips an approved credential to expired.  Losing the race
	// to another writer is fine; the affected-row count is ignored.
	MarkExpired(ctx context.Context, credentialID uint64) error
}

// GateKeeper enforces single-use consumption of visitor credentials.  It
// composes the evaluator's window classification with the store's
// conditional update so a used-but-still-within-window credential is
// rejected and two concurrent attempts cannot both succeed.
type GateKeeper struct {
	store GateStore
	eval  *Evaluator
}

// NewGateKeeper returns a GateKeeper over the given store and evaluator.
func NewGateKeeper(store GateStore, eval *Evaluator) *GateKeeper {
	return &GateKeeper{store: store, eval: eval}
}

// AttemptConsume checks the code in at the given instant.  On success it
// returns the persisted entry record.  On rejection it returns a
// *CredentialStateError naming one of the reasons from the errors file;
// time-related reasons carry the window bound for display.
//
// The already-used check deliberately short-circuits before the window is
// evaluated: a consumed credential is rejected as already_used even when
// the instant is still inside (or past) its window.
func (g *GateKeeper) AttemptConsume(ctx context.Context, code string, guest Guest, now time.Time) (*model.EntryRecord, error) {
	cred, err := g.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, &CredentialStateError{Reason: ReasonUnknownCode}
		}
		return nil, err
	}

	switch cred.Status {
	case model.CredentialPending:
		return nil, &CredentialStateError{Reason: ReasonPendingApproval}
	case model.CredentialDeclined:
		return nil, &CredentialStateError{Reason: ReasonDeclined}
	case model.CredentialUsed:
		return nil, &CredentialStateError{Reason: ReasonAlreadyUsed}
	case model.CredentialExpired:
		w, werr := g.eval.Window(cred)
		if werr != nil {
			return nil, &CredentialStateError{Reason: ReasonPastValid}
		}
		return nil, &CredentialStateError{Reason: ReasonPastValid, WindowStart: w.Start, WindowEnd: w.End}
	}

	cls, w, err := g.eval.Evaluate(cred, now)
	if err != nil {
		return nil, err
	}
	switch cls {
	case NotYetValid:
		return nil, &CredentialStateError{Reason: ReasonNotYetValid, WindowStart: w.Start, WindowEnd: w.End}
	case PastValid:
		// Lazy expiry: persist the terminal state on access instead of
		// running a background sweep.  The update is conditional, so a
		// concurrent consumer that already flipped the row wins harmlessly.
		if err := g.store.MarkExpired(ctx, cred.ID); err != nil {
			return nil, err
		}
		return nil, &CredentialStateError{Reason: ReasonPastValid, WindowStart: w.Start, WindowEnd: w.End}
	}

	entry := &model.EntryRecord{
		CredentialID: cred.ID,
		GuestName:    guest.Name,
		GuestEmail:   guest.Email,
		GuestContact: guest.Contact,
		PassRef:      uuid.NewString(),
		ArrivedAt:    now,
	}
	ok, err := g.store.ConsumeAndRecordEntry(ctx, code, entry)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another attempt consumed the credential between our read and the
		// conditional update.
		return nil, &CredentialStateError{Reason: ReasonAlreadyUsed}
	}
	return entry, nil
}
