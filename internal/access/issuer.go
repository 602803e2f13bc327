package access

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// pinDigits is the width of issued codes.  Six digits gives 900000 usable
// codes (100000–999999), which keeps collisions rare at community scale
// while staying typable on a gate keypad.
const pinDigits = 6

// maxIssueAttempts bounds the uniqueness-retry loop.  Hitting the bound
// means the code space is effectively saturated and issuance must fail
// loudly rather than spin.
const maxIssueAttempts = 100

// CodeDirectory answers whether a candidate code is already held by any
// credential, live or terminal.  Codes are globally unique across the whole
// table, not just among active credentials.
type CodeDirectory interface {
	CodeInUse(ctx context.Context, code string) (bool, error)
}

// Issuer generates unique fixed-width numeric one-time codes.  It draws
// uniformly over the code space and probes the directory for collisions,
// retrying up to maxIssueAttempts before giving up with
// ErrCodeSpaceExhausted.
type Issuer struct {
	dir CodeDirectory
	// randInt returns a uniform value in [0, n).  Overridable in tests;
	// defaults to crypto/rand.
	randInt func(n int64) (int64, error)
}

// NewIssuer returns an Issuer backed by the given code directory.
func NewIssuer(dir CodeDirectory) *Issuer {
	return &Issuer{dir: dir, randInt: cryptoRandInt}
}

// Issue returns a code that no stored credential holds at probe time.  The
// caller is responsible for persisting the code on the credential; a unique
// index on the code column is the final arbiter against a concurrent
// issuance racing between probe and persist.
func (i *Issuer) Issue(ctx context.Context) (string, error) {
	// 6-digit codes never start with zero, matching what gets printed on
	// gate passes: draw from [100000, 999999].
	const low = 100000
	const span = 900000
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		n, err := i.randInt(span)
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%0*d", pinDigits, low+n)
		inUse, err := i.dir.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func cryptoRandInt(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}
