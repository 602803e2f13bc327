package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory tracks issued codes in memory.
type fakeDirectory struct {
	used map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{used: make(map[string]bool)}
}

func (d *fakeDirectory) CodeInUse(_ context.Context, code string) (bool, error) {
	return d.used[code], nil
}

func TestIssueProducesUniqueSixDigitCodes(t *testing.T) {
	dir := newFakeDirectory()
	issuer := NewIssuer(dir)

	const n = 500
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		code, err := issuer.Issue(context.Background())
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
		dir.used[code] = true
	}
	assert.Len(t, seen, n)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	dir := newFakeDirectory()
	dir.used["100000"] = true
	issuer := NewIssuer(dir)

	// First two draws collide with the taken code; the third is free.
	draws := []int64{0, 0, 1}
	issuer.randInt = func(int64) (int64, error) {
		v := draws[0]
		draws = draws[1:]
		return v, nil
	}

	code, err := issuer.Issue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "100001", code)
}

func TestIssueFailsWhenCodeSpaceSaturated(t *testing.T) {
	dir := newFakeDirectory()
	issuer := NewIssuer(dir)
	// Every draw lands on a taken code.
	issuer.randInt = func(int64) (int64, error) { return 0, nil }
	dir.used["100000"] = true

	_, err := issuer.Issue(context.Background())
	require.ErrorIs(t, err, ErrCodeSpaceExhausted)
}
