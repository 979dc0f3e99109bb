// Package identity computes order-independent digests of cut combinations.
package identity

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"slices"
	"strconv"

	"github.com/supercuts/supercuts/internal/models"
)

// Hash returns the hex SHA-256 digest of c's canonical form. The cuts are
// sorted by field, pivot (unset first), direction and fixed flag before
// serialization, so any permutation of the same cuts hashes identically.
func Hash(c models.Combination) string {
	cuts := slices.Clone(c)
	slices.SortFunc(cuts, compareCuts)

	h := sha256.New()
	for _, cut := range cuts {
		writeCut(h, cut)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func compareCuts(a, b models.Cut) int {
	if c := cmp.Compare(a.Field, b.Field); c != 0 {
		return c
	}
	if c := comparePivots(a.Pivot, b.Pivot); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Direction, b.Direction); c != 0 {
		return c
	}
	switch {
	case a.Fixed == b.Fixed:
		return 0
	case !a.Fixed:
		return -1
	default:
		return 1
	}
}

func comparePivots(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// writeCut emits one cut as null-delimited fields with a record separator,
// so no two different cut lists share a serialization.
func writeCut(h hash.Hash, c models.Cut) {
	pivot := "-"
	if c.Pivot != nil {
		pivot = strconv.FormatFloat(*c.Pivot, 'g', -1, 64)
	}
	fixed := "0"
	if c.Fixed {
		fixed = "1"
	}
	for _, s := range []string{c.Field, pivot, string(c.Direction), fixed} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	h.Write([]byte{0x1e})
}
