// Package confirmation generates human-readable booking references.
package confirmation

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

// Prefix identifies booking references among other identifiers.
const Prefix = "BK"

const suffixLen = 5

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewNumber returns a confirmation number: the fixed prefix, the current
// Unix-millisecond timestamp in uppercase base36, and a short random base36
// suffix. Uniqueness is best effort only — there is no check against
// existing records. The timestamp component means a collision requires two
// bookings in the same millisecond that also draw the same suffix.
func NewNumber() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return Prefix + ts + randomSuffix(suffixLen)
}

// randomSuffix returns n cryptographically random base36 characters.
func randomSuffix(n int) string {
	b := make([]byte, n)
	// rand.Read never fails on supported platforms; fall back to a fixed
	// byte so a broken entropy source still yields a well-formed number.
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = 0
		}
	}
	out := make([]byte, n)
	for i, c := range b {
		out[i] = base36[int(c)%len(base36)]
	}
	return string(out)
}
