package confirmation

import (
	"regexp"
	"testing"
)

var numberPattern = regexp.MustCompile(`^BK[0-9A-Z]+$`)

func TestNewNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := NewNumber()
		if !numberPattern.MatchString(n) {
			t.Fatalf("confirmation number %q does not match %s", n, numberPattern)
		}
		// Prefix + at least one timestamp char + 5 suffix chars.
		if len(n) < len(Prefix)+1+suffixLen {
			t.Fatalf("confirmation number %q unexpectedly short", n)
		}
	}
}

// Uniqueness is best effort, not guaranteed; this checks that rapid
// generation does not collide in practice.
func TestNewNumberRapidGenerationDistinct(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		n := NewNumber()
		if seen[n] {
			t.Fatalf("duplicate confirmation number %q after %d generations", n, i)
		}
		seen[n] = true
	}
}
