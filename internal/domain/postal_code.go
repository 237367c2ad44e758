package domain

import (
	"regexp"
	"strings"
)

var (
	digitRuns          = regexp.MustCompile(`\d+`)
	hyphenatedPostcode = regexp.MustCompile(`^\d{4}-\d{3}$`)
	barePostcode       = regexp.MustCompile(`^\d{7}$`)
)

// NormalizePostalCode reduces any input to its digits. Exactly seven digits
// are rendered in the canonical DDDD-DDD form; any other count is returned as
// the bare digit string (empty when there are none).
func NormalizePostalCode(raw string) string {
	digits := strings.Join(digitRuns.FindAllString(raw, -1), "")
	if len(digits) == 7 {
		return digits[:4] + "-" + digits[4:]
	}
	return digits
}

// ValidPostalCode reports whether s is DDDD-DDD or seven bare digits.
//
// Callers normally normalize first, which already turns seven bare digits into
// the hyphenated form, so the second branch only matters for input that
// skipped normalization. It is kept so such callers keep working.
func ValidPostalCode(s string) bool {
	return hyphenatedPostcode.MatchString(s) || barePostcode.MatchString(s)
}
