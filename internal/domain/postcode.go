package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Raised when a postcode cannot be reduced to a UK outward district.
var ErrMalformedPostcode = errors.New("malformed postcode")

// Outward part of a UK postcode: one or two area letters, a digit,
// and an optional trailing digit or letter (e.g. "B1", "NW10", "SW1A").
var outwardPattern = regexp.MustCompile(`^([A-Z]{1,2})[0-9][A-Z0-9]?`)

// Central London district prefixes that attract a congestion surcharge.
var londonPrefixes = []string{"EC", "WC", "E1", "N1", "NW1", "SE1", "SW1", "W1"}

// NormalizePostcode uppercases and collapses internal whitespace so the same
// postcode always produces the same cache and grouping key.
func NormalizePostcode(raw string) string {
	return strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
}

// OutwardDistrict extracts the postcode district (e.g. "SW1A" from
// "sw1a 1aa"). Returns ErrMalformedPostcode when no district can be parsed.
func OutwardDistrict(raw string) (string, error) {
	norm := NormalizePostcode(raw)
	if norm == "" {
		return "", fmt.Errorf("outward district: empty postcode: %w", ErrMalformedPostcode)
	}

	// The outward code is everything before the first space when the
	// postcode is written in full.
	outward := norm
	if i := strings.IndexByte(norm, ' '); i > 0 {
		outward = norm[:i]
	}

	m := outwardPattern.FindString(outward)
	if m == "" || m != outward {
		return "", fmt.Errorf("outward district: %q: %w", raw, ErrMalformedPostcode)
	}

	return m, nil
}

// PostcodeArea returns the leading letters of a district ("SW1A" -> "SW").
func PostcodeArea(district string) string {
	for i := 0; i < len(district); i++ {
		if district[i] >= '0' && district[i] <= '9' {
			return district[:i]
		}
	}
	return district
}

// IsLondonDistrict reports whether a district falls inside the central
// London zone used for the van surcharge.
func IsLondonDistrict(district string) bool {
	d := NormalizePostcode(district)
	for _, p := range londonPrefixes {
		if strings.HasPrefix(d, p) {
			return true
		}
	}
	return false
}
