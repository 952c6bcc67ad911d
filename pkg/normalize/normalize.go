// Package normalize rewrites the thousands and decimal separators of
// currency amounts, so exports using "1,000.00" and "1.000,00" end up in one
// convention.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func isSeparator(b byte) bool {
	return b == '.' || b == ','
}

// Number rewrites the separators of number. A separator exactly three bytes
// before the end is taken as the decimal separator; then every third byte
// further left that is a separator becomes thousandsSep. Nothing is
// validated, so non-numeric input is rewritten just as blindly.
func Number(number string, thousandsSep, decimalSep byte) string {
	b := []byte(number)
	i := len(b) - 3
	if i >= 0 && isSeparator(b[i]) {
		b[i] = decimalSep
		i -= 4
	} else {
		i = len(b) - 4
	}
	for ; i >= 0; i -= 4 {
		if isSeparator(b[i]) {
			b[i] = thousandsSep
		}
	}
	return string(b)
}

// Normalizer applies Number to fields that start with one of its markers.
type Normalizer struct {
	Markers   []string
	Thousands byte
	Decimal   byte
}

// New builds a normalizer from a marker string such as "€$", where every
// character is a marker, and single-byte separators.
func New(markers string, thousands, decimal string) (*Normalizer, error) {
	t, err := separator(thousands)
	if err != nil {
		return nil, fmt.Errorf("thousands separator: %w", err)
	}
	d, err := separator(decimal)
	if err != nil {
		return nil, fmt.Errorf("decimal separator: %w", err)
	}
	n := &Normalizer{Thousands: t, Decimal: d}
	for _, r := range markers {
		n.Markers = append(n.Markers, string(r))
	}
	return n, nil
}

func separator(s string) (byte, error) {
	if len(s) != 1 || s[0] >= utf8.RuneSelf {
		return 0, fmt.Errorf("%q must be a single ASCII character", s)
	}
	return s[0], nil
}

// Enabled reports whether any marker is configured.
func (n *Normalizer) Enabled() bool {
	return n != nil && len(n.Markers) > 0
}

// Field normalizes s if it starts with a marker and returns it unchanged
// otherwise.
func (n *Normalizer) Field(s string) string {
	if !n.Enabled() {
		return s
	}
	for _, m := range n.Markers {
		if strings.HasPrefix(s, m) {
			return Number(s, n.Thousands, n.Decimal)
		}
	}
	return s
}

// Row normalizes fields in place.
func (n *Normalizer) Row(fields []string) {
	for i, f := range fields {
		fields[i] = n.Field(f)
	}
}
