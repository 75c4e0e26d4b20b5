// Package normalize canonicalizes identifiers before they are stored or
// compared: emails, national IDs (RUT) and vehicle plates.
package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization trims surrounding whitespace
// and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// RUT strips thousands separators and whitespace from a Chilean national
// ID and upper-cases the check digit, so "12.345.678-k" becomes
// "12345678-K". A missing hyphen before the check digit is restored.
func RUT(r string) string {
	r = strings.ToUpper(strings.TrimSpace(r))
	r = strings.NewReplacer(".", "", " ", "").Replace(r)
	if r == "" || strings.Contains(r, "-") || len(r) < 2 {
		return r
	}
	return r[:len(r)-1] + "-" + r[len(r)-1:]
}

// Plate upper-cases a license plate and drops spaces, dots and hyphens.
func Plate(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	return strings.NewReplacer(" ", "", "-", "", ".", "", "·", "").Replace(p)
}
