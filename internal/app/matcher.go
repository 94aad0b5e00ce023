package app

import (
	"strings"

	"golang.org/x/text/cases"

	"elitestay/internal/domain"
)

// Match keeps the properties whose location contains placeName under Unicode
// case folding. A short location inside a longer place name does not match.
func Match(properties map[domain.PropertyID]domain.Property, placeName string) map[domain.PropertyID]domain.Property {
	out := make(map[domain.PropertyID]domain.Property)
	fold := cases.Fold() // a Caser is stateful, one per call
	needle := fold.String(strings.TrimSpace(placeName))
	if needle == "" {
		return out
	}
	for id, p := range properties {
		if strings.Contains(fold.String(p.Location), needle) {
			out[id] = p
		}
	}
	return out
}
