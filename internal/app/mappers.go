package app

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"

	"elitestay/internal/domain"
)

// Seed fixtures come from hand-edited JSON exports and listing scrapes, so the
// same field shows up under several names. One alias list per Property field.
var propertyAliases = map[string][]string{
	"id":       {"id", "_id", "propertyId", "property_id", "listing_id"},
	"name":     {"name", "title", "propertyName", "property_name", "hotel_name"},
	"location": {"location", "address", "city", "address.city", "location.address", "formatted_address"},
	"price":    {"price", "rate", "price.display", "pricePerNight", "price_per_night"},
	"image":    {"imageUrl", "image_url", "image", "thumbnail", "photo"},
}

// lookupAny walks dot paths through nested maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupText renders strings and numbers at path as text; anything else is "".
func lookupText(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range propertyAliases[key] {
		if s := lookupText(m, p); s != "" {
			return s
		}
	}
	return ""
}

// firstSliceString returns the first usable entry of a list of strings or {url|src} objects.
func firstSliceString(m map[string]any, paths ...string) string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					return t
				}
			case map[string]any:
				for _, f := range []string{"url", "src"} {
					if u, ok := t[f].(string); ok && u != "" {
						return u
					}
				}
			}
		}
	}
	return ""
}

// MapPropertyFixture turns one raw fixture object into a Property. Records
// without a name and location are rejected. A missing id is derived from
// name and location so reseeding the same file is idempotent.
func MapPropertyFixture(raw map[string]any) (domain.Property, bool) {
	p := domain.Property{
		ID:       firstNonEmptyAlias(raw, "id"),
		Name:     firstNonEmptyAlias(raw, "name"),
		Location: firstNonEmptyAlias(raw, "location"),
		Price:    firstNonEmptyAlias(raw, "price"),
		ImageURL: firstNonEmptyAlias(raw, "image"),
	}
	if p.Name == "" && p.Location == "" {
		return domain.Property{}, false
	}
	if p.ImageURL == "" {
		p.ImageURL = firstSliceString(raw, "images", "photos")
	}
	if p.ID == "" {
		sum := sha1.Sum([]byte(strings.ToLower(p.Name) + "|" + strings.ToLower(p.Location)))
		p.ID = hex.EncodeToString(sum[:])[:20]
	}
	return p, true
}
