package domain

import "fmt"

type PlaceSuggestion struct {
	PlaceID  string `json:"placeId"`
	FullText string `json:"fullText"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is the resolved detail of a selected suggestion.
type Place struct {
	ID          string       `json:"placeId"`
	Name        string       `json:"name"`
	Coordinates string       `json:"coordinates"`
	LatLng      *Coordinates `json:"latLng,omitempty"`
}

// FormatLatLng renders coordinates the way the places SDK prints a LatLng.
func FormatLatLng(c *Coordinates) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("lat/lng: (%g,%g)", c.Latitude, c.Longitude)
}
