package app_test

import (
	"testing"

	"elitestay/internal/app"
	"elitestay/internal/domain"
)

func snapshot() map[domain.PropertyID]domain.Property {
	out := map[domain.PropertyID]domain.Property{}
	for _, p := range mumbaiAndPune() {
		out[p.ID] = p
	}
	return out
}

func TestMatch(t *testing.T) {
	cases := []struct {
		place string
		want  []string
	}{
		{"Mumbai", []string{"a"}},
		{"mumbai", []string{"a"}},
		{"  PUNE ", []string{"b"}},
		{"Maharashtra", []string{"a"}},
		{"Delhi", nil},
		{"", nil},
		{"   ", nil},
	}
	for _, tc := range cases {
		got := app.Match(snapshot(), tc.place)
		if len(got) != len(tc.want) {
			t.Fatalf("%q: want %v, got %v", tc.place, tc.want, got)
		}
		for _, id := range tc.want {
			if _, ok := got[id]; !ok {
				t.Fatalf("%q: missing %s in %v", tc.place, id, got)
			}
		}
	}
}

func TestMatch_LocationContainsPlaceOnly(t *testing.T) {
	// "Mumbai, Maharashtra" is not contained in the location "Mumbai".
	props := map[domain.PropertyID]domain.Property{"x": {ID: "x", Location: "Mumbai"}}
	if got := app.Match(props, "Mumbai, Maharashtra"); len(got) != 0 {
		t.Fatalf("want no match, got %v", got)
	}
}

func TestMatch_FoldsCase(t *testing.T) {
	props := map[domain.PropertyID]domain.Property{
		"de": {ID: "de", Location: "Hauptstrasse 5, BERLIN"},
		"tr": {ID: "tr", Location: "Old Town, İSTANBUL"},
	}
	if got := app.Match(props, "Straße"); len(got) != 1 || got["de"].ID != "de" {
		t.Fatalf("want ß to fold to ss, got %v", got)
	}
	if got := app.Match(props, "İstanbul"); len(got) != 1 || got["tr"].ID != "tr" {
		t.Fatalf("want dotted capital I folded on both sides, got %v", got)
	}
}
