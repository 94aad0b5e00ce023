package app

import (
	"fmt"
	"sync"

	"elitestay/internal/domain"
)

const (
	noEmailText       = "No email available"
	noLocationText    = "Location not available"
	noPermissionText  = "Location permission not granted"
	locationFormatStr = "Lat: %.5f, Lon: %.5f"
)

type Profile struct {
	Email    string `json:"email"`
	Location string `json:"location"`
}

type locationEntry struct {
	coords  *domain.Coordinates
	granted bool
}

// ProfileService keeps the last location each user's device reported.
type ProfileService struct {
	mu   sync.Mutex
	book map[string]locationEntry
}

func NewProfileService() *ProfileService {
	return &ProfileService{book: make(map[string]locationEntry)}
}

// ReportLocation records a device report. Without permission any stored
// coordinates are forgotten.
func (s *ProfileService) ReportLocation(userID string, c *domain.Coordinates, permissionGranted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := locationEntry{granted: permissionGranted}
	if permissionGranted && c != nil {
		cc := *c
		e.coords = &cc
	}
	s.book[userID] = e
}

func (s *ProfileService) Profile(userID, email string) Profile {
	out := Profile{Email: email, Location: noLocationText}
	if out.Email == "" {
		out.Email = noEmailText
	}

	s.mu.Lock()
	e, ok := s.book[userID]
	s.mu.Unlock()
	switch {
	case !ok:
	case !e.granted:
		out.Location = noPermissionText
	case e.coords != nil:
		out.Location = fmt.Sprintf(locationFormatStr, e.coords.Latitude, e.coords.Longitude)
	}
	return out
}

func (s *ProfileService) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.book, userID)
}
