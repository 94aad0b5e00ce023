package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"elitestay/internal/domain"
)

type DetailsState string

const (
	StateLoading          DetailsState = "loading"
	StateFound            DetailsState = "found"
	StateNotFound         DetailsState = "not_found"
	StateBookingConfirmed DetailsState = "booking_confirmed"
)

// DetailsView drives the property details screen:
// loading -> found | not_found; found <-> booking_confirmed; shortlist toggles in found.
type DetailsView struct {
	repo      *PropertyRepository
	shortlist *ShortlistStore
	bookings  *BookingRecorder
	userID    string

	mu       sync.Mutex
	state    DetailsState
	property *domain.Property
	booking  *domain.BookingRecord
}

func NewDetailsView(repo *PropertyRepository, sl *ShortlistStore, br *BookingRecorder, userID string) *DetailsView {
	return &DetailsView{repo: repo, shortlist: sl, bookings: br, userID: userID, state: StateLoading}
}

// DetailsSnapshot is what the client renders.
type DetailsSnapshot struct {
	State       DetailsState          `json:"state"`
	Property    *domain.Property      `json:"property,omitempty"`
	Shortlisted bool                  `json:"shortlisted"`
	Booking     *domain.BookingRecord `json:"booking,omitempty"`
	Message     string                `json:"message,omitempty"`
}

// Load resolves the view. Read failures are shown as not found.
func (v *DetailsView) Load(ctx context.Context, id domain.PropertyID) DetailsSnapshot {
	p, err := v.repo.FetchOne(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("property_id", id).Msg("property details read failed")
	}
	return v.Show(p)
}

// Show resolves the view from a property the caller already read; nil means not found.
func (v *DetailsView) Show(p *domain.Property) DetailsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.booking = nil
	if p == nil {
		v.state = StateNotFound
		v.property = nil
	} else {
		v.state = StateFound
		v.property = p
	}
	return v.snapshotLocked()
}

func (v *DetailsView) ToggleShortlist() (DetailsSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateFound {
		return v.snapshotLocked(), fmt.Errorf("%w: toggle shortlist in %s", domain.ErrInvalidTransition, v.state)
	}
	v.shortlist.Toggle(*v.property)
	return v.snapshotLocked(), nil
}

// Book confirms a booking. On failure the view stays in found.
func (v *DetailsView) Book(ctx context.Context) (DetailsSnapshot, error) {
	v.mu.Lock()
	if v.state != StateFound {
		defer v.mu.Unlock()
		return v.snapshotLocked(), fmt.Errorf("%w: book in %s", domain.ErrInvalidTransition, v.state)
	}
	p := *v.property
	v.mu.Unlock()

	rec, err := v.bookings.Confirm(ctx, v.userID, p)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		return v.snapshotLocked(), err
	}
	v.state = StateBookingConfirmed
	v.booking = &rec
	return v.snapshotLocked(), nil
}

func (v *DetailsView) Dismiss() (DetailsSnapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateBookingConfirmed {
		return v.snapshotLocked(), fmt.Errorf("%w: dismiss in %s", domain.ErrInvalidTransition, v.state)
	}
	v.state = StateFound
	v.booking = nil
	return v.snapshotLocked(), nil
}

func (v *DetailsView) State() DetailsState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *DetailsView) snapshotLocked() DetailsSnapshot {
	s := DetailsSnapshot{State: v.state}
	if v.property != nil {
		p := *v.property
		s.Property = &p
		s.Shortlisted = v.shortlist.Contains(p)
	}
	if v.booking != nil {
		b := *v.booking
		s.Booking = &b
		s.Message = domain.BookingConfirmedMessage
	}
	return s
}
