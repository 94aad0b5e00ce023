package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"elitestay/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu       sync.Mutex
	props    []domain.Property
	listErr  error
	getErr   error
	listHits int

	bookings  []domain.BookingRecord
	appendErr error
	bookErr   error
	appends   int
}

func (f *fakeStore) ListProperties(ctx context.Context) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHits++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Property(nil), f.props...), nil
}

func (f *fakeStore) GetProperty(ctx context.Context, id domain.PropertyID) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Property{}, f.getErr
	}
	for _, p := range f.props {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

func (f *fakeStore) AppendBooking(ctx context.Context, b domain.BookingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeStore) ListBookings(ctx context.Context, userID string) ([]domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	var out []domain.BookingRecord
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakePlaces struct {
	mu          sync.Mutex
	calls       int
	suggestions []domain.PlaceSuggestion
	place       domain.Place
	err         error
	block       chan struct{}
}

func (f *fakePlaces) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

func (f *fakePlaces) PlaceDetails(ctx context.Context, placeID string) (domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.Place{}, f.err
	}
	return f.place, nil
}

func (f *fakePlaces) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Place); ok {
		*d = v.(domain.Place)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type fakePublisher struct {
	got []domain.BookingRecord
	err error
}

func (p *fakePublisher) PublishBookingConfirmed(ctx context.Context, b domain.BookingRecord) error {
	p.got = append(p.got, b)
	return p.err
}

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]domain.User{}} }

func (f *fakeUsers) CreateUser(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == email {
			u := x
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

type fakeSessions struct {
	mu sync.Mutex
	m  map[string]domain.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{m: map[string]domain.Session{}} }

func (f *fakeSessions) Save(ctx context.Context, s domain.Session, idle time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[s.ID] = s
	return nil
}

func (f *fakeSessions) Touch(ctx context.Context, id string, idle time.Duration) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, id)
	return nil
}

// fakeTokens encodes claims as "userID|email|sessionID".
type fakeTokens struct{}

func (fakeTokens) Issue(u domain.User, sessionID string) (string, error) {
	return u.ID + "|" + u.Email + "|" + sessionID, nil
}

func (fakeTokens) Parse(tok string) (domain.Claims, error) {
	parts := strings.Split(tok, "|")
	if len(parts) != 3 {
		return domain.Claims{}, errors.New("bad token")
	}
	return domain.Claims{UserID: parts[0], Email: parts[1], SessionID: parts[2]}, nil
}

var errBoom = errors.New("boom")

func mumbaiAndPune() []domain.Property {
	return []domain.Property{
		{ID: "a", Name: "Sea View", Location: "Mumbai, Maharashtra", Price: "4500"},
		{ID: "b", Name: "Hill Stay", Location: "Pune", Price: "3000"},
	}
}
