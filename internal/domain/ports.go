package domain

import (
	"context"
	"time"
)

// PropertyStore reads the "properties" collection. GetProperty returns
// ErrNotFound when no document has the given id.
type PropertyStore interface {
	ListProperties(ctx context.Context) ([]Property, error)
	GetProperty(ctx context.Context, id PropertyID) (Property, error)
}

// PropertyWriter is used by admin tooling only; the client never writes properties.
type PropertyWriter interface {
	UpsertProperty(ctx context.Context, p Property) error
}

type BookingStore interface {
	AppendBooking(ctx context.Context, b BookingRecord) error
	ListBookings(ctx context.Context, userID string) ([]BookingRecord, error)
}

// UserStore returns (nil, nil) from the Find methods when the user does not exist.
type UserStore interface {
	CreateUser(ctx context.Context, u User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
}

type PlacesClient interface {
	Autocomplete(ctx context.Context, input string) ([]PlaceSuggestion, error)
	PlaceDetails(ctx context.Context, placeID string) (Place, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SessionStore keeps sessions alive for an idle window. Touch slides the
// window and returns nil when the session is gone.
type SessionStore interface {
	Save(ctx context.Context, s Session, idle time.Duration) error
	Touch(ctx context.Context, id string, idle time.Duration) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(u User, sessionID string) (string, error)
	Parse(token string) (Claims, error)
}

type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, b BookingRecord) error
}
