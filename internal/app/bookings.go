package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/domain"
)

// localHistoryCap bounds the per-user records kept until the store returns them.
const localHistoryCap = 50

// BookingRecorder writes booking intents to the "bookings" store. Confirm is
// never retried: without an idempotency key a retry could book twice.
type BookingRecorder struct {
	store     domain.BookingStore
	publisher domain.BookingPublisher
	timeout   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	history map[string][]domain.BookingRecord // by user id
}

// NewBookingRecorder wires the store. publisher may be nil.
func NewBookingRecorder(s domain.BookingStore, pub domain.BookingPublisher, timeout time.Duration) *BookingRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BookingRecorder{
		store:     s,
		publisher: pub,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
		history:   make(map[string][]domain.BookingRecord),
	}
}

func (b *BookingRecorder) Confirm(ctx context.Context, userID string, p domain.Property) (domain.BookingRecord, error) {
	rec := domain.BookingRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Property:  p,
		CreatedAt: b.now(),
	}

	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	start := time.Now()
	err := b.store.AppendBooking(cctx, rec)
	cancel()
	observability.ObserveStore("append_booking", storeOutcome(err), time.Since(start))
	observability.ObserveBooking(err == nil)
	if err != nil {
		log.Error().Err(err).Str("property_id", p.ID).Str("user_id", userID).Msg("booking append failed")
		return domain.BookingRecord{}, fmt.Errorf("%w: %v", domain.ErrBookingNotRecorded, err)
	}

	b.mu.Lock()
	h := append(b.history[userID], rec)
	if len(h) > localHistoryCap {
		h = append([]domain.BookingRecord(nil), h[len(h)-localHistoryCap:]...)
	}
	b.history[userID] = h
	b.mu.Unlock()

	if b.publisher != nil {
		if err := b.publisher.PublishBookingConfirmed(context.WithoutCancel(ctx), rec); err != nil {
			log.Warn().Err(err).Str("booking_id", rec.ID).Msg("booking event not published")
		}
	}
	log.Info().Str("booking_id", rec.ID).Str("property_id", p.ID).Msg("booking recorded")
	return rec, nil
}

// History merges the user's remote bookings with the ones recorded by this
// process, newest first. A failed remote read falls back to the local view.
// Local records the store has returned are forgotten.
func (b *BookingRecorder) History(ctx context.Context, userID string) []domain.BookingRecord {
	b.mu.Lock()
	local := append([]domain.BookingRecord(nil), b.history[userID]...)
	b.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	remote, err := b.store.ListBookings(cctx, userID)
	cancel()
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("booking history read failed")
		remote = nil
	} else {
		b.forget(userID, remote)
	}

	seen := make(map[string]struct{}, len(remote)+len(local))
	out := make([]domain.BookingRecord, 0, len(remote)+len(local))
	for _, set := range [][]domain.BookingRecord{remote, local} {
		for _, r := range set {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (b *BookingRecorder) forget(userID string, stored []domain.BookingRecord) {
	ids := make(map[string]struct{}, len(stored))
	for _, r := range stored {
		ids[r.ID] = struct{}{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.history[userID][:0]
	for _, r := range b.history[userID] {
		if _, ok := ids[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(b.history, userID)
		return
	}
	b.history[userID] = kept
}
