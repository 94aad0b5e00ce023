package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"elitestay/internal/app"
	"elitestay/internal/domain"
)

func TestConfirm_RecordsAndPublishes(t *testing.T) {
	st := &fakeStore{}
	pub := &fakePublisher{}
	br := app.NewBookingRecorder(st, pub, time.Second)
	p := mumbaiAndPune()[0]

	rec, err := br.Confirm(context.Background(), "u1", p)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rec.ID == "" || rec.UserID != "u1" || rec.Property != p || rec.CreatedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(st.bookings) != 1 || len(pub.got) != 1 || pub.got[0].ID != rec.ID {
		t.Fatalf("store %d publish %d", len(st.bookings), len(pub.got))
	}
}

func TestConfirm_FailureIsNotRetried(t *testing.T) {
	st := &fakeStore{appendErr: errBoom}
	pub := &fakePublisher{}
	br := app.NewBookingRecorder(st, pub, time.Second)

	_, err := br.Confirm(context.Background(), "u1", mumbaiAndPune()[0])
	if !errors.Is(err, domain.ErrBookingNotRecorded) {
		t.Fatalf("want ErrBookingNotRecorded, got %v", err)
	}
	if st.appends != 1 {
		t.Fatalf("want a single append attempt, got %d", st.appends)
	}
	if len(pub.got) != 0 {
		t.Fatal("failed booking was published")
	}
	if h := br.History(context.Background(), "u1"); len(h) != 0 {
		t.Fatalf("failed booking in history: %+v", h)
	}
}

func TestConfirm_PublishFailureKeepsBooking(t *testing.T) {
	br := app.NewBookingRecorder(&fakeStore{}, &fakePublisher{err: errBoom}, time.Second)
	if _, err := br.Confirm(context.Background(), "u1", mumbaiAndPune()[0]); err != nil {
		t.Fatalf("publish failure surfaced: %v", err)
	}
}

func TestHistory_MergesAndFallsBack(t *testing.T) {
	st := &fakeStore{}
	br := app.NewBookingRecorder(st, nil, time.Second)
	ctx := context.Background()
	older := domain.BookingRecord{ID: "old", UserID: "u1", CreatedAt: time.Now().Add(-time.Hour)}
	st.bookings = append(st.bookings, older, domain.BookingRecord{ID: "other", UserID: "u2"})

	rec, err := br.Confirm(ctx, "u1", mumbaiAndPune()[1])
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	st.mu.Lock()
	st.bookErr = errBoom
	st.mu.Unlock()
	h := br.History(ctx, "u1")
	if len(h) != 1 || h[0].ID != rec.ID {
		t.Fatalf("want local fallback, got %+v", h)
	}

	st.mu.Lock()
	st.bookErr = nil
	st.mu.Unlock()
	h = br.History(ctx, "u1")
	if len(h) != 2 || h[0].ID != rec.ID || h[1].ID != "old" {
		t.Fatalf("want [new old], got %+v", h)
	}

	// The store has returned the record, so the local copy is gone.
	st.mu.Lock()
	st.bookErr = errBoom
	st.mu.Unlock()
	if h = br.History(ctx, "u1"); len(h) != 0 {
		t.Fatalf("want local history forgotten, got %+v", h)
	}
}

func TestHistory_LocalCopiesAreCapped(t *testing.T) {
	st := &fakeStore{bookErr: errBoom}
	br := app.NewBookingRecorder(st, nil, time.Second)
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		if _, err := br.Confirm(ctx, "u1", mumbaiAndPune()[1]); err != nil {
			t.Fatalf("confirm %d: %v", i, err)
		}
	}
	if h := br.History(ctx, "u1"); len(h) != 50 {
		t.Fatalf("want 50 local records, got %d", len(h))
	}
}
