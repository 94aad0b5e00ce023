package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "elitestay/internal/adapters/redis"
	"elitestay/internal/domain"
)

func setup(t *testing.T) (*miniredis.Miniredis, context.Context) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, context.Background()
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	mr, ctx := setup(t)
	c, err := redisad.Connect(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	cache := redisad.NewCache(c)

	var p domain.Place
	if ok, err := cache.Get(ctx, "place:p1", &p); ok || err != nil {
		t.Fatalf("want miss, got %v %v", ok, err)
	}
	in := domain.Place{ID: "p1", Name: "Mumbai", Coordinates: "lat/lng: (19.076,72.8777)"}
	if err := cache.Set(ctx, "place:p1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := cache.Get(ctx, "place:p1", &p); !ok || err != nil || p.Name != "Mumbai" {
		t.Fatalf("want hit, got %v %v %+v", ok, err, p)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := cache.Get(ctx, "place:p1", &p); ok {
		t.Fatal("entry outlived its ttl")
	}
}

func TestSessions_SlidingIdle(t *testing.T) {
	mr, ctx := setup(t)
	c, err := redisad.Connect(ctx, mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	store := redisad.NewSessions(c)
	idle := 2 * time.Minute

	if err := store.Save(ctx, domain.Session{ID: "s1", UserID: "u1", Email: "g@example.com"}, idle); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(90 * time.Second)
	s, err := store.Touch(ctx, "s1", idle)
	if err != nil || s == nil || s.UserID != "u1" {
		t.Fatalf("touch: %+v %v", s, err)
	}

	mr.FastForward(90 * time.Second)
	if s, _ := store.Touch(ctx, "s1", idle); s == nil {
		t.Fatal("touch did not extend the idle window")
	}

	mr.FastForward(idle + time.Second)
	if s, err := store.Touch(ctx, "s1", idle); s != nil || err != nil {
		t.Fatalf("want expired session, got %+v %v", s, err)
	}

	_ = store.Save(ctx, domain.Session{ID: "s2", UserID: "u1"}, idle)
	if err := store.Delete(ctx, "s2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s, _ := store.Touch(ctx, "s2", idle); s != nil {
		t.Fatal("deleted session still live")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := redisad.Connect(ctx, "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("want error for unreachable redis")
	}
}
