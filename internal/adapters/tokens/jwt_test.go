package tokens

import (
	"errors"
	"testing"
	"time"

	"elitestay/internal/domain"
)

func TestIssueParse(t *testing.T) {
	iss, err := NewIssuer("s3cret", time.Hour)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	tok, err := iss.Issue(domain.User{ID: "u1", Email: "g@example.com"}, "s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID != "u1" || c.Email != "g@example.com" || c.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestParse_Rejects(t *testing.T) {
	iss, _ := NewIssuer("s3cret", time.Hour)
	other, _ := NewIssuer("different", time.Hour)
	tok, _ := other.Issue(domain.User{ID: "u1"}, "s1")
	if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong key: want ErrInvalidToken, got %v", err)
	}
	if _, err := iss.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: want ErrInvalidToken, got %v", err)
	}

	tok, _ = iss.Issue(domain.User{ID: "u1"}, "s1")
	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Parse(tok); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expired: want ErrExpiredToken, got %v", err)
	}
}

func TestFromHeader(t *testing.T) {
	if tok, err := FromHeader("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("got %q %v", tok, err)
	}
	for _, h := range []string{"", "Bearer ", "Basic abc"} {
		if _, err := FromHeader(h); err == nil {
			t.Fatalf("%q: want error", h)
		}
	}
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("want error for empty secret")
	}
}
