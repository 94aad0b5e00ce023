package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"elitestay/internal/domain"
)

// Sessions keeps one JSON record per session under "session:{id}". The key
// TTL is the idle window and every Touch renews it.
type Sessions struct{ c *redis.Client }

func NewSessions(c *redis.Client) *Sessions { return &Sessions{c: c} }

func sessionKey(id string) string { return "session:" + id }

func (s *Sessions) Save(ctx context.Context, sess domain.Session, idle time.Duration) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	return s.c.Set(ctx, sessionKey(sess.ID), b, idle).Err()
}

func (s *Sessions) Touch(ctx context.Context, id string, idle time.Duration) (*domain.Session, error) {
	b, err := s.c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	sess.LastSeen = time.Now().UTC()
	nb, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("session encode: %w", err)
	}
	// XX: never resurrect a session that expired between GET and SET.
	ok, err := s.c.SetXX(ctx, sessionKey(id), nb, idle).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.c.Del(ctx, sessionKey(id)).Err()
}
