package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/domain"
	"elitestay/internal/shared"
)

const readAttempts = 3

// PropertyRepository exposes the remote "properties" collection as a
// best-effort snapshot keyed by id. Nothing is cached between calls.
type PropertyRepository struct {
	store   domain.PropertyStore
	timeout time.Duration
}

func NewPropertyRepository(s domain.PropertyStore, timeout time.Duration) *PropertyRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PropertyRepository{store: s, timeout: timeout}
}

// FetchAll reads the whole collection. Store failures come back as ErrRemoteUnavailable.
func (r *PropertyRepository) FetchAll(ctx context.Context) (map[domain.PropertyID]domain.Property, error) {
	var list []domain.Property
	err := r.retry(ctx, "fetch_all", func(ctx context.Context) error {
		var err error
		list, err = r.store.ListProperties(ctx)
		return err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	out := make(map[domain.PropertyID]domain.Property, len(list))
	for _, p := range list {
		if p.ID == "" {
			continue
		}
		out[p.ID] = p
	}
	return out, nil
}

// FetchOne returns nil without error when no record has the id.
func (r *PropertyRepository) FetchOne(ctx context.Context, id domain.PropertyID) (*domain.Property, error) {
	if id == "" {
		return nil, nil
	}
	var p domain.Property
	err := r.retry(ctx, "fetch_one", func(ctx context.Context) error {
		var err error
		p, err = r.store.GetProperty(ctx, id)
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &p, nil
}

// retry runs op under the store timeout, retrying transient failures with backoff.
// Not-found and caller cancellation are final.
func (r *PropertyRepository) retry(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for i := 0; i < readAttempts; i++ {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		err = fn(cctx)
		cancel()
		observability.ObserveStore(op, storeOutcome(err), time.Since(start))
		if err == nil || errors.Is(err, domain.ErrNotFound) || ctx.Err() != nil {
			return err
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", i+1).Msg("property store read failed")
		if i < readAttempts-1 && !shared.SleepCtx(ctx, shared.Backoff(i)) {
			return err
		}
	}
	return err
}

func storeOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}
