package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"elitestay/internal/domain"
)

type SeedReport struct {
	Written    int
	Skipped    int
	Failed     int
	Duplicates int
}

// SeedService loads raw property fixtures into the store with at most
// `workers` concurrent writes.
type SeedService struct {
	w       domain.PropertyWriter
	workers int64
}

func NewSeedService(w domain.PropertyWriter, workers int) *SeedService {
	if workers <= 0 {
		workers = 1
	}
	return &SeedService{w: w, workers: int64(workers)}
}

func (s *SeedService) Seed(ctx context.Context, raws []map[string]any) (SeedReport, error) {
	var (
		rep  SeedReport
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[domain.PropertyID]struct{}, len(raws))
	)
	sem := semaphore.NewWeighted(s.workers)

	for i, raw := range raws {
		p, ok := MapPropertyFixture(raw)
		if !ok {
			log.Warn().Int("index", i).Msg("fixture skipped: no name or location")
			rep.Skipped++
			continue
		}
		if _, dup := seen[p.ID]; dup {
			rep.Duplicates++
			continue
		}
		seen[p.ID] = struct{}{}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(p domain.Property) {
			defer wg.Done()
			defer sem.Release(1)

			err := s.w.UpsertProperty(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Str("id", p.ID).Err(err).Msg("seed failed")
				rep.Failed++
				return
			}
			rep.Written++
		}(p)
	}

	wg.Wait()
	return rep, nil
}
