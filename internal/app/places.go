package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"elitestay/internal/adapters/observability"
	"elitestay/internal/domain"
)

// MinQueryLength is the shortest query sent to the autocomplete provider.
const MinQueryLength = 3

type PlaceSuggestionService struct {
	client   domain.PlacesClient
	cache    domain.Cache
	cacheTTL int
}

// NewPlaceSuggestionService wires the provider. cache may be nil.
func NewPlaceSuggestionService(c domain.PlacesClient, cache domain.Cache, cacheTTLSec int) *PlaceSuggestionService {
	return &PlaceSuggestionService{client: c, cache: cache, cacheTTL: cacheTTLSec}
}

// Suggest never fails: short queries and provider errors both yield an empty slice.
func (s *PlaceSuggestionService) Suggest(ctx context.Context, query string) []domain.PlaceSuggestion {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []domain.PlaceSuggestion{}
	}
	out, err := s.client.Autocomplete(ctx, q)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("query", q).Msg("autocomplete failed")
		}
		return []domain.PlaceSuggestion{}
	}
	if out == nil {
		out = []domain.PlaceSuggestion{}
	}
	return out
}

// Resolve fetches the detail of a selected suggestion.
func (s *PlaceSuggestionService) Resolve(ctx context.Context, placeID string) (domain.Place, error) {
	if strings.TrimSpace(placeID) == "" {
		return domain.Place{}, domain.ErrPlaceNotResolved
	}
	key := "place:" + placeID
	if s.cache != nil {
		var p domain.Place
		if ok, _ := s.cache.Get(ctx, key, &p); ok {
			return p, nil
		}
	}

	p, err := s.client.PlaceDetails(ctx, placeID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Place{}, fmt.Errorf("%w: %s", domain.ErrPlaceNotResolved, placeID)
	}
	if err != nil {
		return domain.Place{}, unavailable(err)
	}
	if p.Name == "" && p.LatLng == nil {
		return domain.Place{}, fmt.Errorf("%w: %s", domain.ErrPlaceNotResolved, placeID)
	}
	p.ID = placeID

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, p, s.cacheTTL)
	}
	return p, nil
}

// SuggestionFeed applies only the latest query's results. Starting a query
// cancels the one in flight; a result that arrives after a newer query has
// started is dropped and reported as ErrSuperseded.
type SuggestionFeed struct {
	svc *PlaceSuggestionService

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	query   string
	results []domain.PlaceSuggestion
}

func NewSuggestionFeed(svc *PlaceSuggestionService) *SuggestionFeed {
	return &SuggestionFeed{svc: svc, results: []domain.PlaceSuggestion{}}
}

func (f *SuggestionFeed) Query(ctx context.Context, query string) ([]domain.PlaceSuggestion, error) {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.mu.Unlock()

	res := f.svc.Suggest(cctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		observability.ObserveDiscardedSuggestion()
		return nil, domain.ErrSuperseded
	}
	f.cancel = nil
	f.query = query
	f.results = res
	return res, nil
}

// Current returns the last applied query and its suggestions.
func (f *SuggestionFeed) Current() (string, []domain.PlaceSuggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PlaceSuggestion, len(f.results))
	copy(out, f.results)
	return f.query, out
}

// Clear drops the visible suggestions, as when a suggestion is selected.
func (f *SuggestionFeed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.query = ""
	f.results = []domain.PlaceSuggestion{}
}
