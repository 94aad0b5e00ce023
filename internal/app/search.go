package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"elitestay/internal/domain"
)

type SearchService struct {
	repo   *PropertyRepository
	places *PlaceSuggestionService
}

func NewSearchService(repo *PropertyRepository, places *PlaceSuggestionService) *SearchService {
	return &SearchService{repo: repo, places: places}
}

// SearchByPlace resolves a selected suggestion and matches it against the
// property snapshot. Both reads run concurrently; a failed snapshot read
// yields no matches, a failed resolve is returned.
func (s *SearchService) SearchByPlace(ctx context.Context, placeID string) (domain.Place, map[domain.PropertyID]domain.Property, error) {
	var (
		place    domain.Place
		snapshot map[domain.PropertyID]domain.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		place, err = s.places.Resolve(gctx, placeID)
		return err
	})
	g.Go(func() error {
		all, err := s.repo.FetchAll(gctx)
		if err != nil {
			if gctx.Err() == nil {
				log.Warn().Err(err).Msg("property snapshot read failed")
			}
			all = map[domain.PropertyID]domain.Property{}
		}
		snapshot = all
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Place{}, nil, err
	}
	return place, Match(snapshot, place.Name), nil
}

// SearchByName matches a free-text place name against the snapshot.
func (s *SearchService) SearchByName(ctx context.Context, name string) map[domain.PropertyID]domain.Property {
	all, err := s.repo.FetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("property snapshot read failed")
		return map[domain.PropertyID]domain.Property{}
	}
	return Match(all, name)
}

// All returns the full snapshot, empty on failure.
func (s *SearchService) All(ctx context.Context) map[domain.PropertyID]domain.Property {
	all, err := s.repo.FetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("property snapshot read failed")
		return map[domain.PropertyID]domain.Property{}
	}
	return all
}
