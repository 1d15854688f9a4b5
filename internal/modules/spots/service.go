// README: Spot service; answers the priced-spot and location queries.
package spots

import (
	"context"
	"errors"
	"log"

	"parkwatch/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// PlacesProvider supplements the stored locations with an external source
// (Google Places in production). Optional; nil means store-only results.
type PlacesProvider interface {
	NearbyParking(ctx context.Context, p types.Point, radiusM int) ([]Location, error)
}

type Service struct {
	store  *Store
	places PlacesProvider
}

func NewService(store *Store, places PlacesProvider) *Service {
	return &Service{store: store, places: places}
}

func (s *Service) NearbyPriced(ctx context.Context, p types.Point, radiusM int) ([]PricedSpot, error) {
	if err := validate(p, radiusM); err != nil {
		return nil, err
	}
	return s.store.NearbyPriced(ctx, p, radiusM)
}

// NearbyLocations merges stored locations with the places provider. Provider
// failures degrade to store-only results rather than failing the query.
func (s *Service) NearbyLocations(ctx context.Context, p types.Point, radiusM int) ([]Location, error) {
	if err := validate(p, radiusM); err != nil {
		return nil, err
	}
	locations, err := s.store.NearbyLocations(ctx, p, radiusM)
	if err != nil {
		return nil, err
	}
	if s.places == nil {
		return locations, nil
	}

	extra, err := s.places.NearbyParking(ctx, p, radiusM)
	if err != nil {
		log.Printf("places provider failed, serving stored locations only: %v", err)
		return locations, nil
	}
	seen := make(map[types.ID]bool, len(locations))
	for _, l := range locations {
		seen[l.ID] = true
	}
	for _, l := range extra {
		if !seen[l.ID] {
			locations = append(locations, l)
		}
	}
	return locations, nil
}

func validate(p types.Point, radiusM int) error {
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrBadRequest
	}
	if radiusM <= 0 {
		return ErrBadRequest
	}
	return nil
}
