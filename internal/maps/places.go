// README: Google Places provider for parking locations.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"parkwatch/internal/modules/spots"
	"parkwatch/internal/types"
)

// PlacesService supplements the spot store with parking locations from the
// Google Places API.
type PlacesService struct {
	client *maps.Client
}

func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// NearbyParking searches for parking around the given point.
func (s *PlacesService) NearbyParking(ctx context.Context, p types.Point, radiusM int) ([]spots.Location, error) {
	r := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
		Radius:   uint(radiusM),
		Type:     maps.PlaceTypeParking,
	}
	resp, err := s.client.NearbySearch(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	locations := make([]spots.Location, 0, len(resp.Results))
	for _, result := range resp.Results {
		locations = append(locations, spots.Location{
			ID:      types.ID("gplaces:" + result.PlaceID),
			Name:    result.Name,
			Address: result.Vicinity,
			Position: types.Point{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
		})
	}
	return locations, nil
}
