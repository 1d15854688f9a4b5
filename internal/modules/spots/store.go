// README: Spot store backed by Redis GEO sets and per-spot metadata hashes.
package spots

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"parkwatch/internal/types"
)

const (
	pricedGeoKey    = "spots:geo:prices"
	locationsGeoKey = "spots:geo:locations"
	metaKeyPrefix   = "spots:meta:%s"
)

type Store struct {
	redis *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{redis: client}
}

// SeedSpot is one entry loaded into the GEO sets. Tariff fields are only
// meaningful for priced spots.
type SeedSpot struct {
	ID       types.ID
	Name     string
	Address  string
	Position types.Point
	Priced   bool
	Tariff   types.Money
}

// Seed loads spots into the store, overwriting previous metadata.
func (s *Store) Seed(ctx context.Context, seeds []SeedSpot) error {
	pipe := s.redis.Pipeline()
	for _, sp := range seeds {
		key := locationsGeoKey
		if sp.Priced {
			key = pricedGeoKey
		}
		pipe.GeoAdd(ctx, key, &redis.GeoLocation{
			Name:      string(sp.ID),
			Longitude: sp.Position.Lng,
			Latitude:  sp.Position.Lat,
		})
		fields := map[string]any{
			"name":    sp.Name,
			"address": sp.Address,
		}
		if sp.Priced {
			fields["tariff_amount"] = sp.Tariff.Amount
			fields["currency"] = sp.Tariff.Currency
		}
		pipe.HSet(ctx, metaKey(sp.ID), fields)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) NearbyPriced(ctx context.Context, p types.Point, radiusM int) ([]PricedSpot, error) {
	results, err := s.geoSearch(ctx, pricedGeoKey, p, radiusM)
	if err != nil {
		return nil, err
	}
	spots := make([]PricedSpot, 0, len(results))
	for _, r := range results {
		meta, err := s.redis.HGetAll(ctx, metaKey(types.ID(r.Name))).Result()
		if err != nil {
			return nil, err
		}
		amount, _ := strconv.ParseInt(meta["tariff_amount"], 10, 64)
		spots = append(spots, PricedSpot{
			ID:        types.ID(r.Name),
			Name:      meta["name"],
			Position:  types.Point{Lat: r.Latitude, Lng: r.Longitude},
			Tariff:    types.Money{Amount: amount, Currency: meta["currency"]},
			DistanceM: r.Dist,
		})
	}
	return spots, nil
}

func (s *Store) NearbyLocations(ctx context.Context, p types.Point, radiusM int) ([]Location, error) {
	results, err := s.geoSearch(ctx, locationsGeoKey, p, radiusM)
	if err != nil {
		return nil, err
	}
	locations := make([]Location, 0, len(results))
	for _, r := range results {
		meta, err := s.redis.HGetAll(ctx, metaKey(types.ID(r.Name))).Result()
		if err != nil {
			return nil, err
		}
		locations = append(locations, Location{
			ID:       types.ID(r.Name),
			Name:     meta["name"],
			Address:  meta["address"],
			Position: types.Point{Lat: r.Latitude, Lng: r.Longitude},
		})
	}
	return locations, nil
}

func (s *Store) geoSearch(ctx context.Context, key string, p types.Point, radiusM int) ([]redis.GeoLocation, error) {
	return s.redis.GeoSearchLocation(ctx, key, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     float64(radiusM),
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
}

func metaKey(id types.ID) string {
	return fmt.Sprintf(metaKeyPrefix, string(id))
}
