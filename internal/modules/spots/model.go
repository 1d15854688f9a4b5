// README: Priced spots and parking locations served by the geo queries.
package spots

import "parkwatch/internal/types"

// PricedSpot is a parking spot with tariff data, ordered by distance from
// the query center.
type PricedSpot struct {
	ID        types.ID
	Name      string
	Position  types.Point
	Tariff    types.Money
	DistanceM float64
}

// Location is a generic parking location without pricing.
type Location struct {
	ID       types.ID
	Name     string
	Address  string
	Position types.Point
}
