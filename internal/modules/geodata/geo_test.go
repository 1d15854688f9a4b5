// README: Geo helper tests.
package geodata

import (
	"math"
	"testing"
)

func TestHaversineM_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantM     float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 41.0082, lng1: 28.9784,
			lat2: 41.0082, lng2: 28.9784,
			wantM:     0,
			tolerance: 0.1,
		},
		{
			name: "one milli-degree of latitude (~111m)",
			lat1: 41.000, lng1: 28.000,
			lat2: 41.001, lng2: 28.000,
			wantM:     111,
			tolerance: 2,
		},
		{
			name: "Sultanahmet to Taksim (~3km)",
			lat1: 41.0054, lng1: 28.9768,
			lat2: 41.0370, lng2: 28.9850,
			wantM:     3600,
			tolerance: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineM(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantM) > tt.tolerance {
				t.Errorf("haversineM() = %f, want %f (±%f)", got, tt.wantM, tt.tolerance)
			}
		})
	}
}

func TestQuantizeGrid(t *testing.T) {
	if quantize(41.00824) != 41.008 {
		t.Errorf("quantize(41.00824) = %f", quantize(41.00824))
	}
	if quantize(41.00861) != 41.009 {
		t.Errorf("quantize(41.00861) = %f", quantize(41.00861))
	}
	// Two candidates inside the same ~100m cell share a key.
	a := KeyFor(pt(41.00824, 28.97840), KindPrices)
	b := KeyFor(pt(41.00819, 28.97844), KindPrices)
	if a != b {
		t.Errorf("keys differ inside one cell: %v vs %v", a, b)
	}
	// Kind is part of the key.
	c := KeyFor(pt(41.00824, 28.97840), KindLocations)
	if a == c {
		t.Error("prices and locations must not share cache entries")
	}
}
