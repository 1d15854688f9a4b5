// README: Geo handlers for priced spots and parking locations.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parkwatch/internal/modules/spots"
	"parkwatch/internal/types"
)

type GeoHandler struct {
	spots *spots.Service
}

func NewGeoHandler(svc *spots.Service) *GeoHandler {
	return &GeoHandler{spots: svc}
}

type spotResp struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	TariffAmount int64   `json:"tariff_amount"`
	Currency     string  `json:"currency"`
	DistanceM    float64 `json:"distance_m"`
}

type locationResp struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (h *GeoHandler) Prices(c *gin.Context) {
	p, radiusM, ok := geoParams(c)
	if !ok {
		return
	}
	results, err := h.spots.NearbyPriced(c.Request.Context(), p, radiusM)
	if err != nil {
		writeSpotsError(c, err)
		return
	}
	resp := make([]spotResp, len(results))
	for i, s := range results {
		resp[i] = spotResp{
			ID:           string(s.ID),
			Name:         s.Name,
			Lat:          s.Position.Lat,
			Lng:          s.Position.Lng,
			TariffAmount: s.Tariff.Amount,
			Currency:     s.Tariff.Currency,
			DistanceM:    s.DistanceM,
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"spots": resp})
}

func (h *GeoHandler) Locations(c *gin.Context) {
	p, radiusM, ok := geoParams(c)
	if !ok {
		return
	}
	results, err := h.spots.NearbyLocations(c.Request.Context(), p, radiusM)
	if err != nil {
		writeSpotsError(c, err)
		return
	}
	resp := make([]locationResp, len(results))
	for i, l := range results {
		resp[i] = locationResp{
			ID:      string(l.ID),
			Name:    l.Name,
			Address: l.Address,
			Lat:     l.Position.Lat,
			Lng:     l.Position.Lng,
		}
	}
	writeJSON(c, http.StatusOK, gin.H{"locations": resp})
}

func geoParams(c *gin.Context) (types.Point, int, bool) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeError(c, http.StatusBadRequest, "invalid lat/lng")
		return types.Point{}, 0, false
	}
	radiusM, err := strconv.Atoi(c.DefaultQuery("radius_m", "1000"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid radius_m")
		return types.Point{}, 0, false
	}
	return types.Point{Lat: lat, Lng: lng}, radiusM, true
}
