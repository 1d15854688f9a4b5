// README: HTTP implementation of the remote parking API client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"parkwatch/internal/types"
)

// HTTPClient talks to the parkwatch API over JSON. No explicit timeout is
// set; callers bound requests through ctx.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, token: token, http: &http.Client{}}
}

type sessionDTO struct {
	ID                string     `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	AdjustedStartedAt *time.Time `json:"adjusted_started_at,omitempty"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Note              string     `json:"note,omitempty"`
	HasPhoto          bool       `json:"has_photo,omitempty"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
}

func (d sessionDTO) record() SessionRecord {
	return SessionRecord{
		ID:                types.ID(d.ID),
		StartedAt:         d.StartedAt,
		AdjustedStartedAt: d.AdjustedStartedAt,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		Note:              d.Note,
		HasPhoto:          d.HasPhoto,
		EndedAt:           d.EndedAt,
	}
}

type spotDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	TariffAmount int64   `json:"tariff_amount"`
	Currency     string  `json:"currency"`
	DistanceM    float64 `json:"distance_m"`
}

type locationDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (c *HTTPClient) CreateSession(ctx context.Context, in CreateSessionInput) (SessionRecord, error) {
	body := map[string]any{
		"latitude":  in.Latitude,
		"longitude": in.Longitude,
	}
	if in.Note != "" {
		body["note"] = in.Note
	}
	if in.AdjustedStartedAt != nil {
		body["adjusted_started_at"] = in.AdjustedStartedAt.Format(time.RFC3339)
	}
	if in.HasPhoto {
		body["has_photo"] = true
	}
	var out sessionDTO
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &out); err != nil {
		return SessionRecord{}, err
	}
	return out.record(), nil
}

func (c *HTTPClient) EndSession(ctx context.Context, id types.ID, endedAt time.Time) (SessionRecord, error) {
	body := map[string]any{"ended_at": endedAt.Format(time.RFC3339)}
	var out sessionDTO
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(string(id))+"/end", body, &out); err != nil {
		return SessionRecord{}, err
	}
	return out.record(), nil
}

func (c *HTTPClient) ListHistory(ctx context.Context, limit, offset int) ([]SessionRecord, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	var out struct {
		Sessions []sessionDTO `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/sessions?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	records := make([]SessionRecord, len(out.Sessions))
	for i, d := range out.Sessions {
		records[i] = d.record()
	}
	return records, nil
}

func (c *HTTPClient) QueryPricedSpots(ctx context.Context, p types.Point, radiusM int) ([]PricedSpot, error) {
	var out struct {
		Spots []spotDTO `json:"spots"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/geo/prices?"+geoQuery(p, radiusM), nil, &out); err != nil {
		return nil, err
	}
	spots := make([]PricedSpot, len(out.Spots))
	for i, d := range out.Spots {
		spots[i] = PricedSpot{
			ID:        types.ID(d.ID),
			Name:      d.Name,
			Position:  types.Point{Lat: d.Lat, Lng: d.Lng},
			Tariff:    types.Money{Amount: d.TariffAmount, Currency: d.Currency},
			DistanceM: d.DistanceM,
		}
	}
	return spots, nil
}

func (c *HTTPClient) QueryParkingLocations(ctx context.Context, p types.Point, radiusM int) ([]Location, error) {
	var out struct {
		Locations []locationDTO `json:"locations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/geo/locations?"+geoQuery(p, radiusM), nil, &out); err != nil {
		return nil, err
	}
	locations := make([]Location, len(out.Locations))
	for i, d := range out.Locations {
		locations[i] = Location{
			ID:       types.ID(d.ID),
			Name:     d.Name,
			Address:  d.Address,
			Position: types.Point{Lat: d.Lat, Lng: d.Lng},
		}
	}
	return locations, nil
}

func geoQuery(p types.Point, radiusM int) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(p.Lng, 'f', -1, 64))
	q.Set("radius_m", strconv.Itoa(radiusM))
	return q.Encode()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("parking api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = resp.Status
		}
		return &Rejection{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
