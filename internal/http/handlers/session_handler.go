// README: Session handlers for create/end/history.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"parkwatch/internal/modules/parking"
	"parkwatch/internal/types"
)

type SessionHandler struct {
	parking *parking.Service
}

func NewSessionHandler(svc *parking.Service) *SessionHandler {
	return &SessionHandler{parking: svc}
}

type createSessionReq struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	Note              string  `json:"note"`
	AdjustedStartedAt string  `json:"adjusted_started_at"`
	HasPhoto          bool    `json:"has_photo"`
}

type sessionResp struct {
	ID                string     `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	AdjustedStartedAt *time.Time `json:"adjusted_started_at,omitempty"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	Note              string     `json:"note,omitempty"`
	HasPhoto          bool       `json:"has_photo,omitempty"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
}

func toSessionResp(r *parking.Record) sessionResp {
	return sessionResp{
		ID:                string(r.ID),
		StartedAt:         r.StartedAt,
		AdjustedStartedAt: r.AdjustedStartedAt,
		Latitude:          r.Position.Lat,
		Longitude:         r.Position.Lng,
		Note:              r.Note,
		HasPhoto:          r.HasPhoto,
		EndedAt:           r.EndedAt,
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := parking.CreateCommand{
		UserID:   types.ID(callerID(c)),
		Position: types.Point{Lat: req.Latitude, Lng: req.Longitude},
		Note:     req.Note,
		HasPhoto: req.HasPhoto,
	}
	if req.AdjustedStartedAt != "" {
		t, err := time.Parse(time.RFC3339, req.AdjustedStartedAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid adjusted_started_at")
			return
		}
		cmd.AdjustedStartedAt = &t
	}
	record, err := h.parking.Create(c.Request.Context(), cmd)
	if err != nil {
		writeParkingError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toSessionResp(record))
}

type endSessionReq struct {
	EndedAt string `json:"ended_at"`
}

func (h *SessionHandler) End(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing session id")
		return
	}
	var req endSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var endedAt time.Time
	if req.EndedAt != "" {
		t, err := time.Parse(time.RFC3339, req.EndedAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid ended_at")
			return
		}
		endedAt = t
	}
	record, err := h.parking.End(c.Request.Context(), types.ID(id), endedAt)
	if err != nil {
		writeParkingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSessionResp(record))
}

func (h *SessionHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	records, err := h.parking.History(c.Request.Context(), types.ID(callerID(c)), limit, offset)
	if err != nil {
		writeParkingError(c, err)
		return
	}
	resp := make([]sessionResp, len(records))
	for i, r := range records {
		resp[i] = toSessionResp(r)
	}
	writeJSON(c, http.StatusOK, gin.H{"sessions": resp})
}
