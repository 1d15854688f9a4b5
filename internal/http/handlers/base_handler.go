// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkwatch/internal/modules/parking"
	"parkwatch/internal/modules/spots"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeParkingError(c *gin.Context, err error) {
	switch err {
	case parking.ErrBadRequest:
		writeError(c, http.StatusBadRequest, err.Error())
	case parking.ErrNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case parking.ErrActiveExists, parking.ErrNotActive:
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeSpotsError(c *gin.Context, err error) {
	switch err {
	case spots.ErrBadRequest:
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// callerID resolves the caller identity. Authentication itself lives outside
// this service; the gateway forwards the identity in a header.
func callerID(c *gin.Context) string {
	if uid := c.GetHeader("X-User-ID"); uid != "" {
		return uid
	}
	return "local"
}
