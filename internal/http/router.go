// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parkwatch/internal/http/handlers"
	"parkwatch/internal/http/middleware"
	"parkwatch/internal/modules/parking"
	"parkwatch/internal/modules/spots"
)

func NewRouter(parkingService *parking.Service, spotsService *spots.Service) http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	sessionHandler := handlers.NewSessionHandler(parkingService)
	r.POST("/api/sessions", sessionHandler.Create)
	r.POST("/api/sessions/:id/end", sessionHandler.End)
	r.GET("/api/sessions", sessionHandler.History)

	geoHandler := handlers.NewGeoHandler(spotsService)
	r.GET("/api/geo/prices", geoHandler.Prices)
	r.GET("/api/geo/locations", geoHandler.Locations)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
