// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parkwatch/internal/config"
	httptransport "parkwatch/internal/http"
	"parkwatch/internal/infra"
	"parkwatch/internal/maps"
	"parkwatch/internal/modules/parking"
	"parkwatch/internal/modules/spots"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	parkingStore := parking.NewStore(dbPool)
	parkingSvc := parking.NewService(parkingStore)

	spotStore := spots.NewStore(redisClient)
	var places spots.PlacesProvider
	if cfg.Maps.APIKey != "" {
		placesSvc, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		places = placesSvc
	}
	spotsSvc := spots.NewService(spotStore, places)

	handler := httptransport.NewRouter(parkingSvc, spotsSvc)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("parkwatch-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
