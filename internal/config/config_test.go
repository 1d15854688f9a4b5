package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Geodata.CacheTTL != 10*time.Second {
		t.Errorf("Geodata.CacheTTL = %v", cfg.Geodata.CacheTTL)
	}
	if cfg.Geodata.Debounce != 300*time.Millisecond {
		t.Errorf("Geodata.Debounce = %v", cfg.Geodata.Debounce)
	}
	if cfg.Geodata.MinMoveM != 50 || cfg.Geodata.RadiusMeters != 1000 {
		t.Errorf("Geodata gate/radius = %v / %v", cfg.Geodata.MinMoveM, cfg.Geodata.RadiusMeters)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PARKWATCH_HTTP_ADDR", ":9999")
	t.Setenv("PARKWATCH_GEO_DEBOUNCE_MS", "150")
	t.Setenv("PARKWATCH_GEO_MIN_MOVE_M", "25.5")
	t.Setenv("PARKWATCH_GEO_RADIUS_M", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Geodata.Debounce != 150*time.Millisecond {
		t.Errorf("Geodata.Debounce = %v", cfg.Geodata.Debounce)
	}
	if cfg.Geodata.MinMoveM != 25.5 {
		t.Errorf("Geodata.MinMoveM = %v", cfg.Geodata.MinMoveM)
	}
	// Unparseable values fall back to the default.
	if cfg.Geodata.RadiusMeters != 1000 {
		t.Errorf("Geodata.RadiusMeters = %v", cfg.Geodata.RadiusMeters)
	}
}
