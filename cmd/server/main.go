package main

import (
	"log"
	"os"
	"time"

	"github.com/arjun/cutoff-finder/internal/api"
	"github.com/arjun/cutoff-finder/internal/dataset"
	"github.com/arjun/cutoff-finder/internal/exams"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	registry, err := exams.LoadRegistry("config/exams.yaml")
	if err != nil {
		log.Fatalf("Failed to load exam registry: %v", err)
	}

	ttl := dataset.DefaultTTL
	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid CACHE_TTL %q: %v", raw, err)
		}
		ttl = parsed
	}

	store := dataset.NewStore(dataDir, registry, ttl)

	srv := api.NewServer(registry, store, dataDir)
	log.Printf("Server starting on port %s (data dir %s, %d exams)...", port, dataDir, len(registry.All()))
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
