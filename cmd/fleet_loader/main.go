package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/fleetpulse/internal/adapters/alerts"
	"github.com/lcalzada-xor/fleetpulse/internal/adapters/storage"
)

func main() {
	seedFile := flag.String("seed-file", "./configs/fleet_seed.json", "Path to fleet seed JSON file")
	dbPath := flag.String("db-path", "./data/fleetpulse.db", "Path to fleet database")
	flag.Parse()

	log.Println("=== Fleet Seed Loader ===")
	log.Printf("Seed file: %s", *seedFile)
	log.Printf("Database: %s", *dbPath)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	devices, err := storage.NewSQLiteAdapter(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open device storage: %v", err)
	}
	defer devices.Close()

	repo, err := alerts.NewSQLiteRepository(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open alert storage: %v", err)
	}
	defer repo.Close()

	seed, err := readSeed(*seedFile)
	if err != nil {
		log.Fatalf("Failed to read seed data: %v", err)
	}

	ctx := context.Background()
	if err := load(ctx, seed, devices, repo); err != nil {
		log.Fatalf("Failed to load seed data: %v", err)
	}

	// Show stats
	pending, _ := repo.PendingCount(ctx)
	log.Printf("✓ Loaded %d devices and %d alerts (%d unacknowledged)", len(seed.Devices), len(seed.Alerts), pending)
}
