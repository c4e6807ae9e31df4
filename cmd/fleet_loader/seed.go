package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/core/ports"
)

// fleetSeed is the seed file layout: the directory's device and alert
// payloads side by side.
type fleetSeed struct {
	Devices []domain.Device `json:"devices"`
	Alerts  []domain.Alert  `json:"alerts"`
}

func readSeed(path string) (fleetSeed, error) {
	var seed fleetSeed

	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("failed to read seed file: %w", err)
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return seed, nil
}

// load upserts every device in one batch, then inserts the alerts. A
// failing alert is logged and skipped.
func load(ctx context.Context, seed fleetSeed, devices ports.DeviceRepository, alerts ports.AlertRepository) error {
	if len(seed.Devices) > 0 {
		if err := devices.SaveDevicesBatch(ctx, seed.Devices); err != nil {
			return fmt.Errorf("failed to save devices: %w", err)
		}
	}

	failed := 0
	for _, a := range seed.Alerts {
		if _, err := alerts.SaveAlert(ctx, a); err != nil {
			log.Printf("[FLEET-SEED] Failed to load alert for device %d: %v", a.DeviceID, err)
			failed++
		}
	}
	if failed > 0 {
		log.Printf("[FLEET-SEED] %d alerts failed", failed)
	}
	return nil
}
