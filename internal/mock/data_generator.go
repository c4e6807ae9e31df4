package mock

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/fleetpulse/internal/core/domain"
	"github.com/lcalzada-xor/fleetpulse/internal/geo"
)

// Site names used for realistic locations
var siteNames = []string{
	"North Depot", "South Depot", "Cold Storage A", "Cold Storage B",
	"Assembly Line 1", "Assembly Line 2", "Boiler Room", "Loading Dock",
	"Warehouse East", "Warehouse West", "Pump Station", "Roof Unit",
}

var deviceTypes = []domain.DeviceType{
	domain.TypeTracker,
	domain.TypeTemperatureSensor,
	domain.TypeVibrationSensor,
	domain.TypeOxygenMeter,
	domain.TypeHumiditySensor,
	domain.TypePressureSensor,
	domain.TypeGeneric,
}

var typePrefixes = map[domain.DeviceType]string{
	domain.TypeTracker:           "TRK",
	domain.TypeTemperatureSensor: "TMP",
	domain.TypeVibrationSensor:   "VIB",
	domain.TypeOxygenMeter:       "OXY",
	domain.TypeHumiditySensor:    "HUM",
	domain.TypePressureSensor:    "PRS",
	domain.TypeGeneric:           "GEN",
}

// Statuses with their selection weights for a healthy fleet
var (
	statuses      = []domain.DeviceStatus{domain.StatusActive, domain.StatusInactive, domain.StatusMaintenance, domain.StatusError, domain.StatusConfiguring}
	healthyWeight = []float32{0.8, 0.06, 0.06, 0.04, 0.04}
	failingWeight = []float32{0.35, 0.15, 0.1, 0.35, 0.05}
)

// Scenario describes the simulated fleet.
type Scenario struct {
	Name    string
	Devices int
	Failing bool // skew statuses towards errors and disconnections
}

// Scenarios known by name.
var Scenarios = map[string]Scenario{
	"basic":    {Name: "basic", Devices: 24},
	"large":    {Name: "large", Devices: 250},
	"degraded": {Name: "degraded", Devices: 40, Failing: true},
	"empty":    {Name: "empty", Devices: 0},
}

// ScenarioByName returns the named scenario, or "basic" when unknown.
func ScenarioByName(name string) Scenario {
	if s, ok := Scenarios[strings.ToLower(name)]; ok {
		return s
	}
	return Scenarios["basic"]
}

// DataGenerator produces simulated devices and alerts.
type DataGenerator struct {
	rand     *rand.Rand
	location geo.Provider
	radiusKm float64
	now      func() time.Time

	nextDeviceID int64
}

// NewDataGenerator creates a generator placing devices around location.
// A zero seed uses the current time.
func NewDataGenerator(location geo.Provider, seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{
		rand:     rand.New(rand.NewSource(seed)),
		location: location,
		radiusKm: 15,
		now:      time.Now,
	}
}

// GenerateDevice creates one device.
func (g *DataGenerator) GenerateDevice(failing bool) domain.Device {
	g.nextDeviceID++
	typ := deviceTypes[g.rand.Intn(len(deviceTypes))]

	weights := healthyWeight
	if failing {
		weights = failingWeight
	}
	status := weightedChoice(g.rand, statuses, weights)

	// Connectivity is tracked apart from the status text, so the two can disagree.
	active := status == domain.StatusActive || status == domain.StatusConfiguring
	if g.rand.Float32() < 0.1 {
		active = !active
	}

	now := g.now()
	lastComm := now.Add(-time.Duration(g.rand.Intn(3600)) * time.Second)
	if !active {
		lastComm = now.Add(-time.Duration(1+g.rand.Intn(48)) * time.Hour)
	}

	d := domain.Device{
		ID:                g.nextDeviceID,
		Name:              fmt.Sprintf("%s %s %d", siteNames[g.rand.Intn(len(siteNames))], strings.ToLower(string(typ)), g.nextDeviceID),
		Identifier:        fmt.Sprintf("%s-%s", typePrefixes[typ], strings.ToUpper(uuid.NewString()[:8])),
		Type:              typ,
		Status:            status,
		Location:          siteNames[g.rand.Intn(len(siteNames))],
		LastReading:       g.reading(typ),
		LastCommunication: &lastComm,
		Active:            active,
		CreatedAt:         now.Add(-time.Duration(30+g.rand.Intn(300)) * 24 * time.Hour),
		UpdatedAt:         now,
	}

	// Some devices never report a position.
	if g.location != nil && g.rand.Float32() < 0.85 {
		p := geo.Scatter(g.location.GetLocation(), g.radiusKm, g.rand)
		d.Latitude, d.Longitude = &p.Latitude, &p.Longitude
	}

	return d
}

// GenerateFleet creates the devices of a scenario.
func (g *DataGenerator) GenerateFleet(s Scenario) []domain.Device {
	devices := make([]domain.Device, 0, s.Devices)
	for i := 0; i < s.Devices; i++ {
		devices = append(devices, g.GenerateDevice(s.Failing))
	}
	return devices
}

// AlertFor derives an alert from an unhealthy device. ok is false for a
// device that has nothing to report.
func (g *DataGenerator) AlertFor(d domain.Device) (domain.Alert, bool) {
	now := g.now()
	a := domain.Alert{
		DeviceID:   d.ID,
		DeviceName: d.Name,
		Timestamp:  now.Add(-time.Duration(g.rand.Intn(120)) * time.Minute),
	}

	switch {
	case d.InError():
		a.Type = domain.AlertError
		a.Severity = domain.SeverityCritical
		a.Message = "Device reported a fault"
		a.Description = fmt.Sprintf("%s is reporting an error status", d.Identifier)
		a.RecommendedAction = "Inspect the device and restart it"
	case !d.Active:
		minutes := 30 + g.rand.Intn(600)
		a.Type = domain.AlertOffline
		a.Severity = domain.SeverityHigh
		if minutes < 120 {
			a.Severity = domain.SeverityMedium
		}
		a.Message = "Device offline"
		a.Description = fmt.Sprintf("No communication from %s for %d minutes", d.Identifier, minutes)
		a.DurationMinutes = &minutes
		a.RecommendedAction = "Check power supply and connectivity"
	case d.InMaintenance():
		a.Type = domain.AlertMaintenance
		a.Severity = domain.SeverityLow
		a.Message = "Scheduled maintenance"
		a.Description = fmt.Sprintf("%s is under maintenance", d.Identifier)
	case d.NormalizedStatus() == string(domain.StatusConfiguring):
		a.Type = domain.AlertConfiguration
		a.Severity = domain.SeverityLow
		a.Message = "Configuration pending"
		a.Description = fmt.Sprintf("%s has not finished provisioning", d.Identifier)
	default:
		return domain.Alert{}, false
	}
	return a, true
}

// Mutate applies a random change to the device, simulating field activity.
func (g *DataGenerator) Mutate(d *domain.Device) {
	now := g.now()
	switch p := g.rand.Float32(); {
	case p < 0.5:
		d.LastReading = g.reading(d.Type)
	case p < 0.7:
		d.Active = !d.Active
	case p < 0.85:
		d.Status = weightedChoice(g.rand, statuses, healthyWeight)
	default:
		d.Status = domain.StatusError
	}
	if d.Active {
		d.LastCommunication = &now
	}
	d.UpdatedAt = now
}

func (g *DataGenerator) reading(t domain.DeviceType) string {
	switch t {
	case domain.TypeTemperatureSensor:
		return fmt.Sprintf("%.1f°C", -20+g.rand.Float64()*60)
	case domain.TypeHumiditySensor:
		return fmt.Sprintf("%.0f%%", 20+g.rand.Float64()*70)
	case domain.TypeOxygenMeter:
		return fmt.Sprintf("%.1f%% O2", 18+g.rand.Float64()*4)
	case domain.TypePressureSensor:
		return fmt.Sprintf("%.0f hPa", 980+g.rand.Float64()*60)
	case domain.TypeVibrationSensor:
		return fmt.Sprintf("%.2f mm/s", g.rand.Float64()*12)
	case domain.TypeTracker:
		return fmt.Sprintf("%.0f km/h", g.rand.Float64()*90)
	}
	return ""
}

func weightedChoice[T any](r *rand.Rand, choices []T, weights []float32) T {
	total := float32(0)
	for _, w := range weights {
		total += w
	}

	x := r.Float32() * total
	cumulative := float32(0)

	for i, w := range weights {
		cumulative += w
		if x <= cumulative {
			return choices[i]
		}
	}

	return choices[0]
}
