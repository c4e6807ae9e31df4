package geo

import (
	"math"
	"math/rand"
)

const earthRadiusKm = 6371.0

// Location represents a geographic coordinate.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Provider yields the reference location devices are placed around.
type Provider interface {
	GetLocation() Location
}

// StaticProvider always returns the same location.
type StaticProvider struct {
	Lat float64
	Lng float64
}

// NewStaticProvider creates a provider for a fixed coordinate.
func NewStaticProvider(lat, lng float64) *StaticProvider {
	return &StaticProvider{Lat: lat, Lng: lng}
}

// GetLocation returns the fixed location.
func (s *StaticProvider) GetLocation() Location {
	return Location{Latitude: s.Lat, Longitude: s.Lng}
}

// Scatter returns a point uniformly distributed within radiusKm of center.
func Scatter(center Location, radiusKm float64, r *rand.Rand) Location {
	dist := radiusKm * math.Sqrt(r.Float64())
	bearing := r.Float64() * 2 * math.Pi

	dLat := dist / earthRadiusKm * math.Cos(bearing)
	dLng := dist / (earthRadiusKm * math.Cos(center.Latitude*math.Pi/180)) * math.Sin(bearing)

	return Location{
		Latitude:  center.Latitude + dLat*180/math.Pi,
		Longitude: center.Longitude + dLng*180/math.Pi,
	}
}

// DistanceKm returns the haversine distance between two points.
func DistanceKm(a, b Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
