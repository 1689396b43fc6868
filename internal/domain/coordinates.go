package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates (latitude, longitude, WGS84).
type Coordinates struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lat, lng] for map rendering.
func (c Coordinates) ToList() []float64 { return []float64{c.Lat, c.Lng} }

// Key collapses coordinates to 5 decimal places (~1 m precision).
// Places whose keys collide are considered the same physical location.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
