package geo

import (
	"errors"
	"math"
	"time"
)

// earthRadiusMeters is the spherical approximation used for geofence
// distances. Branch radii are tens of meters, so the ellipsoidal error
// is irrelevant here.
const earthRadiusMeters = 6371000.0

var ErrSimulated = errors.New("location sample comes from a mock provider")

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Sample is a raw device location fix. Accuracy is reported by the
// provider but not filtered on; simulated fixes are never usable for
// attendance.
type Sample struct {
	Point
	Simulated  bool      `json:"isSimulated"`
	Accuracy   float64   `json:"accuracy"`
	CapturedAt time.Time `json:"capturedAt"`
}

// ValidateSample rejects samples flagged as coming from a mock
// location provider, regardless of reported accuracy.
func ValidateSample(s Sample) error {
	if s.Simulated {
		return ErrSimulated
	}
	return nil
}

// Distance returns the great-circle distance between two points in
// meters. Full precision is kept; callers floor only for display.
func Distance(a, b Point) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
