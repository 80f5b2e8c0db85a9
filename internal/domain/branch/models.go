package branch

import "time"

// DefaultRadiusMeters applies when a branch has no radius configured.
const DefaultRadiusMeters = 100.0

type Site struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radiusMeters"`
	StartHour    string    `json:"startHour"`
	EndHour      string    `json:"endHour"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EffectiveRadius is the acceptance radius used for geofencing.
func (s Site) EffectiveRadius() float64 {
	if s.RadiusMeters > 0 {
		return s.RadiusMeters
	}
	return DefaultRadiusMeters
}
