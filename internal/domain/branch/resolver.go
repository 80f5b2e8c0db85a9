package branch

import (
	"math"

	"absensi/internal/geo"
)

// Resolution classifies a validated coordinate against the branch list.
// Nearest is nil when no branches exist; callers degrade to a
// "location locked but no outlet context" state instead of blocking.
type Resolution struct {
	Nearest        *Site
	DistanceMeters float64
	WithinRadius   bool
}

// Resolve finds the branch with the strictly smallest great-circle
// distance from point. Exact ties keep the first site in input order,
// so the result is deterministic for identical inputs. The radius
// comparison uses full precision; DisplayDistance floors for UI only.
func Resolve(point geo.Point, sites []Site) Resolution {
	if len(sites) == 0 {
		return Resolution{DistanceMeters: math.Inf(1)}
	}

	best := 0
	bestDist := geo.Distance(point, geo.Point{Latitude: sites[0].Latitude, Longitude: sites[0].Longitude})
	for i := 1; i < len(sites); i++ {
		d := geo.Distance(point, geo.Point{Latitude: sites[i].Latitude, Longitude: sites[i].Longitude})
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	nearest := sites[best]
	return Resolution{
		Nearest:        &nearest,
		DistanceMeters: bestDist,
		WithinRadius:   bestDist <= nearest.EffectiveRadius(),
	}
}

// DisplayDistance truncates a distance for user-facing messages.
func DisplayDistance(meters float64) int {
	if math.IsInf(meters, 1) {
		return 0
	}
	return int(math.Floor(meters))
}
