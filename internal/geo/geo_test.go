package geo

import (
	"math"
	"testing"
)

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Latitude: -6.2088, Longitude: 106.8456}
	b := Point{Latitude: -6.1751, Longitude: 106.8650}

	ab := Distance(a, b)
	ba := Distance(b, a)
	if ab != ba {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
	if Distance(a, a) != 0 {
		t.Fatalf("expected zero self-distance, got %v", Distance(a, a))
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of latitude on a 6371 km sphere is ~111.19 km.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 1, Longitude: 0}

	got := Distance(a, b)
	want := 111194.9
	if math.Abs(got-want) > 50 {
		t.Fatalf("expected ~%v m, got %v", want, got)
	}
}

func TestDistanceShortRange(t *testing.T) {
	// Roughly 45 m apart along a meridian.
	a := Point{Latitude: -6.20000, Longitude: 106.80000}
	b := Point{Latitude: -6.20040, Longitude: 106.80000}

	got := Distance(a, b)
	if got < 40 || got > 50 {
		t.Fatalf("expected ~45 m, got %v", got)
	}
}

func TestValidateSample(t *testing.T) {
	if err := ValidateSample(Sample{Point: Point{Latitude: 1, Longitude: 2}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// High stated accuracy must not rescue a mocked fix.
	err := ValidateSample(Sample{Point: Point{Latitude: 1, Longitude: 2}, Simulated: true, Accuracy: 1})
	if err != ErrSimulated {
		t.Fatalf("expected ErrSimulated, got %v", err)
	}
}
