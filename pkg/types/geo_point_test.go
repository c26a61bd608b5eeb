package types

import (
	"math"
	"testing"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	p := GeoPoint{Lat: 30.0444, Lng: 31.2357}
	if d := p.DistanceKm(p); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	cityCare := GeoPoint{Lat: 30.0444, Lng: 31.2357}
	greenCross := GeoPoint{Lat: 29.9792, Lng: 31.1342}

	d := cityCare.DistanceKm(greenCross)
	if math.Abs(d-12.17) > 0.05 {
		t.Fatalf("expected ~12.17km, got %f", d)
	}
	if back := greenCross.DistanceKm(cityCare); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance should be symmetric, got %f vs %f", d, back)
	}
}

func TestDistanceKmQuarterMeridian(t *testing.T) {
	d := GeoPoint{Lat: 0, Lng: 0}.DistanceKm(GeoPoint{Lat: 90, Lng: 0})
	want := EarthRadiusKm * math.Pi / 2
	if math.Abs(d-want) > 1e-6 {
		t.Fatalf("expected %f, got %f", want, d)
	}
}

func TestGeoPointValidate(t *testing.T) {
	if err := (GeoPoint{Lat: 30, Lng: 31}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (GeoPoint{Lat: 91, Lng: 0}).Validate(); err == nil {
		t.Fatal("expected latitude error")
	}
	if err := (GeoPoint{Lat: 0, Lng: -181}).Validate(); err == nil {
		t.Fatal("expected longitude error")
	}
}
