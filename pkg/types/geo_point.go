package types

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports whether the coordinates fall inside the valid ranges.
func (g GeoPoint) Validate() error {
	if math.IsNaN(g.Lat) || g.Lat < -90 || g.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", g.Lat)
	}
	if math.IsNaN(g.Lng) || g.Lng < -180 || g.Lng > 180 {
		return fmt.Errorf("longitude %v out of range", g.Lng)
	}
	return nil
}

// DistanceKm returns the haversine great-circle distance to other in kilometres.
func (g GeoPoint) DistanceKm(other GeoPoint) float64 {
	dLat := toRadians(other.Lat - g.Lat)
	dLng := toRadians(other.Lng - g.Lng)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRadians(g.Lat))*math.Cos(toRadians(other.Lat))*math.Pow(math.Sin(dLng/2), 2)
	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
