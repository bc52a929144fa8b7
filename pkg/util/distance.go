package util

import (
	"math"
)

const earthRadiusKm = 6371.0

// CalculateDistance computes the great-circle distance between two points
// using the Haversine formula.
// Parameters: lat1, lon1, lat2, lon2 in degrees
// Returns: distance in kilometers
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degToRad(lat1)
	lon1Rad := degToRad(lon1)
	lat2Rad := degToRad(lat2)
	lon2Rad := degToRad(lon2)

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// degToRad converts degrees to radians
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// ValidCoordinate reports whether lat/lon form a usable WGS84 coordinate.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// DistanceTo returns the distance from the origin to a candidate, or nil when
// the candidate has no usable coordinates. Unlocated candidates are never
// hidden by geo filtering, only deprioritized in ordering.
func DistanceTo(originLat, originLon float64, lat, lon *float64) *float64 {
	if lat == nil || lon == nil || !ValidCoordinate(*lat, *lon) {
		return nil
	}
	d := CalculateDistance(originLat, originLon, *lat, *lon)
	return &d
}

// WithinRadius reports whether a candidate passes radius filtering. A
// candidate without coordinates always passes. A radius of zero (or below)
// keeps only candidates sitting exactly at the origin.
func WithinRadius(distanceKm *float64, radiusKm float64) bool {
	if distanceKm == nil {
		return true
	}
	return *distanceKm <= radiusKm
}

// LessByDistance is the comparator for distance ordering: ascending distance,
// with distance-less entries after every entry that has one. Use it with a
// stable sort so ties keep their fetch order.
func LessByDistance(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}
