// Package geo provides great-circle helpers for WGS84 meter coordinates.
//
// Distances use the haversine formula on a spherical Earth. The error against
// the true ellipsoidal distance is well under 0.5%, irrelevant at the tens of
// metres this module cares about.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in metres.
const EarthRadiusM = 6371000.0

// metersPerDegreeLat is the length of one degree of latitude on the sphere.
const metersPerDegreeLat = EarthRadiusM * math.Pi / 180.0

// DistanceM returns the great-circle distance in metres between two points.
func DistanceM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180.0
	phi2 := lat2 * math.Pi / 180.0
	dPhi := phi2 - phi1
	dLambda := (lon2 - lon1) * math.Pi / 180.0

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	return 2 * EarthRadiusM * math.Asin(math.Sqrt(a))
}

// DegreesLat converts a north-south distance in metres to degrees of latitude.
func DegreesLat(meters float64) float64 {
	return meters / metersPerDegreeLat
}

// DegreesLon converts an east-west distance in metres to degrees of longitude
// at the given latitude. The conversion degenerates towards the poles; callers
// must keep atLat away from ±90°.
func DegreesLon(meters, atLat float64) float64 {
	c := math.Cos(atLat * math.Pi / 180.0)
	return meters / (metersPerDegreeLat * c)
}
