package utils

import (
	"math"

	"github.com/jftuga/geodist"
	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision gives cells of roughly 150m.
const GeohashPrecision = 7

// DistanceKm returns the ellipsoidal distance between two coordinates.
// Vincenty does not converge for nearly antipodal points; haversine is used then.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := geodist.Coord{Lat: lat1, Lon: lon1}
	b := geodist.Coord{Lat: lat2, Lon: lon2}
	_, km, err := geodist.VincentyDistance(a, b)
	if err != nil {
		_, km = geodist.HaversineDistance(a, b)
	}
	return math.Round(km*100) / 100
}

// Geohash encodes a coordinate into a GeohashPrecision cell.
func Geohash(lat, lon float64) string {
	return geohash.EncodeWithPrecision(lat, lon, GeohashPrecision)
}
