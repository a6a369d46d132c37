package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Meters per degree of latitude at its smallest, used to over-estimate the
// degree padding so a bounding box never under-covers a radius circle.
const minMetersPerDegreeLat = 110574.0

const metersPerDegreeLngAtEquator = 111320.0

// Distance returns the great-circle distance in meters between two
// coordinates using a spherical-earth approximation.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.Distance(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}

// boundingBox returns a latitude/longitude rectangle guaranteed to contain
// every point within radiusMeters of the center. False positives are fine,
// false negatives are not; the caller filters with the exact distance.
func boundingBox(lat, lng, radiusMeters float64) (minLat, minLng, maxLat, maxLng float64) {
	latPad := radiusMeters / minMetersPerDegreeLat

	minLat = math.Max(lat-latPad, -90)
	maxLat = math.Min(lat+latPad, 90)

	// Longitude degrees shrink toward the poles; pad with the cosine of the
	// latitude in the padded band furthest from the equator.
	farthestLat := math.Max(math.Abs(minLat), math.Abs(maxLat))
	cosLat := math.Cos(farthestLat * math.Pi / 180)
	if cosLat < 1e-6 {
		return minLat, -180, maxLat, 180
	}

	lngPad := radiusMeters / (metersPerDegreeLngAtEquator * cosLat)
	minLng = math.Max(lng-lngPad, -180)
	maxLng = math.Min(lng+lngPad, 180)
	return minLat, minLng, maxLat, maxLng
}
