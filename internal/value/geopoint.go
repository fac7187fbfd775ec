package value

import "math"

// GeoPoint is a latitude/longitude pair stored in milli-degrees (degrees *
// 1000) as int32: latitude in [-90000, 90000], longitude in
// [-180000, 180000). The N/A sentinel is both components set to
// math.MinInt32.
type GeoPoint struct {
	LatMilli int32
	LonMilli int32
}

const (
	naGeoComponent = math.MinInt32
	latMax         = 90000
	latMin         = -90000
	lonSpan        = 360000 // [-180000, 180000)
)

var NAGeoPoint = GeoPoint{LatMilli: naGeoComponent, LonMilli: naGeoComponent}

// IsNA reports whether p is the N/A sentinel.
func (p GeoPoint) IsNA() bool {
	return p.LatMilli == naGeoComponent && p.LonMilli == naGeoComponent
}

// NormalizeGeoPoint clamps latitude into [-90000, 90000] and wraps
// longitude into [-180000, 180000). When latitude clamps to a pole, the
// poles collapse longitude to 0 (every longitude is the same point at a
// pole).
func NormalizeGeoPoint(latMilli, lonMilli int32) (int32, int32) {
	lat := latMilli
	if lat > latMax {
		lat = latMax
	} else if lat < latMin {
		lat = latMin
	}

	lon := wrapLongitude(lonMilli)
	if lat == latMax || lat == latMin {
		lon = 0
	}
	return lat, lon
}

func wrapLongitude(lonMilli int32) int32 {
	v := int64(lonMilli)
	v = ((v+180000)%lonSpan + lonSpan) % lonSpan
	v -= 180000
	return int32(v)
}

// NewGeoPoint constructs a normalized GeoPoint from milli-degree
// components.
func NewGeoPoint(latMilli, lonMilli int32) GeoPoint {
	lat, lon := NormalizeGeoPoint(latMilli, lonMilli)
	return GeoPoint{LatMilli: lat, LonMilli: lon}
}

// MatchGeoPoint implements match(a,b): true iff both NA, or both non-NA
// and componentwise equal.
func MatchGeoPoint(a, b GeoPoint) bool {
	if a.IsNA() || b.IsNA() {
		return a.IsNA() && b.IsNA()
	}
	return a == b
}

// EqualGeoPoint implements equal(a,b): NA if either operand is NA.
func EqualGeoPoint(a, b GeoPoint) Bool {
	if a.IsNA() || b.IsNA() {
		return NABool
	}
	return BoolOf(a == b)
}

// CompareGeoPoint orders two non-NA points, tie-broken on latitude then
// longitude, as required by the LESS family's GeoPoint rule.
func CompareGeoPoint(a, b GeoPoint) int {
	if a.LatMilli != b.LatMilli {
		if a.LatMilli < b.LatMilli {
			return -1
		}
		return 1
	}
	switch {
	case a.LonMilli < b.LonMilli:
		return -1
	case a.LonMilli > b.LonMilli:
		return 1
	default:
		return 0
	}
}
