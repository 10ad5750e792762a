package kernel

import "math"

// EarthRadiusKm is the sphere radius used for all distance computations.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two positions in kilometers.
func HaversineKm(a, b Position) float64 {
	dLat := degToRad(b.lat - a.lat)
	dLng := degToRad(b.lng - a.lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(a.lat))*math.Cos(degToRad(b.lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
