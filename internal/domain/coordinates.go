package domain

import "math"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

func validLat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

func validLon(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}

// MeanCoordinates collapses every point listed for a postal code into one
// representative location. Latitudes and longitudes are averaged separately,
// each over its own valid values; the result is unresolved when either side
// has no valid value at all.
func MeanCoordinates(points []Coordinates) Resolution[Coordinates] {
	var latSum, lonSum float64
	var latN, lonN int

	for _, p := range points {
		if validLat(p.Lat) {
			latSum += p.Lat
			latN++
		}
		if validLon(p.Lon) {
			lonSum += p.Lon
			lonN++
		}
	}

	if latN == 0 || lonN == 0 {
		return Unresolved[Coordinates]()
	}

	return Resolved(Coordinates{
		Lat: latSum / float64(latN),
		Lon: lonSum / float64(lonN),
	})
}
