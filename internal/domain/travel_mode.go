package domain

import (
	"fmt"
	"strings"
)

// TravelMode is the vehicle category understood by the routing provider.
type TravelMode string

const (
	ModeCar   TravelMode = "car"
	ModeTruck TravelMode = "truck"
	ModeVan   TravelMode = "van"
)

var vehicleAliases = map[string]TravelMode{
	"ligeiro": ModeCar,
	"carro":   ModeCar,
	"car":     ModeCar,
	"c":       ModeCar,

	"pesado": ModeTruck,
	"camião": ModeTruck,
	"camiao": ModeTruck,
	"truck":  ModeTruck,
	"t":      ModeTruck,

	"van":    ModeVan,
	"furgão": ModeVan,
	"furgao": ModeVan,
	"v":      ModeVan,
}

// ParseVehicleType maps a user supplied vehicle token to its travel mode.
// Matching is exact after trimming and lower-casing.
func ParseVehicleType(raw string) (TravelMode, error) {
	vt := strings.ToLower(strings.TrimSpace(raw))
	if vt == "" {
		return "", InvalidInput("vehicle type is blank")
	}

	mode, ok := vehicleAliases[vt]
	if !ok {
		return "", InvalidInput(fmt.Sprintf(
			"invalid vehicle type: '%s'. Use e.g.: ligeiro, pesado, van", raw,
		))
	}

	return mode, nil
}
