package dto

type DistanceRequest struct {
	CEPOrigem   string `json:"cep_origem"`
	CEPDestino  string `json:"cep_destino"`
	VehicleType string `json:"vehicle_type"`
}

type DistanceResponse struct {
	OriginCEP        string  `json:"origin_cep"`
	DestinationCEP   string  `json:"destination_cep"`
	VehicleType      string  `json:"vehicle_type"`
	TomTomTravelMode string  `json:"tomtom_travel_mode"`
	Distance         float64 `json:"distance"`
	DistanceUnit     string  `json:"distance_unit"`
	TravelTime       float64 `json:"travel_time"`
	TimeUnit         string  `json:"time_unit"`
	Source           string  `json:"source"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
