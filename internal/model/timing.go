package model

import "time"

// PositionRecord is a timestamped classification snapshot for one driver.
type PositionRecord struct {
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
}

// LapRecord is one lap of one driver. Duration is in seconds and is zero when
// the upstream did not time the lap.
type LapRecord struct {
	DriverNumber int     `json:"driver_number"`
	LapNumber    int     `json:"lap_number"`
	Duration     float64 `json:"lap_duration"`
	PitOut       bool    `json:"is_pit_out_lap"`
}

// Weather is one weather sample taken during a session.
type Weather struct {
	Date             time.Time `json:"date"`
	AirTemperature   float64   `json:"air_temperature"`
	TrackTemperature float64   `json:"track_temperature"`
	Humidity         float64   `json:"humidity"`
	Pressure         float64   `json:"pressure"`
	Rainfall         float64   `json:"rainfall"`
	WindDirection    float64   `json:"wind_direction"`
	WindSpeed        float64   `json:"wind_speed"`
}
