package model

// ResultRow is the reconciled, display-ready classification line of a driver.
type ResultRow struct {
	Position       int     `json:"position" csv:"position"`
	DriverNumber   int     `json:"driver_number" csv:"driver_number"`
	FullName       string  `json:"full_name" csv:"driver"`
	Acronym        string  `json:"name_acronym" csv:"code"`
	TeamName       string  `json:"team_name" csv:"team"`
	TeamColour     string  `json:"team_colour" csv:"team_colour"`
	Points         int     `json:"points" csv:"points"`
	BestLap        string  `json:"best_lap" csv:"best_lap"`
	BestLapSeconds float64 `json:"best_lap_seconds,omitempty" csv:"best_lap_seconds,omitempty"`
	LapsCompleted  int     `json:"laps_completed" csv:"laps"`
}

// FastestLap is the quickest valid lap of a session.
type FastestLap struct {
	DriverNumber int     `json:"driver_number"`
	FullName     string  `json:"full_name"`
	Time         string  `json:"time"`
	Seconds      float64 `json:"seconds"`
}

// SessionResult is the output of one results load.
type SessionResult struct {
	Session   Session     `json:"session"`
	Rows      []ResultRow `json:"results"`
	TotalLaps int         `json:"total_laps"`
	Fastest   *FastestLap `json:"fastest_lap,omitempty"`
	Weather   *Weather    `json:"weather,omitempty"`
	Partial   bool        `json:"partial,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// Podium returns the first three rows, or fewer when the field is smaller.
func (r *SessionResult) Podium() []ResultRow {
	if len(r.Rows) < 3 {
		return r.Rows
	}
	return r.Rows[:3]
}

// Standing is one line of the drivers' championship table.
type Standing struct {
	Position     int     `json:"position" csv:"position"`
	Points       float64 `json:"points" csv:"points"`
	Wins         int     `json:"wins" csv:"wins"`
	DriverNumber int     `json:"driver_number,omitempty" csv:"driver_number"`
	FullName     string  `json:"full_name" csv:"driver"`
	Acronym      string  `json:"name_acronym" csv:"code"`
	TeamName     string  `json:"team_name" csv:"team"`
}
