package model

import "fmt"

// Team colour used when the upstream has no colour for a team.
const (
	NeutralTeamColour     = "FFFFFF"
	PlaceholderTeamColour = "333333"
	PlaceholderTeamName   = "Unknown Team"
)

// Driver is a participant in one session. Both upstreams normalize to this
// shape; the Legacy* fields are only populated by the historical API.
type Driver struct {
	Number      int    `json:"driver_number"`
	FullName    string `json:"full_name"`
	Acronym     string `json:"name_acronym"`
	TeamName    string `json:"team_name"`
	TeamColour  string `json:"team_colour"`
	CountryCode string `json:"country_code,omitempty"`
	HeadshotURL string `json:"headshot_url,omitempty"`
	LegacyID    string `json:"legacy_id,omitempty"`

	// LegacyFastestLap is the upstream fastest lap string, kept verbatim.
	LegacyFastestLap string `json:"legacy_fastest_lap,omitempty"`
	// LegacyLaps is the number of laps completed per the legacy classification.
	LegacyLaps int `json:"legacy_laps,omitempty"`
}

// PlaceholderDriver synthesizes an identity for a classified driver whose
// metadata is missing from the driver list.
func PlaceholderDriver(number int) Driver {
	return Driver{
		Number:     number,
		FullName:   fmt.Sprintf("Driver #%d", number),
		TeamName:   PlaceholderTeamName,
		TeamColour: PlaceholderTeamColour,
	}
}
