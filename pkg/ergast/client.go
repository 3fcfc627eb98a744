// Package ergast provides a client for the Ergast-compatible historical
// results API served by Jolpica.
package ergast

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/fetcher"
)

// DefaultBaseURL is the public Jolpica mirror of the Ergast API.
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// pageLimit lifts the default page size of 30 above a full calendar or grid.
const pageLimit = 100

// Client defines the Ergast operations.
type Client interface {
	// Season lists the races of a year.
	Season(ctx context.Context, year int) ([]Race, error)
	// RaceResults returns a race with its classification, or nil when the
	// season has no such round.
	RaceResults(ctx context.Context, year, round int) (*Race, error)
	// DriverStandings returns the driver championship table of a year.
	DriverStandings(ctx context.Context, year int) ([]DriverStanding, error)
}

// Response is the MRData envelope shared by every endpoint.
type Response struct {
	MRData MRData `json:"MRData"`
}

// MRData carries one of the tables below depending on the endpoint.
type MRData struct {
	Series         string         `json:"series"`
	Limit          string         `json:"limit"`
	Offset         string         `json:"offset"`
	Total          string         `json:"total"`
	RaceTable      RaceTable      `json:"RaceTable"`
	StandingsTable StandingsTable `json:"StandingsTable"`
}

// RaceTable lists races.
type RaceTable struct {
	Season string `json:"season"`
	Races  []Race `json:"Races"`
}

// Race is a grand prix with its optional classification.
type Race struct {
	Season   string   `json:"season"`
	Round    string   `json:"round"`
	URL      string   `json:"url"`
	RaceName string   `json:"raceName"`
	Circuit  Circuit  `json:"Circuit"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Results  []Result `json:"Results"`
}

// Circuit is a race venue.
type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	URL         string   `json:"url"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

// Location is a circuit's place.
type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// Result is one classified entry.
type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid"`
	Laps         string      `json:"laps"`
	Status       string      `json:"status"`
	Time         *RaceTime   `json:"Time,omitempty"`
	FastestLap   *FastestLap `json:"FastestLap,omitempty"`
}

// Driver identifies a driver.
type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

// Constructor identifies a team.
type Constructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

// RaceTime is a finishing time.
type RaceTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

// FastestLap is a driver's best lap of the race.
type FastestLap struct {
	Rank         string       `json:"rank"`
	Lap          string       `json:"lap"`
	Time         LapTime      `json:"Time"`
	AverageSpeed AverageSpeed `json:"AverageSpeed"`
}

// LapTime is a formatted lap time such as "1:32.608".
type LapTime struct {
	Time string `json:"time"`
}

// AverageSpeed is the fastest lap's mean speed.
type AverageSpeed struct {
	Units string `json:"units"`
	Speed string `json:"speed"`
}

// StandingsTable lists standings snapshots.
type StandingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

// StandingsList is the table after a given round.
type StandingsList struct {
	Season          string           `json:"season"`
	Round           string           `json:"round"`
	DriverStandings []DriverStanding `json:"DriverStandings"`
}

// DriverStanding is one championship row.
type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

// Option configures the Ergast client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithFetcher sets the transport used for requests.
func WithFetcher(g fetcher.Getter) Option {
	return func(c *httpClient) {
		c.fetcher = g
	}
}

type httpClient struct {
	baseURL string
	fetcher fetcher.Getter
}

// NewClient creates a new Ergast client.
func NewClient(opts ...Option) Client {
	c := &httpClient{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.New(fetcher.Options{})
	}
	return c
}

func (c *httpClient) Season(ctx context.Context, year int) ([]Race, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/%d.json", year))
	if err != nil {
		return nil, eris.Wrapf(err, "ergast: season %d", year)
	}
	races := resp.MRData.RaceTable.Races
	if races == nil {
		races = []Race{}
	}
	return races, nil
}

func (c *httpClient) RaceResults(ctx context.Context, year, round int) (*Race, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/%d/%d/results.json", year, round))
	if err != nil {
		return nil, eris.Wrapf(err, "ergast: results %d/%d", year, round)
	}
	if len(resp.MRData.RaceTable.Races) == 0 {
		return nil, nil
	}
	race := resp.MRData.RaceTable.Races[0]
	return &race, nil
}

func (c *httpClient) DriverStandings(ctx context.Context, year int) ([]DriverStanding, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/%d/driverStandings.json", year))
	if err != nil {
		return nil, eris.Wrapf(err, "ergast: driver standings %d", year)
	}
	lists := resp.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		return []DriverStanding{}, nil
	}
	// Without a round filter the API returns a single list for the latest round.
	return lists[len(lists)-1].DriverStandings, nil
}

func (c *httpClient) get(ctx context.Context, path string) (*Response, error) {
	u := fmt.Sprintf("%s%s?limit=%d", c.baseURL, path, pageLimit)
	return fetcher.GetJSON[Response](ctx, c.fetcher, u)
}
