// Package openf1 provides a client for the OpenF1 live timing API.
package openf1

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/fetcher"
)

// DefaultBaseURL is the public OpenF1 endpoint.
const DefaultBaseURL = "https://api.openf1.org/v1"

// Client defines the OpenF1 operations.
type Client interface {
	// Sessions lists sessions of a year, filtered by session type when
	// sessionType is non-empty.
	Sessions(ctx context.Context, year int, sessionType string) ([]Session, error)
	// Drivers lists the drivers entered in a session.
	Drivers(ctx context.Context, sessionKey int) ([]Driver, error)
	// Positions returns position samples for a session.
	Positions(ctx context.Context, sessionKey int, filters ...DateFilter) ([]Position, error)
	// Weather returns weather samples for a session.
	Weather(ctx context.Context, sessionKey int) ([]Weather, error)
	// Laps returns per-driver laps for a session.
	Laps(ctx context.Context, sessionKey int) ([]Lap, error)
}

// Session is an OpenF1 session record.
type Session struct {
	SessionKey       int    `json:"session_key"`
	MeetingKey       int    `json:"meeting_key"`
	SessionName      string `json:"session_name"`
	SessionType      string `json:"session_type"`
	CircuitShortName string `json:"circuit_short_name"`
	CountryName      string `json:"country_name"`
	CountryCode      string `json:"country_code"`
	Location         string `json:"location"`
	DateStart        string `json:"date_start"`
	DateEnd          string `json:"date_end"`
	Year             int    `json:"year"`
}

// Driver is an OpenF1 driver record.
type Driver struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
	HeadshotURL  string `json:"headshot_url"`
	CountryCode  string `json:"country_code"`
}

// Position is a single position sample.
type Position struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Date         string `json:"date"`
}

// Weather is a single weather sample.
type Weather struct {
	SessionKey       int     `json:"session_key"`
	Date             string  `json:"date"`
	AirTemperature   float64 `json:"air_temperature"`
	TrackTemperature float64 `json:"track_temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	WindDirection    float64 `json:"wind_direction"`
	WindSpeed        float64 `json:"wind_speed"`
}

// Lap is a single completed lap. LapDuration is nil for laps without a
// valid time.
type Lap struct {
	SessionKey   int      `json:"session_key"`
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	LapDuration  *float64 `json:"lap_duration"`
	IsPitOutLap  bool     `json:"is_pit_out_lap"`
	DateStart    string   `json:"date_start"`
}

// DateFilter restricts position samples by timestamp, e.g. {">=", "2024-03-02T15:00:00"}.
type DateFilter struct {
	Op    string
	Value string
}

func (f DateFilter) valid() bool {
	switch f.Op {
	case ">", ">=", "<", "<=":
		return f.Value != ""
	}
	return false
}

// Option configures the OpenF1 client.
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

// NewClient creates a new OpenF1 client.
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

func (c *httpClient) Sessions(ctx context.Context, year int, sessionType string) ([]Session, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	if sessionType != "" {
		q.Set("session_type", sessionType)
	}
	out, err := list[Session](ctx, c, "/sessions", q.Encode())
	if err != nil {
		return nil, eris.Wrapf(err, "openf1: sessions %d %s", year, sessionType)
	}
	return out, nil
}

func (c *httpClient) Drivers(ctx context.Context, sessionKey int) ([]Driver, error) {
	out, err := list[Driver](ctx, c, "/drivers", sessionQuery(sessionKey))
	if err != nil {
		return nil, eris.Wrapf(err, "openf1: drivers %d", sessionKey)
	}
	return out, nil
}

func (c *httpClient) Positions(ctx context.Context, sessionKey int, filters ...DateFilter) ([]Position, error) {
	// OpenF1 takes the comparison operator inside the key (date>=...), which
	// url.Values would escape, so filters are appended verbatim.
	raw := sessionQuery(sessionKey)
	for _, f := range filters {
		if !f.valid() {
			return nil, eris.Errorf("openf1: invalid date filter %q %q", f.Op, f.Value)
		}
		raw += "&date" + f.Op + url.QueryEscape(f.Value)
	}
	out, err := list[Position](ctx, c, "/position", raw)
	if err != nil {
		return nil, eris.Wrapf(err, "openf1: positions %d", sessionKey)
	}
	return out, nil
}

func (c *httpClient) Weather(ctx context.Context, sessionKey int) ([]Weather, error) {
	out, err := list[Weather](ctx, c, "/weather", sessionQuery(sessionKey))
	if err != nil {
		return nil, eris.Wrapf(err, "openf1: weather %d", sessionKey)
	}
	return out, nil
}

func (c *httpClient) Laps(ctx context.Context, sessionKey int) ([]Lap, error) {
	out, err := list[Lap](ctx, c, "/laps", sessionQuery(sessionKey))
	if err != nil {
		return nil, eris.Wrapf(err, "openf1: laps %d", sessionKey)
	}
	return out, nil
}

func sessionQuery(key int) string {
	return "session_key=" + strconv.Itoa(key)
}

// list fetches an array endpoint. OpenF1 answers 404 when a filter matches
// nothing, which is reported as an empty slice.
func list[T any](ctx context.Context, c *httpClient, path, rawQuery string) ([]T, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, rawQuery)
	out, err := fetcher.GetArray[T](ctx, c.fetcher, u)
	if err != nil {
		if fetcher.IsNotFound(err) {
			return []T{}, nil
		}
		return nil, err
	}
	return out, nil
}
