// Package render writes load results as terminal tables, JSON, CSV or XLSX.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/paddock/internal/format"
	"github.com/sells-group/paddock/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// Formats lists the accepted output encodings.
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatXLSX}

// ParseFormat validates an output encoding name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", eris.Errorf("render: unknown output format %q (want table, json, csv or xlsx)", s)
}

// Renderer writes views in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// New creates a Renderer writing to w.
func New(w io.Writer, f Format) *Renderer {
	if f == "" {
		f = FormatTable
	}
	return &Renderer{w: w, format: f}
}

// Sessions writes a season calendar.
func (r *Renderer) Sessions(sessions []model.Session) error {
	switch r.format {
	case FormatJSON:
		return r.json(sessions)
	case FormatCSV:
		recs := make([]sessionRecord, 0, len(sessions))
		for _, s := range sessions {
			recs = append(recs, newSessionRecord(s))
		}
		return writeCSV(r.w, recs)
	}
	return r.tabular(sessionsTable(sessions), "Sessions")
}

// Results writes a session classification.
func (r *Renderer) Results(res *model.SessionResult) error {
	switch r.format {
	case FormatJSON:
		return r.json(res)
	case FormatCSV:
		return writeCSV(r.w, res.Rows)
	case FormatXLSX:
		return writeXLSX(r.w, "Results", resultsTable(res))
	}
	if err := writeTable(r.w, resultsTable(res)); err != nil {
		return err
	}
	return r.notes(res)
}

// Latest writes the summary of the most recent session followed by its
// classification.
func (r *Renderer) Latest(res *model.SessionResult) error {
	switch r.format {
	case FormatJSON:
		return r.json(Summarize(res))
	case FormatCSV, FormatXLSX:
		return r.Results(res)
	}
	if err := writeTable(r.w, summaryTable(Summarize(res))); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.w); err != nil {
		return eris.Wrap(err, "render: write")
	}
	return r.Results(res)
}

// Standings writes the drivers' championship table.
func (r *Renderer) Standings(rows []model.Standing) error {
	switch r.format {
	case FormatJSON:
		return r.json(rows)
	case FormatCSV:
		return writeCSV(r.w, rows)
	}
	return r.tabular(standingsTable(rows), "Standings")
}

// Runs writes the run log.
func (r *Renderer) Runs(runs []model.Run) error {
	switch r.format {
	case FormatJSON:
		return r.json(runs)
	case FormatCSV:
		return writeCSV(r.w, runs)
	}
	return r.tabular(runsTable(runs), "Runs")
}

func (r *Renderer) tabular(t tabular, sheet string) error {
	if r.format == FormatXLSX {
		return writeXLSX(r.w, sheet, t)
	}
	return writeTable(r.w, t)
}

func (r *Renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "render: encode json")
}

func (r *Renderer) notes(res *model.SessionResult) error {
	var lines []string
	if res.Fastest != nil {
		lines = append(lines, fmt.Sprintf("Fastest lap: %s (%s)", res.Fastest.Time, res.Fastest.FullName))
	}
	for _, w := range res.Warnings {
		lines = append(lines, "warning: "+w)
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(r.w, l); err != nil {
			return eris.Wrap(err, "render: write")
		}
	}
	return nil
}

// Summary is the headline view of a session: conditions, podium, grid size,
// race distance and fastest lap.
type Summary struct {
	Session          model.Session        `json:"session"`
	TrackTemperature string               `json:"track_temperature"`
	AirTemperature   string               `json:"air_temperature"`
	Humidity         string               `json:"humidity"`
	Podium           []model.ResultRow    `json:"podium"`
	GridSize         int                  `json:"grid_size"`
	TotalLaps        string               `json:"total_laps"`
	FastestLap       string               `json:"fastest_lap"`
	FastestDriver    string               `json:"fastest_driver"`
	Result           *model.SessionResult `json:"result"`
}

// Summarize builds the headline view of res.
func Summarize(res *model.SessionResult) Summary {
	s := Summary{
		Session:          res.Session,
		TrackTemperature: format.Placeholder,
		AirTemperature:   format.Placeholder,
		Humidity:         format.Placeholder,
		Podium:           res.Podium(),
		GridSize:         len(res.Rows),
		TotalLaps:        format.Laps(res.TotalLaps),
		FastestLap:       format.Placeholder,
		FastestDriver:    format.Placeholder,
		Result:           res,
	}
	if w := res.Weather; w != nil {
		s.TrackTemperature = format.Temperature(w.TrackTemperature)
		s.AirTemperature = format.Temperature(w.AirTemperature)
		s.Humidity = format.Percent(w.Humidity)
	}
	if f := res.Fastest; f != nil {
		s.FastestLap = f.Time
		s.FastestDriver = f.FullName
	}
	return s
}
