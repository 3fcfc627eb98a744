package render

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/paddock/internal/model"
)

type sessionRecord struct {
	Round    int       `csv:"round"`
	Key      int       `csv:"session_key"`
	Name     string    `csv:"session_name"`
	Type     string    `csv:"session_type"`
	Circuit  string    `csv:"circuit"`
	Location string    `csv:"location"`
	Country  string    `csv:"country"`
	Start    time.Time `csv:"date_start"`
	Source   string    `csv:"source"`
}

func newSessionRecord(s model.Session) sessionRecord {
	return sessionRecord{
		Round:    s.Round,
		Key:      s.Key,
		Name:     s.Name,
		Type:     string(s.Type),
		Circuit:  s.Circuit,
		Location: s.Location,
		Country:  s.Country,
		Start:    s.Start,
		Source:   string(s.Source),
	}
}

// writeCSV encodes a slice of tagged structs with a header row. An empty
// slice still produces the header.
func writeCSV[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return eris.Wrap(err, "render: csv header")
		}
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "render: csv encode")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "render: csv flush")
}

func writeXLSX(w io.Writer, sheetName string, t tabular) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "render: xlsx add sheet")
	}
	if len(t.header) > 0 {
		row := sheet.AddRow()
		for _, h := range t.header {
			row.AddCell().SetString(h)
		}
	}
	for _, r := range t.rows {
		row := sheet.AddRow()
		for _, v := range r {
			cell := row.AddCell()
			switch x := v.(type) {
			case int:
				cell.SetInt(x)
			case float64:
				cell.SetFloat(x)
			case string:
				cell.SetString(x)
			default:
				cell.SetValue(x)
			}
		}
	}
	return eris.Wrap(f.Write(w), "render: xlsx write")
}
