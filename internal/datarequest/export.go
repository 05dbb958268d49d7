package datarequest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stationwatch/stationwatch/internal/weather"
)

// ErrExportNotFound is returned when a request has no rendered export yet.
var ErrExportNotFound = errors.New("export not found")

// Export is the rendered artifact fulfilling a data request.
type Export struct {
	RequestID   string
	ContentType string
	Filename    string
	Body        []byte
	CreatedAt   time.Time
}

// parameterValue extracts the value of a form parameter from a reading.
var parameterValue = map[string]func(*weather.Reading) float64{
	"temperature":   func(r *weather.Reading) float64 { return r.Temperature },
	"humidity":      func(r *weather.Reading) float64 { return r.Humidity },
	"airPressure":   func(r *weather.Reading) float64 { return r.AirPressure },
	"WindSpeedAvg":  func(r *weather.Reading) float64 { return r.WindSpeedAvg },
	"windDirection": func(r *weather.Reading) float64 { return r.WindDirection },
	"rainfall1h":    func(r *weather.Reading) float64 { return r.Rainfall1h },
	"rainfall24h":   func(r *weather.Reading) float64 { return r.Rainfall24h },
}

// RenderExport renders the readings selected for a request into its
// requested format. Columns follow the order of the request's parameters.
func RenderExport(req *Request, readings []weather.Reading) (*Export, error) {
	var (
		body        []byte
		contentType string
		ext         string
		err         error
	)

	switch req.Format {
	case FormatJSON:
		body, err = renderJSON(req.Parameters, readings)
		contentType = "application/json"
		ext = "json"
	case FormatCSV:
		body, err = renderCSV(req.Parameters, readings)
		contentType = "text/csv"
		ext = "csv"
	case FormatExcel:
		// Excel exports reuse the CSV rendering under the vnd.ms-excel
		// media type so they open directly in a spreadsheet.
		body, err = renderCSV(req.Parameters, readings)
		contentType = "application/vnd.ms-excel"
		ext = "xls"
	default:
		return nil, fmt.Errorf("unsupported export format %q", req.Format)
	}
	if err != nil {
		return nil, err
	}

	return &Export{
		RequestID:   req.ID,
		ContentType: contentType,
		Filename: fmt.Sprintf("station-%s-%s-%s.%s",
			req.StationID,
			req.StartDate.Format("2006-01-02"),
			req.EndDate.Format("2006-01-02"),
			ext),
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}

func renderCSV(parameters []string, readings []weather.Reading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"observedAt"}, parameters...)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range readings {
		row := make([]string, 0, len(header))
		row = append(row, readings[i].ObservedAt.Format(time.RFC3339))
		for _, p := range parameters {
			row = append(row, strconv.FormatFloat(parameterValue[p](&readings[i]), 'f', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(parameters []string, readings []weather.Reading) ([]byte, error) {
	rows := make([]map[string]interface{}, 0, len(readings))
	for i := range readings {
		row := make(map[string]interface{}, len(parameters)+1)
		row["observedAt"] = readings[i].ObservedAt.Format(time.RFC3339)
		for _, p := range parameters {
			row[p] = parameterValue[p](&readings[i])
		}
		rows = append(rows, row)
	}
	return json.Marshal(rows)
}
