// Package parser turns delimited probe text into ProbeRecords.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jengzang/tracemap-backend-go/internal/models"
)

// DefaultColumns is the positional layout used when the text has no header row.
// It matches the leading columns written by the geolocation step.
var DefaultColumns = []string{"hop", "protocol", "probe_index", "ip", "latitude", "longitude"}

var knownColumns = map[string]bool{
	"hop":         true,
	"protocol":    true,
	"probe_index": true,
	"ip":          true,
	"from":        true,
	"rtt":         true,
	"latitude":    true,
	"longitude":   true,
	"lat":         true,
	"lon":         true,
	"lng":         true,
}

var (
	latColumns = map[string]bool{"latitude": true, "lat": true}
	lonColumns = map[string]bool{"longitude": true, "lon": true, "lng": true}
)

// Parse reads raw text into probe records in row order.
// Data problems never fail the parse; they are reported as diagnostics.
func Parse(text string) ([]models.ProbeRecord, []models.Diagnostic) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader is Parse over an io.Reader
func ParseReader(r io.Reader) ([]models.ProbeRecord, []models.Diagnostic) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		records []models.ProbeRecord
		diags   []models.Diagnostic
		columns []string
		header  bool
		rows    int
	)

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.Line
			}
			diags = append(diags, models.Diagnostic{
				Kind:    models.DiagMalformedInput,
				Row:     line,
				Message: fmt.Sprintf("unreadable row dropped: %v", err),
			})
			continue
		}

		trimFields(fields)
		if blank(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows++

		if columns == nil {
			if isHeader(fields) {
				columns = make([]string, len(fields))
				for i, f := range fields {
					columns[i] = strings.ToLower(f)
				}
				header = true
				continue
			}
			columns = DefaultColumns
		}

		rec, diag := buildRecord(columns, fields, line)
		if diag != nil {
			diags = append(diags, *diag)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		msg := "no rows in input"
		if header {
			msg = "insufficient rows: header without data"
		} else if rows > 0 {
			msg = "no usable rows in input"
		}
		diags = append(diags, models.Diagnostic{Kind: models.DiagEmptyRoute, Message: msg})
	}

	return records, diags
}

// isHeader reports whether a row names at least one recognized column
func isHeader(fields []string) bool {
	for _, f := range fields {
		if knownColumns[strings.ToLower(f)] {
			return true
		}
	}
	return false
}

func buildRecord(columns, fields []string, line int) (models.ProbeRecord, *models.Diagnostic) {
	rec := models.ProbeRecord{
		Row:       line,
		Latitude:  math.NaN(),
		Longitude: math.NaN(),
		Extra:     make(map[string]string),
	}

	var diag *models.Diagnostic
	if len(fields) < len(columns) {
		diag = &models.Diagnostic{
			Kind:    models.DiagMalformedInput,
			Row:     line,
			Message: fmt.Sprintf("row has %d of %d columns, missing values left empty", len(fields), len(columns)),
		}
	}

	width := len(columns)
	if len(fields) > width {
		width = len(fields)
	}

	for i := 0; i < width; i++ {
		key := fmt.Sprintf("column_%d", i+1)
		if i < len(columns) && columns[i] != "" {
			key = columns[i]
		}
		value := ""
		if i < len(fields) {
			value = fields[i]
		}
		assign(&rec, key, value)
	}

	return rec, diag
}

func assign(rec *models.ProbeRecord, key, value string) {
	switch {
	case key == "hop":
		rec.HopRaw = value
		if n, err := strconv.Atoi(value); err == nil {
			rec.Hop = n
			rec.HopValid = true
		}
	case key == "protocol":
		rec.Protocol = value
	case key == "probe_index":
		if n, err := strconv.Atoi(value); err == nil {
			rec.ProbeIndex = n
		} else if value != "" {
			rec.Extra[key] = value
		}
	case key == "rtt":
		// NaN and Inf parse but cannot be summarized or encoded
		if v, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			rec.RTT = &v
		} else if value != "" {
			rec.Extra[key] = value
		}
	case latColumns[key]:
		rec.LatRaw = value
		rec.Latitude = parseCoord(value)
	case lonColumns[key]:
		rec.LonRaw = value
		rec.Longitude = parseCoord(value)
	default:
		rec.Extra[key] = value
	}
}

func parseCoord(value string) float64 {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func trimFields(fields []string) {
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
