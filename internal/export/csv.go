// Package export turns provider payloads into downloadable CSV and keeps the
// rendered exports in memory until they are fetched or expire.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/fleveque/weather-query-service/internal/model"
)

// WriteCSV flattens a provider payload into delimited text. Only the first
// feature is used — both upstreams return a single feature for point queries.
// Column order is timestamp, longitude, latitude, then the parameter names of
// the first timestamp's value map in lexical order, so the same payload always
// renders byte-identically.
//
// An empty feature list renders as nothing at all: "no data found" is not an
// error here, the caller serves an empty file.
func WriteCSV(payload *model.ConditionsPayload) ([]byte, error) {
	if payload == nil || len(payload.Features) == 0 {
		return nil, nil
	}

	feature := payload.Features[0]

	var lon, lat float64
	if len(feature.Geometry.Coordinates) >= 2 {
		lon = feature.Geometry.Coordinates[0]
		lat = feature.Geometry.Coordinates[1]
	}

	// Timestamps sorted chronologically. ISO 8601 strings sort the same
	// lexically, which also covers the month-day climatology format.
	timestamps := make([]string, 0, len(feature.Properties))
	for ts := range feature.Properties {
		timestamps = append(timestamps, ts)
	}
	sort.Strings(timestamps)

	if len(timestamps) == 0 {
		return nil, nil
	}

	// Column set comes from the first timestamp's record.
	columns := make([]string, 0, len(feature.Properties[timestamps[0]]))
	for name := range feature.Properties[timestamps[0]] {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"timestamp", "longitude", "latitude"}, columns...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, ts := range timestamps {
		row := []string{
			ts,
			strconv.FormatFloat(lon, 'f', -1, 64),
			strconv.FormatFloat(lat, 'f', -1, 64),
		}
		values := feature.Properties[ts]
		for _, col := range columns {
			row = append(row, formatValue(values[col]))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// formatValue renders one cell. JSON numbers decode as float64; everything
// else falls back to fmt. A timestamp missing a parameter renders as an empty
// cell rather than dropping the row.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
