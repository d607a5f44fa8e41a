package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fleveque/weather-query-service/internal/model"
)

func samplePayload() *model.ConditionsPayload {
	return &model.ConditionsPayload{
		Type: "FeatureCollection",
		Features: []model.Feature{
			{
				Type: "Feature",
				Geometry: model.Geometry{
					Type:        "Point",
					Coordinates: []float64{-87.6298, 41.8781},
				},
				Properties: map[string]map[string]any{
					"2024-06-02T12:00:00Z": {
						"airTemp":   21.5,
						"windSpeed": 3.2,
					},
					"2024-06-02T06:00:00Z": {
						"airTemp":   18.0,
						"windSpeed": 2.1,
					},
				},
			},
		},
	}
}

func TestWriteCSV_ColumnOrder(t *testing.T) {
	data, err := WriteCSV(samplePayload())
	if err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}

	if lines[0] != "timestamp,longitude,latitude,airTemp,windSpeed" {
		t.Errorf("unexpected header: %s", lines[0])
	}

	// Rows come out in chronological order regardless of map iteration.
	if !strings.HasPrefix(lines[1], "2024-06-02T06:00:00Z,") {
		t.Errorf("expected earliest timestamp first, got: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2024-06-02T12:00:00Z,") {
		t.Errorf("expected latest timestamp last, got: %s", lines[2])
	}

	if lines[1] != "2024-06-02T06:00:00Z,-87.6298,41.8781,18,2.1" {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

func TestWriteCSV_Idempotent(t *testing.T) {
	payload := samplePayload()

	first, err := WriteCSV(payload)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := WriteCSV(payload)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("expected byte-identical output for the same payload")
	}
}

func TestWriteCSV_EmptyFeatures(t *testing.T) {
	data, err := WriteCSV(&model.ConditionsPayload{Type: "FeatureCollection"})
	if err != nil {
		t.Fatalf("empty payload should not error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty output, got %q", data)
	}
}

func TestWriteCSV_NilPayload(t *testing.T) {
	data, err := WriteCSV(nil)
	if err != nil {
		t.Fatalf("nil payload should not error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty output, got %q", data)
	}
}

func TestWriteCSV_MissingParameterRendersEmptyCell(t *testing.T) {
	payload := samplePayload()
	// Drop windSpeed from the later timestamp; column set still comes from
	// the first timestamp's record.
	delete(payload.Features[0].Properties["2024-06-02T12:00:00Z"], "windSpeed")

	data, err := WriteCSV(payload)
	if err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[2] != "2024-06-02T12:00:00Z,-87.6298,41.8781,21.5," {
		t.Errorf("expected empty trailing cell, got: %s", lines[2])
	}
}
