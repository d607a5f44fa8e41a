package model

import "testing"

func TestValidKind(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"forecast", true},
		{"climatology", true},
		{"", false},
		{"Forecast", false},
		{"historical", false},
	}

	for _, tc := range cases {
		if got := ValidKind(tc.in); got != tc.want {
			t.Errorf("ValidKind(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestAllowedParameters(t *testing.T) {
	if got := len(AllowedParameters(KindForecast)); got != 7 {
		t.Errorf("expected 7 forecast parameters, got %d", got)
	}
	if got := len(AllowedParameters(KindClimatology)); got != 7 {
		t.Errorf("expected 7 climatology parameters, got %d", got)
	}

	// The two lists must not overlap — a parameter identifies its API.
	forecast := make(map[string]struct{})
	for _, name := range ForecastParameters {
		forecast[name] = struct{}{}
	}
	for _, name := range ClimatologyParameters {
		if _, ok := forecast[name]; ok {
			t.Errorf("parameter %s appears in both allow-lists", name)
		}
	}
}
