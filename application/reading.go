package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldPressure    = "pressure"
	FieldLuminosity  = "luminosity"
)

// Reading is one sensor sample. Units are °C, %, hPa and lx.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Luminosity  float64 `json:"luminosity"`
}

// ReadingDisplay holds the strings shown on the home screen.
type ReadingDisplay struct {
	Temperature string
	Humidity    string
	Pressure    string
	Luminosity  string
}

// DisplayReading formats r for the home screen, or the "--" placeholders when
// no reading has been received yet.
func DisplayReading(r *Reading) ReadingDisplay {
	if r == nil {
		return ReadingDisplay{
			Temperature: "-- °C",
			Humidity:    "-- %",
			Pressure:    "-- hPa",
			Luminosity:  "-- lx",
		}
	}
	return ReadingDisplay{
		Temperature: formatValue(r.Temperature) + " °C",
		Humidity:    formatValue(r.Humidity) + " %",
		Pressure:    formatValue(r.Pressure) + " hPa",
		Luminosity:  formatValue(r.Luminosity) + " lx",
	}
}

// formatValue always keeps a fractional part, so 21 renders as "21.0".
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// Project parses a telemetry payload into a Reading. Every failure wraps
// ErrMalformedPayload and the caller is expected to drop the message.
func Project(payload []byte) (Reading, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return Reading{}, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}

	var r Reading
	targets := []struct {
		name string
		dst  *float64
	}{
		{FieldTemperature, &r.Temperature},
		{FieldHumidity, &r.Humidity},
		{FieldPressure, &r.Pressure},
		{FieldLuminosity, &r.Luminosity},
	}
	for _, target := range targets {
		raw, ok := fields[target.name]
		if !ok {
			return Reading{}, fmt.Errorf("%w: missing field %q", ErrMalformedPayload, target.name)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return Reading{}, fmt.Errorf("%w: field %q is null", ErrMalformedPayload, target.name)
		}
		if err := json.Unmarshal(raw, target.dst); err != nil {
			return Reading{}, fmt.Errorf("%w: field %q is not a number", ErrMalformedPayload, target.name)
		}
	}
	return r, nil
}
