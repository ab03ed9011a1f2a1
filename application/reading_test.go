package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	r, err := Project([]byte(`{"temperature": 21.5, "humidity": 48.25, "pressure": 1013, "luminosity": 0.001}`))
	require.NoError(t, err)
	assert.Equal(t, Reading{Temperature: 21.5, Humidity: 48.25, Pressure: 1013, Luminosity: 0.001}, r)
}

func TestProject_ExtraFieldsIgnored(t *testing.T) {
	r, err := Project([]byte(`{"temperature": -4, "humidity": 0, "pressure": 990.5, "luminosity": 12000, "room": "kitchen"}`))
	require.NoError(t, err)
	assert.Equal(t, Reading{Temperature: -4, Humidity: 0, Pressure: 990.5, Luminosity: 12000}, r)
}

func TestProject_Dropped(t *testing.T) {
	payloads := map[string]string{
		"Empty":             ``,
		"NotJSON":           `temperature=21`,
		"Array":             `[21, 40, 1000, 300]`,
		"Null":              `null`,
		"Truncated":         `{"temperature": 21.5, "humidity": 4`,
		"MissingLuminosity": `{"temperature": 21.5, "humidity": 40, "pressure": 1000}`,
		"StringValue":       `{"temperature": "21.5", "humidity": 40, "pressure": 1000, "luminosity": 300}`,
		"NullValue":         `{"temperature": 21.5, "humidity": null, "pressure": 1000, "luminosity": 300}`,
		"BoolValue":         `{"temperature": 21.5, "humidity": 40, "pressure": true, "luminosity": 300}`,
		"NestedValue":       `{"temperature": 21.5, "humidity": 40, "pressure": 1000, "luminosity": {"value": 300}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			r, err := Project([]byte(payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Equal(t, Reading{}, r)
		})
	}
}

func TestDisplayReading(t *testing.T) {
	d := DisplayReading(nil)
	assert.Equal(t, ReadingDisplay{
		Temperature: "-- °C",
		Humidity:    "-- %",
		Pressure:    "-- hPa",
		Luminosity:  "-- lx",
	}, d)

	d = DisplayReading(&Reading{Temperature: 21, Humidity: 48.25, Pressure: 1013.2, Luminosity: -0.5})
	assert.Equal(t, ReadingDisplay{
		Temperature: "21.0 °C",
		Humidity:    "48.25 %",
		Pressure:    "1013.2 hPa",
		Luminosity:  "-0.5 lx",
	}, d)
}
