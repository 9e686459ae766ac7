package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// NoDescription is reported when the payload carries no weather descriptions
const NoDescription = "No description"

// WeatherRecord represents current conditions for a city as reported by the weather API
type WeatherRecord struct {
	City               string
	TemperatureCelsius float64
	Description        string

	hasMain    bool
	hasWeather bool
}

// IsValid reports whether the city name, the temperature section and the
// description list were all present in the decoded payload.
func (w WeatherRecord) IsValid() bool {
	return w.City != "" && w.hasMain && w.hasWeather
}

// weatherPayload mirrors the upstream JSON. Sections are pointers so that an
// absent section can be told apart from one holding zero values.
type weatherPayload struct {
	Name *string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather *[]struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// DecodeWeatherRecord decodes an API response body into a WeatherRecord.
// It fails only when the body is not a JSON object of the expected shape;
// missing sections yield a record for which IsValid is false.
func DecodeWeatherRecord(data []byte) (WeatherRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return WeatherRecord{}, errors.New("empty response body")
	}
	if trimmed[0] != '{' {
		return WeatherRecord{}, fmt.Errorf("expected a JSON object, got %q", firstToken(trimmed))
	}

	var p weatherPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return WeatherRecord{}, err
	}

	return p.record(), nil
}

func (p weatherPayload) record() WeatherRecord {
	rec := WeatherRecord{Description: NoDescription}

	if p.Name != nil {
		rec.City = *p.Name
	}
	if p.Main != nil {
		rec.hasMain = true
		if p.Main.Temp != nil {
			rec.TemperatureCelsius = *p.Main.Temp
		}
	}
	if p.Weather != nil {
		rec.hasWeather = true
		if list := *p.Weather; len(list) > 0 {
			rec.Description = list[0].Description
		}
	}

	return rec
}

func firstToken(b []byte) string {
	if len(b) > 16 {
		return string(b[:16]) + "..."
	}
	return string(b)
}
