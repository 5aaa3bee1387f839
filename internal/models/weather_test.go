package models

import (
	"encoding/json"
	"testing"
)

// TestWeatherRecordInput_DualSpellings verifies that feels-like and wind speed decode
// to the same field regardless of snake_case or camelCase spelling.
func TestWeatherRecordInput_DualSpellings(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantFeelsLike float64
		wantWindSpeed float64
	}{
		{"snake case", `{"zipCode":"10001","feels_like":71.5,"wind_speed":4.2}`, 71.5, 4.2},
		{"camel case", `{"zipCode":"10001","feelsLike":71.5,"windSpeed":4.2}`, 71.5, 4.2},
		{"mixed", `{"zipCode":"10001","feels_like":71.5,"windSpeed":4.2}`, 71.5, 4.2},
		{"camel wins when both sent", `{"zipCode":"10001","feels_like":1,"feelsLike":71.5,"wind_speed":2,"windSpeed":4.2}`, 71.5, 4.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in WeatherRecordInput
			if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if in.ZipCode != "10001" {
				t.Errorf("ZipCode = %q, want 10001", in.ZipCode)
			}
			if in.FeelsLike == nil || *in.FeelsLike != tt.wantFeelsLike {
				t.Errorf("FeelsLike = %v, want %v", in.FeelsLike, tt.wantFeelsLike)
			}
			if in.WindSpeed == nil || *in.WindSpeed != tt.wantWindSpeed {
				t.Errorf("WindSpeed = %v, want %v", in.WindSpeed, tt.wantWindSpeed)
			}
		})
	}
}

func TestWeatherRecordInput_OnlyZipCode(t *testing.T) {
	var in WeatherRecordInput
	if err := json.Unmarshal([]byte(`{"zipCode":"94103"}`), &in); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if in.ZipCode != "94103" {
		t.Errorf("ZipCode = %q, want 94103", in.ZipCode)
	}
	if in.City != nil || in.WeatherMain != nil || in.Description != nil || in.Temperature != nil ||
		in.FeelsLike != nil || in.Humidity != nil || in.WindSpeed != nil || in.Latitude != nil || in.Longitude != nil {
		t.Errorf("optional fields should be nil, got %+v", in)
	}
}

func TestWeatherRecordInput_MalformedJSON(t *testing.T) {
	var in WeatherRecordInput
	if err := json.Unmarshal([]byte(`{"zipCode":`), &in); err == nil {
		t.Fatal("Unmarshal() expected error for malformed JSON, got nil")
	}
}

func TestRecordInputFromWeather(t *testing.T) {
	city, main := "Springfield", "Clouds"
	temp := 58.1
	w := SimplifiedWeather{City: &city, Weather: &main, Temperature: &temp}

	in := RecordInputFromWeather("62701", w)

	if in.ZipCode != "62701" {
		t.Errorf("ZipCode = %q, want 62701", in.ZipCode)
	}
	if in.WeatherMain == nil || *in.WeatherMain != "Clouds" {
		t.Errorf("WeatherMain = %v, want Clouds", in.WeatherMain)
	}
	if in.Temperature == nil || *in.Temperature != temp {
		t.Errorf("Temperature = %v, want %v", in.Temperature, temp)
	}
	if in.Humidity != nil {
		t.Errorf("Humidity = %v, want nil", in.Humidity)
	}
}
