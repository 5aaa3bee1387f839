package models

import (
	"encoding/json"
	"time"
)

// SimplifiedWeather is the flattened projection of an upstream current-weather payload.
// Every field is optional; nil means the upstream omitted it.
type SimplifiedWeather struct {
	City        *string  `json:"city"`
	Weather     *string  `json:"weather"`
	Description *string  `json:"description"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like"`
	Humidity    *int     `json:"humidity"`
	WindSpeed   *float64 `json:"wind_speed"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// WeatherRecord is a persisted weather snapshot. ID and CreatedAt are assigned by the store.
type WeatherRecord struct {
	ID          int64     `json:"id"`
	ZipCode     string    `json:"zipCode"`
	City        *string   `json:"city"`
	WeatherMain *string   `json:"weatherMain"`
	Description *string   `json:"description"`
	Temperature *float64  `json:"temperature"`
	FeelsLike   *float64  `json:"feelsLike"`
	Humidity    *int      `json:"humidity"`
	WindSpeed   *float64  `json:"windSpeed"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WeatherRecordInput holds caller-supplied fields for a new WeatherRecord.
type WeatherRecordInput struct {
	ZipCode     string   `json:"zipCode" validate:"required"`
	City        *string  `json:"city"`
	WeatherMain *string  `json:"weatherMain"`
	Description *string  `json:"description"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feelsLike"`
	Humidity    *int     `json:"humidity"`
	WindSpeed   *float64 `json:"windSpeed"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UnmarshalJSON accepts feels_like/feelsLike and wind_speed/windSpeed.
// When both spellings are sent the camelCase value is kept.
func (in *WeatherRecordInput) UnmarshalJSON(data []byte) error {
	type plain WeatherRecordInput
	var aux struct {
		plain
		FeelsLikeSnake *float64 `json:"feels_like"`
		WindSpeedSnake *float64 `json:"wind_speed"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*in = WeatherRecordInput(aux.plain)
	if in.FeelsLike == nil {
		in.FeelsLike = aux.FeelsLikeSnake
	}
	if in.WindSpeed == nil {
		in.WindSpeed = aux.WindSpeedSnake
	}
	return nil
}

// RecordInputFromWeather builds the input for persisting a fetched lookup.
func RecordInputFromWeather(zipCode string, w SimplifiedWeather) WeatherRecordInput {
	return WeatherRecordInput{
		ZipCode:     zipCode,
		City:        w.City,
		WeatherMain: w.Weather,
		Description: w.Description,
		Temperature: w.Temperature,
		FeelsLike:   w.FeelsLike,
		Humidity:    w.Humidity,
		WindSpeed:   w.WindSpeed,
		Latitude:    w.Latitude,
		Longitude:   w.Longitude,
	}
}

// LookupResult is the response body of a weather lookup.
type LookupResult struct {
	Latest  SimplifiedWeather `json:"latest"`
	History []WeatherRecord   `json:"history"`
}
