package model

// AddScoreRequest represents the body of a score submission
type AddScoreRequest struct {
	PlayerName     string  `json:"player_name" validate:"required,max=64"`
	Score          int     `json:"score"`
	LevelName      string  `json:"level_name" validate:"max=64"`
	CompletionTime float64 `json:"completion_time" validate:"gte=0"`
}

// ScoresResponse represents a list of high scores
type ScoresResponse struct {
	Results []HighScore `json:"results"`
	Count   int         `json:"count"`
}

// CountResponse represents the total number of stored scores
type CountResponse struct {
	Count int64 `json:"count"`
}

// WeatherResponse represents current weather for a city
type WeatherResponse struct {
	City               string  `json:"city"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	Description        string  `json:"description"`
	Valid              bool    `json:"valid"`
}

// NewWeatherResponse converts a decoded record into its response form
func NewWeatherResponse(rec WeatherRecord) WeatherResponse {
	return WeatherResponse{
		City:               rec.City,
		TemperatureCelsius: rec.TemperatureCelsius,
		Description:        rec.Description,
		Valid:              rec.IsValid(),
	}
}

// ErrorResponse is returned with every non-2xx API response
type ErrorResponse struct {
	Error string `json:"error"`
}
