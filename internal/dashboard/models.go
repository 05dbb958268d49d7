// Package dashboard is a typed client for the station dashboard API.
// Each resource can be watched through a polling controller so callers
// get stale-while-revalidate semantics without managing timers.
package dashboard

// WeatherReading is the live reading returned by /api/weather.
type WeatherReading struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	AirPressure   float64 `json:"airPressure"`
	WindSpeedAvg  float64 `json:"WindSpeedAvg"`
	WindDirection float64 `json:"windDirection"`
	Rainfall1h    float64 `json:"rainfall1h"`
	Rainfall24h   float64 `json:"rainfall24h"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
}

// HistoricalPoint is one sample in a historical series.
type HistoricalPoint struct {
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	AirPressure  float64 `json:"airPressure"`
	WindSpeedAvg float64 `json:"WindSpeedAvg"`
	Rainfall1h   float64 `json:"rainfall1h"`
	Rainfall24h  float64 `json:"rainfall24h"`
}

// HistoricalData is the response of /api/historical-data.
type HistoricalData struct {
	Data []HistoricalPoint `json:"data"`
}

// RiverData is the response of /api/river-data.
type RiverData struct {
	CurrentWaterLevel float64   `json:"currentWaterLevel"`
	CurrentAlert      string    `json:"currentAlert"`
	WaterLevelTime    string    `json:"waterLevelTime"`
	Forecast          []float64 `json:"forecast"`
}

// DataRequestForm is the body of POST /api/request-data.
type DataRequestForm struct {
	Email        string   `json:"email"`
	Organization string   `json:"organization"`
	Purpose      string   `json:"purpose"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	StationID    string   `json:"stationId"`
	DataFormat   string   `json:"dataFormat"`
	Parameters   []string `json:"parameters"`
}
