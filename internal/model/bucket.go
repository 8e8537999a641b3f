package model

// TimeBucket is one fixed-width window of the event-count series.
type TimeBucket struct {
	WindowStart int64   `json:"window_start"`
	Count       int     `json:"count"`
	RollingMean float64 `json:"rolling_mean"`
	IsAnomaly   bool    `json:"is_anomaly"`
}
