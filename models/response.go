package models

// HealthCheckResponse is returned by the health check
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
