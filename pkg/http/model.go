package http

// HealthResponse is served by the liveness and readiness probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports the state of one dependency. A nil error is healthy.
type HealthCheck struct {
	Name  string
	Check func() error
}
