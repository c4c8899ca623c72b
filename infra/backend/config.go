package backend

import "fmt"

// Config defines how to reach the charging station backend.
type Config struct {
	// BaseURL is the root of the backend REST API, e.g. "http://station:8000/api".
	BaseURL string `json:"base_url"`
	// QueuePollSeconds is the refresh interval for queue status.
	QueuePollSeconds int `json:"queue_poll_seconds"`
	// ParamsPollSeconds is the refresh interval for system parameters,
	// which change rarely.
	ParamsPollSeconds int `json:"params_poll_seconds"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.QueuePollSeconds <= 0 {
		c.QueuePollSeconds = 15
	}
	if c.ParamsPollSeconds <= 0 {
		c.ParamsPollSeconds = 300
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	return nil
}
