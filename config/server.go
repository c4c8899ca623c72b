package config

// ServerConfig defines the API listener settings.
type ServerConfig struct {
	// Address is the listen address for the estimator API.
	Address string `json:"address"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// EstimatorConfig tunes the estimation engine.
type EstimatorConfig struct {
	// UseConfiguredPeriods switches tariff classification to the backend's
	// configured period boundaries. Leave false to match the billing
	// path's fixed hours.
	UseConfiguredPeriods bool `json:"use_configured_periods"`
}
