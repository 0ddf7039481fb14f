package domain

import "time"

// DefaultBaseURL is used when neither the config file nor the environment set one.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTokenEnv names the environment variable holding the bearer token.
const DefaultTokenEnv = "ESTATEDESK_TOKEN"

// Config is the resolved application configuration.
type Config struct {
	API   APIConfig
	Views map[string]ViewConfig
	Log   LogConfig
}

// APIConfig configures the backend transport.
type APIConfig struct {
	BaseURL string
	// Timeout bounds a single HTTP exchange. Zero disables it.
	Timeout  time.Duration
	TokenEnv string
	Token    string
}

// ViewConfig overrides catalog defaults for one view.
type ViewConfig struct {
	PageSize int
}

// LogConfig controls the logger adapter.
type LogConfig struct {
	JSON    bool
	Verbose bool
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:  DefaultBaseURL,
			TokenEnv: DefaultTokenEnv,
		},
		Views: map[string]ViewConfig{},
	}
}

// PageSize returns the configured page size of a view, or fallback.
func (c *Config) PageSize(view string, fallback int) int {
	if c == nil {
		return fallback
	}
	if v, ok := c.Views[view]; ok && v.PageSize > 0 {
		return v.PageSize
	}
	return fallback
}
