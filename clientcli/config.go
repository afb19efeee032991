package clientcli

import (
	"fmt"
	"net/url"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:8000"

// Config holds the connection settings for a shelf server.
type Config struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Endpoint == "" {
		out.Endpoint = DefaultEndpoint
	}
	return &out
}

// Validate checks that Endpoint is an absolute http or https URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidEndpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%w: query and fragment are not allowed", ErrInvalidEndpoint)
	}
	return nil
}
