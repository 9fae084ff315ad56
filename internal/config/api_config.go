package config

import (
	"strings"
	"time"
)

type API struct {
	BaseURL      string        `env:"BASE_URL" envDefault:"http://127.0.0.1:8000"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
	DedupRefresh bool          `env:"DEDUP_REFRESH" envDefault:"false"`
}

var _ APIConfig = API{}

// GetBaseURL returns the backend base URL without a trailing slash (e.g., "http://127.0.0.1:8000")
func (a API) GetBaseURL() string {
	return strings.TrimRight(a.BaseURL, "/")
}

func (a API) GetTimeout() time.Duration {
	return a.Timeout
}

// GetDedupRefresh reports whether concurrent 401s share one refresh exchange
func (a API) GetDedupRefresh() bool {
	return a.DedupRefresh
}
