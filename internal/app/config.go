package app

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths     []string // hcl files or directories
	StatePath string   // optional yaml seed state
	// Sets are name=value overrides applied after the seed state. Values are
	// HCL expressions; anything that does not parse is taken as a string.
	Sets []string

	Rounds          int
	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	FeedURL       string
	FeedEvent     string
	FeedNamespace string
	FeedAckEvent  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one definition path is required")
	}
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	for _, s := range cfg.Sets {
		if name, _, ok := strings.Cut(s, "="); !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
	}
	return &cfg, nil
}
