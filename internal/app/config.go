package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenarioPath string // hcl files

	LogFormat string
	LogLevel  string

	StatusPort int
	Workers    int
	Timesteps  int // 0 means use the scenario's run block
	PlanOnly   bool
	Progress   bool

	TraceExporter string
	TraceEndpoint string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenarioPath == "" {
		return nil, errors.New("ScenarioPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
