// Package config loads runtime settings from a YAML file, with environment
// variable overrides for the values that differ per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration of the agent daemon.
type Settings struct {
	// Planner selects the reasoning backend: "fake" or "genkit".
	Planner string `yaml:"planner"`

	// KBPath points at the knowledge base JSON file.
	KBPath string `yaml:"kb_path"`

	// Input bounds.
	MaxInputLength int `yaml:"max_input_length"`

	// Loop bounds.
	MaxIterations    int           `yaml:"max_iterations"`
	MaxSteps         int           `yaml:"max_steps"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time"`

	// Retry policy for capability execution.
	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`

	// Plan cache.
	EnablePlanCache bool          `yaml:"enable_plan_cache"`
	PlanCacheTTL    time.Duration `yaml:"plan_cache_ttl"`

	// Telemetry.
	EnableTelemetry      bool `yaml:"enable_telemetry"`
	TelemetryBufferSize  int  `yaml:"telemetry_buffer_size"`
	TelemetryWorkerCount int  `yaml:"telemetry_worker_count"`
}

// Default returns the settings used when no file is present.
func Default() Settings {
	return Settings{
		Planner:              "fake",
		KBPath:               "data/kb.json",
		MaxInputLength:       10000,
		MaxIterations:        1,
		MaxSteps:             10,
		MaxExecutionTime:     time.Minute,
		RetryMaxAttempts:     1,
		RetryBaseDelay:       time.Second,
		RetryMaxDelay:        10 * time.Second,
		EnablePlanCache:      false,
		PlanCacheTTL:         5 * time.Minute,
		EnableTelemetry:      true,
		TelemetryBufferSize:  100,
		TelemetryWorkerCount: 5,
	}
}

// Load reads settings from path, layered over the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Planner != "fake" && s.Planner != "genkit" {
		return fmt.Errorf("unknown planner %q", s.Planner)
	}
	if s.MaxInputLength <= 0 {
		return fmt.Errorf("max_input_length must be positive, got %d", s.MaxInputLength)
	}
	if s.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", s.MaxIterations)
	}
	if s.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1, got %d", s.RetryMaxAttempts)
	}
	return nil
}
