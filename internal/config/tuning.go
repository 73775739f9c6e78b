package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TuningConfig represents the root configuration for tuning parameters.
// The schema matches the /api/config endpoint so the same JSON can be used
// for both startup configuration and inspection at runtime.
type TuningConfig struct {
	// Mapping params
	MaxRangeCM     *float64 `json:"max_range_cm,omitempty"`
	InitialX       *float64 `json:"initial_x,omitempty"`
	InitialY       *float64 `json:"initial_y,omitempty"`
	InitialHeading *float64 `json:"initial_heading,omitempty"`

	// Transport params
	SerialBaud     *int    `json:"serial_baud,omitempty"`
	ReadBufferSize *int    `json:"read_buffer_size,omitempty"`
	PollInterval   *string `json:"poll_interval,omitempty"` // duration string like "250ms"

	// Command params
	MoveTokenDelay *string `json:"move_token_delay,omitempty"` // duration string like "150ms"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// The Get* methods supply defaults for nil fields.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxRangeCM != nil && *c.MaxRangeCM <= 0 {
		return fmt.Errorf("max_range_cm must be positive, got %f", *c.MaxRangeCM)
	}

	if c.SerialBaud != nil && *c.SerialBaud <= 0 {
		return fmt.Errorf("serial_baud must be positive, got %d", *c.SerialBaud)
	}

	if c.ReadBufferSize != nil && *c.ReadBufferSize <= 0 {
		return fmt.Errorf("read_buffer_size must be positive, got %d", *c.ReadBufferSize)
	}

	if c.PollInterval != nil && *c.PollInterval != "" {
		if _, err := time.ParseDuration(*c.PollInterval); err != nil {
			return fmt.Errorf("invalid poll_interval '%s': %w", *c.PollInterval, err)
		}
	}

	if c.MoveTokenDelay != nil && *c.MoveTokenDelay != "" {
		if _, err := time.ParseDuration(*c.MoveTokenDelay); err != nil {
			return fmt.Errorf("invalid move_token_delay '%s': %w", *c.MoveTokenDelay, err)
		}
	}

	return nil
}

// GetMaxRangeCM returns the max_range_cm value or the default.
func (c *TuningConfig) GetMaxRangeCM() float64 {
	if c.MaxRangeCM == nil {
		return 250.0 // default: sensor range gate
	}
	return *c.MaxRangeCM
}

// GetInitialX returns the initial_x value or the default.
func (c *TuningConfig) GetInitialX() float64 {
	if c.InitialX == nil {
		return 0
	}
	return *c.InitialX
}

// GetInitialY returns the initial_y value or the default.
func (c *TuningConfig) GetInitialY() float64 {
	if c.InitialY == nil {
		return 0
	}
	return *c.InitialY
}

// GetInitialHeading returns the initial_heading value or the default.
func (c *TuningConfig) GetInitialHeading() float64 {
	if c.InitialHeading == nil {
		return 90 // default: robot boots facing "up"
	}
	return *c.InitialHeading
}

// GetSerialBaud returns the serial_baud value or the default.
func (c *TuningConfig) GetSerialBaud() int {
	if c.SerialBaud == nil {
		return 115200
	}
	return *c.SerialBaud
}

// GetReadBufferSize returns the read_buffer_size value or the default.
func (c *TuningConfig) GetReadBufferSize() int {
	if c.ReadBufferSize == nil {
		return 4096
	}
	return *c.ReadBufferSize
}

// GetPollInterval parses and returns the PollInterval as a time.Duration.
func (c *TuningConfig) GetPollInterval() time.Duration {
	if c.PollInterval == nil || *c.PollInterval == "" {
		return 250 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.PollInterval)
	if err != nil {
		return 250 * time.Millisecond // default on parse error
	}
	return d
}

// GetMoveTokenDelay parses and returns the MoveTokenDelay as a time.Duration.
func (c *TuningConfig) GetMoveTokenDelay() time.Duration {
	if c.MoveTokenDelay == nil || *c.MoveTokenDelay == "" {
		return 150 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.MoveTokenDelay)
	if err != nil {
		return 150 * time.Millisecond // default on parse error
	}
	return d
}
