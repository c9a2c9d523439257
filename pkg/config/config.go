// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-xpbd/pkg/physics"
	"github.com/opd-ai/go-xpbd/pkg/validation"
)

// MinBucket is the smallest useful grid cell capacity: a cell holding a
// single id can never produce a pair.
const MinBucket = 2

// WorldConfig contains configuration for a simulated world
type WorldConfig struct {
	Physics    PhysicsConfig    `json:"physics" yaml:"physics"`
	Grid       GridConfig       `json:"grid" yaml:"grid"`
	Compliance ComplianceConfig `json:"compliance" yaml:"compliance"`
	Resting    RestingConfig    `json:"resting" yaml:"resting"`
}

// PhysicsConfig contains integration settings
type PhysicsConfig struct {
	GravityX     float32 `json:"gravityX" yaml:"gravityX"`
	GravityY     float32 `json:"gravityY" yaml:"gravityY"`
	Substeps     int     `json:"substeps" yaml:"substeps"`
	Damping      float32 `json:"damping" yaml:"damping"`
	GroundHeight float32 `json:"groundHeight" yaml:"groundHeight"`
}

// GridConfig contains the broad-phase grid dimensions
type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	Step   int `json:"step" yaml:"step"`
	Bucket int `json:"bucket" yaml:"bucket"`
}

// ComplianceConfig contains the inverse stiffness of each constraint kind.
// Zero is perfectly rigid.
type ComplianceConfig struct {
	Distance    float32 `json:"distance" yaml:"distance"`
	Ground      float32 `json:"ground" yaml:"ground"`
	Penetration float32 `json:"penetration" yaml:"penetration"`
}

// RestingConfig controls when bodies flagged for despawn are considered at rest
type RestingConfig struct {
	Speed   float32 `json:"speed" yaml:"speed"`
	Timeout float32 `json:"timeout" yaml:"timeout"` // seconds
}

// isYAML reports whether path should be read and written as YAML
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig loads a configuration from a file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *WorldConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a default world configuration
func DefaultConfig() *WorldConfig {
	opts := physics.DefaultOptions()
	return &WorldConfig{
		Physics: PhysicsConfig{
			GravityX:     opts.Gravity.X,
			GravityY:     opts.Gravity.Y,
			Substeps:     opts.Substeps,
			Damping:      opts.Damping,
			GroundHeight: 32,
		},
		Grid: GridConfig{
			Width:  opts.Grid.Width,
			Height: opts.Grid.Height,
			Step:   opts.Grid.Step,
			Bucket: opts.Grid.Bucket,
		},
		Compliance: ComplianceConfig{
			Distance:    0,
			Ground:      0,
			Penetration: opts.PenetrationCompliance,
		},
		Resting: RestingConfig{
			Speed:   0.5,
			Timeout: 2,
		},
	}
}

// Validate reports every invalid setting at once
func (c *WorldConfig) Validate() error {
	err := validation.All(
		validation.Finite("physics.gravityX", float64(c.Physics.GravityX)),
		validation.Finite("physics.gravityY", float64(c.Physics.GravityY)),
		validation.AtLeast("physics.substeps", c.Physics.Substeps, 1),
		validation.InRange("physics.damping", float64(c.Physics.Damping), 0, 1),
		validation.Finite("physics.groundHeight", float64(c.Physics.GroundHeight)),
		validation.AtLeast("grid.step", c.Grid.Step, physics.MinGridStep),
		validation.MultipleOf("grid.width", c.Grid.Width, c.Grid.Step),
		validation.MultipleOf("grid.height", c.Grid.Height, c.Grid.Step),
		validation.AtLeast("grid.bucket", c.Grid.Bucket, MinBucket),
		validation.NonNegative("compliance.distance", float64(c.Compliance.Distance)),
		validation.NonNegative("compliance.ground", float64(c.Compliance.Ground)),
		validation.NonNegative("compliance.penetration", float64(c.Compliance.Penetration)),
		validation.NonNegative("resting.speed", float64(c.Resting.Speed)),
		validation.Positive("resting.timeout", float64(c.Resting.Timeout)),
	)
	if err != nil {
		return fmt.Errorf("invalid world config: %w", err)
	}
	return nil
}

// PhysicsGrid converts the grid section into the physics representation
func (g GridConfig) PhysicsGrid() physics.GridConfig {
	return physics.GridConfig{Width: g.Width, Height: g.Height, Step: g.Step, Bucket: g.Bucket}
}

// SimulatorOptions converts the configuration into simulator options. Logger
// and event bus are left for the caller to attach.
func (c *WorldConfig) SimulatorOptions() physics.Options {
	return physics.Options{
		Gravity:               physics.Vec(c.Physics.GravityX, c.Physics.GravityY),
		Substeps:              c.Physics.Substeps,
		Damping:               c.Physics.Damping,
		PenetrationCompliance: c.Compliance.Penetration,
		Grid:                  c.Grid.PhysicsGrid(),
	}
}
