// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvGravityX     = "XPBD_GRAVITY_X"
	EnvGravityY     = "XPBD_GRAVITY_Y"
	EnvSubsteps     = "XPBD_SUBSTEPS"
	EnvDamping      = "XPBD_DAMPING"
	EnvGridWidth    = "XPBD_GRID_WIDTH"
	EnvGridHeight   = "XPBD_GRID_HEIGHT"
	EnvGridStep     = "XPBD_GRID_STEP"
	EnvGridBucket   = "XPBD_GRID_BUCKET"
	EnvGroundHeight = "XPBD_GROUND_HEIGHT"
)

type override struct {
	key   string
	apply func(string) error
}

func float32Var(dst *float32) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return err
		}
		*dst = float32(v)
		return nil
	}
}

func intVar(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// ApplyEnvironmentOverrides replaces settings with the values of any XPBD_*
// variables that are set. It stops at the first value that does not parse and
// leaves range checks to Validate.
func (c *WorldConfig) ApplyEnvironmentOverrides() error {
	overrides := []override{
		{EnvGravityX, float32Var(&c.Physics.GravityX)},
		{EnvGravityY, float32Var(&c.Physics.GravityY)},
		{EnvSubsteps, intVar(&c.Physics.Substeps)},
		{EnvDamping, float32Var(&c.Physics.Damping)},
		{EnvGroundHeight, float32Var(&c.Physics.GroundHeight)},
		{EnvGridWidth, intVar(&c.Grid.Width)},
		{EnvGridHeight, intVar(&c.Grid.Height)},
		{EnvGridStep, intVar(&c.Grid.Step)},
		{EnvGridBucket, intVar(&c.Grid.Bucket)},
	}

	for _, o := range overrides {
		value := strings.TrimSpace(os.Getenv(o.key))
		if value == "" {
			continue
		}
		if err := o.apply(value); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", o.key, value, err)
		}
	}
	return nil
}
