// Package config loads run configuration for the simulation binaries from a
// gcfg (INI-style) file, layered over compiled-in defaults.
package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/gcfg.v1"

	"softrig/internal/softbody"
)

type Config struct {
	Simulation struct {
		Dt              float32
		Gravity         float32
		ParticleMass    float32 `gcfg:"particle-mass"`
		ShapeCompliance float32 `gcfg:"shape-compliance"`
		ShapeDamping    float32 `gcfg:"shape-damping"`
		StictionFactor  float32 `gcfg:"stiction-factor"`
		Substeps        int
	}
	Grid struct {
		Nx, Ny, Nz int
		CenterY    float32 `gcfg:"center-y"`
		Size       float32
	}
	Solver struct {
		Iterations int
	}
}

// Default returns the compiled-in configuration: a unit cube of 5³ particles
// stepped at 90 Hz with 4 substeps per frame.
func Default() Config {
	var c Config
	c.Simulation.Dt = 1.0 / 90.0
	c.Simulation.Gravity = -9.8
	c.Simulation.ParticleMass = 1
	c.Simulation.ShapeCompliance = 0.0001
	c.Simulation.ShapeDamping = 0.1
	c.Simulation.StictionFactor = 0.5
	c.Simulation.Substeps = 4
	c.Grid.Nx, c.Grid.Ny, c.Grid.Nz = 5, 5, 5
	c.Grid.CenterY = 2
	c.Grid.Size = 1
	c.Solver.Iterations = 8
	return c
}

// Load reads path over the defaults. An empty path returns the defaults
// unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	if err := gcfg.ReadFileInto(&c, path); err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Simulation.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Simulation.Dt)
	}
	if c.Simulation.ParticleMass <= 0 {
		return fmt.Errorf("config: particle-mass must be positive, got %g", c.Simulation.ParticleMass)
	}
	if c.Simulation.Substeps < 1 {
		return fmt.Errorf("config: substeps must be at least 1, got %d", c.Simulation.Substeps)
	}
	if c.Grid.Nx < 2 || c.Grid.Ny < 2 || c.Grid.Nz < 2 {
		return fmt.Errorf("config: grid needs at least 2 points per axis, got %dx%dx%d",
			c.Grid.Nx, c.Grid.Ny, c.Grid.Nz)
	}
	if c.Solver.Iterations < 1 {
		return fmt.Errorf("config: solver iterations must be at least 1, got %d", c.Solver.Iterations)
	}
	return nil
}

// Params converts the simulation section into substep parameters.
func (c *Config) Params() softbody.Params {
	return softbody.Params{
		Dt:              c.Simulation.Dt,
		Acceleration:    mgl32.Vec3{0, c.Simulation.Gravity, 0},
		ParticleMass:    c.Simulation.ParticleMass,
		ShapeCompliance: c.Simulation.ShapeCompliance,
		ShapeDamping:    c.Simulation.ShapeDamping,
		StictionFactor:  c.Simulation.StictionFactor,
	}
}
