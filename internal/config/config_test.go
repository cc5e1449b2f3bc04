package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c != Default() {
		t.Error("empty path should return defaults")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.gcfg")
	content := `[simulation]
dt = 0.005
shape-damping = 0.25
substeps = 8

[grid]
nx = 7

[solver]
iterations = 12
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Simulation.Dt != 0.005 {
		t.Errorf("dt = %v, want 0.005", c.Simulation.Dt)
	}
	if c.Simulation.ShapeDamping != 0.25 {
		t.Errorf("shape-damping = %v, want 0.25", c.Simulation.ShapeDamping)
	}
	if c.Simulation.Substeps != 8 {
		t.Errorf("substeps = %d, want 8", c.Simulation.Substeps)
	}
	if c.Grid.Nx != 7 || c.Grid.Ny != 5 {
		t.Errorf("grid = %dx%d, want 7x5 (override + default)", c.Grid.Nx, c.Grid.Ny)
	}
	if c.Solver.Iterations != 12 {
		t.Errorf("iterations = %d, want 12", c.Solver.Iterations)
	}
	// Untouched defaults survive.
	if c.Simulation.ParticleMass != 1 {
		t.Errorf("particle-mass = %v, want default 1", c.Simulation.ParticleMass)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero dt", "[simulation]\ndt = 0\n"},
		{"negative mass", "[simulation]\nparticle-mass = -1\n"},
		{"tiny grid", "[grid]\nnx = 1\n"},
		{"zero iterations", "[solver]\niterations = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.gcfg")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestParamsConversion(t *testing.T) {
	c := Default()
	p := c.Params()
	if p.Dt != c.Simulation.Dt {
		t.Errorf("Dt = %v, want %v", p.Dt, c.Simulation.Dt)
	}
	if p.Acceleration.Y() != c.Simulation.Gravity {
		t.Errorf("Acceleration.Y = %v, want %v", p.Acceleration.Y(), c.Simulation.Gravity)
	}
	if p.StictionFactor != c.Simulation.StictionFactor {
		t.Errorf("StictionFactor = %v, want %v", p.StictionFactor, c.Simulation.StictionFactor)
	}
}
