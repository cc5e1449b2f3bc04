// Stress test for the soft-body substep: timing and energy boundedness
// across grid sizes.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
	"softrig/internal/config"
	"softrig/internal/softbody"
)

func main() {
	configPath := flag.String("config", "", "gcfg config file (optional)")
	seconds := flag.Float64("seconds", 2.0, "simulated time per grid size")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	gridSizes := []int{3, 5, 8, 12, 16}
	for _, n := range gridSizes {
		testGrid(n, cfg, float32(*seconds))
	}
}

func testGrid(n int, cfg config.Config, seconds float32) {
	params := cfg.Params()

	points := softbody.CreatePoints(
		mgl32.Vec3{0, cfg.Grid.CenterY, 0},
		mgl32.Vec3{cfg.Grid.Size, cfg.Grid.Size, cfg.Grid.Size},
		n, n, n)
	constraints, err := softbody.CreateShapeConstraints(points, n, n, n)
	if err != nil {
		log.Fatal(err)
	}
	velocities := make([]mgl32.Vec3, len(points))

	world := softbody.NewWorld()
	world.AddBody(softbody.NewColliderBody(collider.NewFloor(0), nil, len(points)))

	steps := int(seconds / params.Dt)
	start := time.Now()
	for i := 0; i < steps; i++ {
		softbody.Substep(world, velocities, points, constraints, &params)
	}
	elapsed := time.Since(start)

	perStep := elapsed / time.Duration(steps)
	energy := softbody.KineticEnergy(velocities, params.ParticleMass)
	realtime := float64(params.Dt) / perStep.Seconds()

	fmt.Printf("%2dx%2dx%2d (%5d particles, %4d cells): %8v/substep | %6.1fx realtime | final KE %8.4f\n",
		n, n, n, len(points), len(constraints), perStep.Round(time.Microsecond), realtime, energy)
}
