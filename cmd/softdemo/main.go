// Interactive demo: a soft cube dropped onto colliders next to an IK rig
// driven by scripted tracking input, with live parameter sliders.
package main

import (
	"fmt"
	"log"

	"github.com/chewxy/math32"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
	"softrig/internal/config"
	"softrig/internal/ik"
	"softrig/internal/softbody"
)

type demo struct {
	cfg    config.Config
	params softbody.Params

	points      []mgl32.Vec3
	velocities  []mgl32.Vec3
	constraints []softbody.ShapeConstraint
	world       *softbody.World
	ball        *softbody.ColliderBody

	solver   *ik.Solver
	ikState  *ik.State
	stepper  stepper
	simTime  float32
	showHelp bool
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	d := &demo{cfg: cfg, params: cfg.Params(), showHelp: true}
	d.rebuild()
	d.solver = ik.NewSolver()
	d.solver.Iterations = cfg.Solver.Iterations
	d.ikState = ik.NewState()

	rl.SetConfigFlags(rl.FlagWindowHighdpi)
	rl.InitWindow(1280, 720, "softrig demo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(90)

	camera := rl.Camera3D{
		Position:   rl.Vector3{X: 3.5, Y: 2.5, Z: 4.5},
		Target:     rl.Vector3{X: 0, Y: 1, Z: 0},
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       55,
		Projection: rl.CameraPerspective,
	}

	for !rl.WindowShouldClose() {
		d.update()
		d.draw(camera)
	}
}

// rebuild recreates the particle grid and the collider world from config.
func (d *demo) rebuild() {
	g := d.cfg.Grid
	d.points = softbody.CreatePoints(
		mgl32.Vec3{0, g.CenterY, 0},
		mgl32.Vec3{g.Size, g.Size, g.Size},
		g.Nx, g.Ny, g.Nz)
	constraints, err := softbody.CreateShapeConstraints(d.points, g.Nx, g.Ny, g.Nz)
	if err != nil {
		log.Fatal(err)
	}
	d.constraints = constraints
	d.velocities = make([]mgl32.Vec3, len(d.points))

	d.world = softbody.NewWorld()
	d.world.AddBody(softbody.NewColliderBody(collider.NewFloor(0), nil, len(d.points)))
	d.ball = softbody.NewColliderBody(
		collider.NewBall(0.5),
		collider.NewTransform(mgl32.Vec3{0.3, 0.5, 0}, mgl32.QuatIdent()),
		len(d.points))
	d.world.AddBody(d.ball)
	d.world.AddBody(softbody.NewColliderBody(
		collider.NewCuboid(mgl32.Vec3{1.2, 0.4, 1.2}),
		collider.NewTransform(mgl32.Vec3{-1.4, 0.2, 0}, mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0})),
		len(d.points)))
	log.Printf("Demo: grid %dx%dx%d, %d particles, %d cells",
		g.Nx, g.Ny, g.Nz, len(d.points), len(d.constraints))
}

func (d *demo) update() {
	frameDt := rl.GetFrameTime()
	if frameDt > 1.0/30.0 {
		frameDt = 1.0 / 30.0
	}
	d.simTime += frameDt

	substeps := d.cfg.Simulation.Substeps
	d.params.Dt = frameDt / float32(substeps)
	for i := 0; i < substeps; i++ {
		softbody.Substep(d.world, d.velocities, d.points, d.constraints, &d.params)
	}

	d.updateRig(frameDt)

	if rl.IsKeyPressed(rl.KeyR) {
		d.rebuild()
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		if err := ik.SaveSnapshot("ik_snapshot.json", d.ikState); err != nil {
			log.Printf("Demo: snapshot failed: %v", err)
		} else {
			log.Printf("Demo: snapshot written to ik_snapshot.json")
		}
	}
	if rl.IsKeyPressed(rl.KeyH) {
		d.showHelp = !d.showHelp
	}
}

// updateRig feeds the IK solver a scripted figure-eight of head and hand
// motion in place of real tracking input.
func (d *demo) updateRig(frameDt float32) {
	t := d.simTime
	sway := 0.2 * sin32(t*0.9)
	bob := 0.04 * sin32(t*2.1)
	yaw := 0.3 * sin32(t*0.5)

	hmd := collider.Transform{
		Position: mgl32.Vec3{2 + sway, 1.65 + bob, 1},
		Rotation: mgl32.QuatRotate(yaw, mgl32.Vec3{0, 1, 0}),
	}
	leftGrip := collider.Transform{
		Position: mgl32.Vec3{2 + sway - 0.3, 1.1 + 0.25*sin32(t*1.3), 1 - 0.35 - 0.15*cos32(t*1.3)},
		Rotation: hmd.Rotation,
	}
	rightGrip := collider.Transform{
		Position: mgl32.Vec3{2 + sway + 0.3, 1.1 + 0.25*sin32(t*1.3+2), 1 - 0.35 - 0.15*cos32(t*1.3+2)},
		Rotation: hmd.Rotation,
	}
	leftStick := mgl32.Vec2{0, 0.6 * sin32(t*0.7)}
	rightStick := mgl32.Vec2{0.4 * sin32(t*0.4), 0}

	d.stepper.update(d.ikState, sway, frameDt)

	if _, err := d.solver.Solve(hmd, leftGrip, leftGrip, rightGrip, rightGrip,
		leftStick, rightStick, d.ikState); err != nil {
		log.Printf("IK: %v", err)
	}
}

func (d *demo) draw(camera rl.Camera3D) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(20, 20, 30, 255))

	rl.BeginMode3D(camera)
	rl.DrawGrid(12, 0.5)

	for _, p := range d.points {
		rl.DrawSphere(rlVec(p), 0.03, rl.SkyBlue)
	}

	rl.DrawSphereWires(rl.Vector3{X: 0.3, Y: 0.5, Z: 0}, 0.5, 12, 12, rl.Gray)
	rl.DrawCubeWires(rl.Vector3{X: -1.4, Y: 0.2, Z: 0}, 1.2, 0.4, 1.2, rl.Gray)

	d.drawRig()
	rl.EndMode3D()

	d.drawUI()
	rl.EndDrawing()
}

// rig bones as (from, to) joint pairs
var bonePairs = [][2]ik.NodeID{
	{ik.NodeHead, ik.NodeNeckRoot},
	{ik.NodeNeckRoot, ik.NodeTorso},
	{ik.NodeTorso, ik.NodePelvis},
	{ik.NodeLeftUpperArm, ik.NodeLeftForearm},
	{ik.NodeLeftForearm, ik.NodeLeftWrist},
	{ik.NodeRightUpperArm, ik.NodeRightForearm},
	{ik.NodeRightForearm, ik.NodeRightWrist},
	{ik.NodeLeftThigh, ik.NodeLeftShin},
	{ik.NodeLeftShin, ik.NodeLeftFoot},
	{ik.NodeRightThigh, ik.NodeRightShin},
	{ik.NodeRightShin, ik.NodeRightFoot},
}

func (d *demo) drawRig() {
	for _, pair := range bonePairs {
		a := rlVec(d.ikState.NodePositions[pair[0]])
		b := rlVec(d.ikState.NodePositions[pair[1]])
		rl.DrawLine3D(a, b, rl.Orange)
	}
	for _, n := range ik.AllNodes() {
		if !n.IsBody() {
			continue
		}
		rl.DrawSphere(rlVec(d.ikState.NodePositions[n]), 0.025, rl.Red)
	}
}

func (d *demo) drawUI() {
	panel := rl.Rectangle{X: 10, Y: 10, Width: 260, Height: 150}
	gui.Panel(panel, "Simulation")

	d.params.ShapeCompliance = gui.Slider(
		rl.Rectangle{X: 110, Y: 40, Width: 120, Height: 16},
		"compliance", fmt.Sprintf("%.4f", d.params.ShapeCompliance),
		d.params.ShapeCompliance, 0, 0.01)
	d.params.ShapeDamping = gui.Slider(
		rl.Rectangle{X: 110, Y: 64, Width: 120, Height: 16},
		"damping", fmt.Sprintf("%.2f", d.params.ShapeDamping),
		d.params.ShapeDamping, 0, 1)
	d.params.StictionFactor = gui.Slider(
		rl.Rectangle{X: 110, Y: 88, Width: 120, Height: 16},
		"stiction", fmt.Sprintf("%.2f", d.params.StictionFactor),
		d.params.StictionFactor, 0, 2)
	iters := gui.Slider(
		rl.Rectangle{X: 110, Y: 112, Width: 120, Height: 16},
		"IK passes", fmt.Sprintf("%d", d.solver.Iterations),
		float32(d.solver.Iterations), 1, 24)
	d.solver.Iterations = int(iters)

	energy := softbody.KineticEnergy(d.velocities, d.params.ParticleMass)
	rl.DrawText(fmt.Sprintf("KE: %.3f", energy), 10, 170, 18, rl.Green)
	rl.DrawFPS(10, 192)

	if d.showHelp {
		rl.DrawText("R rebuild grid | F5 save IK snapshot | H toggle help",
			10, int32(rl.GetScreenHeight())-30, 18, rl.DarkGray)
	}
}

func rlVec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func sin32(x float32) float32 { return math32.Sin(x) }
func cos32(x float32) float32 { return math32.Cos(x) }
