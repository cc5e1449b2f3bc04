package ik

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// StickInfluence is the blend a thumbstick deflection contributes to the
// limb pose on its side of the body. Hand weights bias the arm toward a
// forward punch, a raised guard, or the neutral hang; foot weights bias the
// leg toward a forward kick, a downward stomp, or the neutral stance. Each
// triple sums to 1.
type StickInfluence struct {
	HandForward float32
	HandUp      float32
	HandNeutral float32

	FootForward float32
	FootDown    float32
	FootNeutral float32
}

var neutralInfluence = StickInfluence{HandNeutral: 1, FootNeutral: 1}

// stickSectors is the 16-way directional table, sector 0 at stick-forward,
// advancing clockwise (toward stick-right). Forward deflections punch and
// kick, backward deflections guard and stomp, lateral deflections stay
// mostly neutral so elbow/knee-dominant shapes come from the blend of their
// neighbors. Tuned by eye, not derived.
var stickSectors = [16]StickInfluence{
	{HandForward: 1.0, FootForward: 1.0},                                                          // 0: forward
	{HandForward: 0.9, HandNeutral: 0.1, FootForward: 0.9, FootNeutral: 0.1},                      // 1
	{HandForward: 0.7, HandNeutral: 0.3, FootForward: 0.6, FootNeutral: 0.4},                      // 2
	{HandForward: 0.4, HandNeutral: 0.6, FootForward: 0.3, FootNeutral: 0.7},                      // 3
	{HandForward: 0.2, HandNeutral: 0.8, FootNeutral: 1.0},                                        // 4: right
	{HandUp: 0.2, HandNeutral: 0.8, FootDown: 0.2, FootNeutral: 0.8},                              // 5
	{HandUp: 0.5, HandNeutral: 0.5, FootDown: 0.5, FootNeutral: 0.5},                              // 6
	{HandUp: 0.8, HandNeutral: 0.2, FootDown: 0.8, FootNeutral: 0.2},                              // 7
	{HandUp: 1.0, FootDown: 1.0},                                                                  // 8: back
	{HandUp: 0.8, HandNeutral: 0.2, FootDown: 0.8, FootNeutral: 0.2},                              // 9
	{HandUp: 0.5, HandNeutral: 0.5, FootDown: 0.5, FootNeutral: 0.5},                              // 10
	{HandUp: 0.2, HandNeutral: 0.8, FootDown: 0.2, FootNeutral: 0.8},                              // 11
	{HandForward: 0.2, HandNeutral: 0.8, FootNeutral: 1.0},                                        // 12: left
	{HandForward: 0.4, HandNeutral: 0.6, FootForward: 0.3, FootNeutral: 0.7},                      // 13
	{HandForward: 0.7, HandNeutral: 0.3, FootForward: 0.6, FootNeutral: 0.4},                      // 14
	{HandForward: 0.9, HandNeutral: 0.1, FootForward: 0.9, FootNeutral: 0.1},                      // 15
}

const stickDeadzone = 0.1

// influenceFromStick looks up the 16-sector table by stick angle, blends
// linearly between the two neighboring sector entries, and fades the result
// toward neutral by deflection magnitude. Zero deflection is fully neutral.
func influenceFromStick(stick mgl32.Vec2) StickInfluence {
	mag := stick.Len()
	if mag < stickDeadzone {
		return neutralInfluence
	}
	if mag > 1 {
		mag = 1
	}

	// Angle 0 at +Y (stick forward), increasing clockwise.
	angle := math32.Atan2(stick.X(), stick.Y())
	if angle < 0 {
		angle += 2 * math32.Pi
	}
	pos := angle / (2 * math32.Pi) * 16
	sector := int(pos) % 16
	frac := pos - math32.Floor(pos)

	blended := lerpInfluence(stickSectors[sector], stickSectors[(sector+1)%16], frac)
	return lerpInfluence(neutralInfluence, blended, mag)
}

func lerpInfluence(a, b StickInfluence, t float32) StickInfluence {
	l := func(x, y float32) float32 { return x + (y-x)*t }
	return StickInfluence{
		HandForward: l(a.HandForward, b.HandForward),
		HandUp:      l(a.HandUp, b.HandUp),
		HandNeutral: l(a.HandNeutral, b.HandNeutral),
		FootForward: l(a.FootForward, b.FootForward),
		FootDown:    l(a.FootDown, b.FootDown),
		FootNeutral: l(a.FootNeutral, b.FootNeutral),
	}
}
