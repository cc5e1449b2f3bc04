package main

import "softrig/internal/ik"

// stepper is the demo's stand-in locomotion policy: it flips the rig's
// weight distribution with the scripted body sway and re-plants feet on a
// timer, exercising the foot-in-stage lock without real gesture input.
type stepper struct {
	timer   float32
	planted bool
}

const replantInterval = 1.2

func (s *stepper) update(state *ik.State, sway, dt float32) {
	s.timer += dt
	if s.timer < replantInterval {
		return
	}
	s.timer = 0

	if !s.planted {
		// First cycle: let the solver settle before locking anything.
		s.planted = true
		return
	}

	switch {
	case sway < -0.05:
		state.RightFootInStage = nil
		state.PlantLeftFoot()
	case sway > 0.05:
		state.LeftFootInStage = nil
		state.PlantRightFoot()
	default:
		state.ReleaseFeet()
	}
}
