package systems

import (
	"math"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
)

// Duration ranges in seconds for timer-driven states. States that end on
// an external condition (give-up distance, partner loss) still carry a
// timer as an upper bound.
var stateDurations = [components.NumStates][2]float32{
	components.StateIdle:          {2, 6},
	components.StateWalking:       {3, 8},
	components.StateRunning:       {1, 3},
	components.StateSleeping:      {10, 30},
	components.StateGrooming:      {2, 5},
	components.StateChasingMouse:  {3, 6},
	components.StateFleeingCursor: {1, 2},
	components.StateChasingCat:    {4, 8},
	components.StatePlaying:       {3, 6},
	components.StateZoomies:       {1.5, 3},
	components.StateStartled:      {0.3, 0.5},
	components.StateYawning:       {0.8, 1.2},
	components.StateParading:      {5, 10},
}

// RollDuration returns a jittered duration for entering the given state.
func RollDuration(state components.BehaviorState, seed uint64, handle uint32) float32 {
	d := stateDurations[state]
	return DrawRange(seed, handle, SaltDuration, d[0], d[1])
}

// NextState picks the next autonomous state when a cat's timer expires.
// Weights follow personality: lazy cats idle and sleep more, energetic
// cats walk and run more. energyScale comes from the active mode.
func NextState(p components.Personality, energyScale float32, cfg *config.BehaviorConfig, seed uint64, handle uint32) components.BehaviorState {
	wIdle := 0.25 + p.Laziness*0.2
	wSleep := 0.15 + p.Laziness*0.15
	wGroom := float32(0.1)
	wWalk := (0.25 + p.Energy*0.15) * energyScale
	wRun := (0.1 + p.Energy*0.1) * energyScale
	wZoomie := float32(cfg.ZoomieSeedChance) * p.Energy * energyScale

	total := wIdle + wSleep + wGroom + wWalk + wRun + wZoomie
	r := Draw(seed, handle, SaltTransition) * total

	switch {
	case r < wIdle:
		return components.StateIdle
	case r < wIdle+wSleep:
		return components.StateSleeping
	case r < wIdle+wSleep+wGroom:
		return components.StateGrooming
	case r < wIdle+wSleep+wGroom+wWalk:
		return components.StateWalking
	case r < wIdle+wSleep+wGroom+wWalk+wRun:
		return components.StateRunning
	default:
		return components.StateZoomies
	}
}

// EntrySpeed returns the undirected locomotion speed for a state, or 0 for
// stationary states. Directed states (chases, flees) set their velocity
// toward a target each tick instead.
func EntrySpeed(state components.BehaviorState, cfg *config.BehaviorConfig) float32 {
	switch state {
	case components.StateWalking:
		return float32(cfg.WalkSpeed)
	case components.StateRunning:
		return float32(cfg.RunSpeed)
	case components.StateZoomies:
		return float32(cfg.ZoomieSpeed)
	}
	return 0
}

// HeadingVelocity returns a velocity of the given speed in a random
// direction keyed by (seed, handle).
func HeadingVelocity(seed uint64, handle uint32, speed float32) (float32, float32) {
	angle := Draw(seed, handle, SaltHeading) * 2 * math.Pi
	return speed * float32(math.Cos(float64(angle))), speed * float32(math.Sin(float64(angle)))
}

// StartleImpulse returns the velocity kick and duration for a startled
// cat: a hop upward with a random sideways component.
func StartleImpulse(seed uint64, handle uint32) (dvx, dvy, duration float32) {
	dvx = (Draw(seed, handle, SaltStartleDirX) - 0.5) * 80
	dvy = -150
	duration = DrawRange(seed, handle, SaltStartleDuration, 0.3, 0.5)
	return dvx, dvy, duration
}
