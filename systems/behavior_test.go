package systems

import (
	"testing"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
)

// testConfig loads the embedded defaults once per test binary.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	config.MustInit("")
	return config.Cfg()
}

func TestRollDuration_WithinStateRange(t *testing.T) {
	for state := components.BehaviorState(0); int(state) < components.NumStates; state++ {
		lo, hi := stateDurations[state][0], stateDurations[state][1]
		for tick := int64(0); tick < 100; tick++ {
			seed := TickSeed(1, tick)
			d := RollDuration(state, seed, 42)
			if d < lo || d >= hi {
				t.Fatalf("state %v: duration %f out of [%f, %f)", state, d, lo, hi)
			}
		}
	}
}

func TestNextState_LazyCatsRestMore(t *testing.T) {
	cfg := testConfig(t)

	lazy := components.Personality{Laziness: 0.9, Energy: 0.1}
	active := components.Personality{Laziness: 0.1, Energy: 0.9}

	countRest := func(p components.Personality) int {
		rest := 0
		for tick := int64(0); tick < 5000; tick++ {
			seed := TickSeed(11, tick)
			st := NextState(p, 1.0, &cfg.Behavior, seed, 7)
			if st == components.StateIdle || st == components.StateSleeping {
				rest++
			}
		}
		return rest
	}

	lazyRest := countRest(lazy)
	activeRest := countRest(active)
	if lazyRest <= activeRest {
		t.Errorf("lazy cat rested %d times, active cat %d; expected lazy > active", lazyRest, activeRest)
	}
}

func TestNextState_EnergyScaleRaisesActivity(t *testing.T) {
	cfg := testConfig(t)
	p := components.Personality{Laziness: 0.5, Energy: 0.5}

	countMoving := func(scale float32) int {
		moving := 0
		for tick := int64(0); tick < 5000; tick++ {
			seed := TickSeed(13, tick)
			st := NextState(p, scale, &cfg.Behavior, seed, 9)
			if st == components.StateWalking || st == components.StateRunning || st == components.StateZoomies {
				moving++
			}
		}
		return moving
	}

	calm := countMoving(0.7)
	chaotic := countMoving(3.0)
	if chaotic <= calm {
		t.Errorf("chaos scale moved %d times, work scale %d; expected chaos > work", chaotic, calm)
	}
}

func TestNextState_NeverPicksDirectedStates(t *testing.T) {
	cfg := testConfig(t)
	p := components.Personality{Laziness: 0.5, Energy: 0.8, Curiosity: 0.9}

	for tick := int64(0); tick < 2000; tick++ {
		seed := TickSeed(17, tick)
		st := NextState(p, 3.0, &cfg.Behavior, seed, 3)
		switch st {
		case components.StateIdle, components.StateSleeping, components.StateGrooming,
			components.StateWalking, components.StateRunning, components.StateZoomies:
		default:
			t.Fatalf("autonomous transition produced %v", st)
		}
	}
}

func TestEntrySpeed_PerState(t *testing.T) {
	cfg := testConfig(t)

	cases := []struct {
		state components.BehaviorState
		want  float32
	}{
		{components.StateWalking, float32(cfg.Behavior.WalkSpeed)},
		{components.StateRunning, float32(cfg.Behavior.RunSpeed)},
		{components.StateZoomies, float32(cfg.Behavior.ZoomieSpeed)},
		{components.StateIdle, 0},
		{components.StateSleeping, 0},
		{components.StateChasingCat, 0},
	}
	for _, c := range cases {
		if got := EntrySpeed(c.state, &cfg.Behavior); got != c.want {
			t.Errorf("EntrySpeed(%v) = %f, want %f", c.state, got, c.want)
		}
	}
}

func TestStartleImpulse_UpwardHop(t *testing.T) {
	for tick := int64(0); tick < 200; tick++ {
		seed := TickSeed(19, tick)
		dvx, dvy, duration := StartleImpulse(seed, 5)
		if dvy != -150 {
			t.Fatalf("dvy = %f, want -150", dvy)
		}
		if dvx < -40 || dvx > 40 {
			t.Fatalf("dvx = %f out of [-40, 40]", dvx)
		}
		if duration < 0.3 || duration >= 0.5 {
			t.Fatalf("duration = %f out of [0.3, 0.5)", duration)
		}
	}
}

func TestHeadingVelocity_MagnitudeMatchesSpeed(t *testing.T) {
	for tick := int64(0); tick < 100; tick++ {
		seed := TickSeed(23, tick)
		vx, vy := HeadingVelocity(seed, 8, 120)
		mag := velocityMagnitude(vx, vy)
		if mag < 119.9 || mag > 120.1 {
			t.Fatalf("speed %f, want 120", mag)
		}
	}
}
