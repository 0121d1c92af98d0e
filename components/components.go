// Package components defines ECS components for the simulation.
package components

import "github.com/mlange-42/ark/ecs"

// BehaviorState identifies what a cat is currently doing.
type BehaviorState uint8

const (
	StateIdle BehaviorState = iota
	StateWalking
	StateRunning
	StateSleeping
	StateGrooming
	StateChasingMouse
	StateFleeingCursor
	StateChasingCat
	StatePlaying
	StateZoomies
	StateStartled
	StateYawning
	StateParading

	// NumStates is the count of behavior states.
	NumStates = int(StateParading) + 1
)

var stateNames = [NumStates]string{
	"idle", "walking", "running", "sleeping", "grooming",
	"chasing_mouse", "fleeing_cursor", "chasing_cat", "playing",
	"zoomies", "startled", "yawning", "parading",
}

// String returns the lowercase name of the state.
func (s BehaviorState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// IsMoving reports whether the state implies locomotion toward a goal.
func (s BehaviorState) IsMoving() bool {
	switch s {
	case StateWalking, StateRunning, StateChasingMouse, StateChasingCat,
		StatePlaying, StateZoomies, StateFleeingCursor, StateParading:
		return true
	}
	return false
}

// CanSocialize reports whether the cat is receptive to pair interactions.
// Startled, fleeing and already-paired cats are not.
func (s BehaviorState) CanSocialize() bool {
	switch s {
	case StateIdle, StateWalking, StateRunning, StateGrooming:
		return true
	}
	return false
}

// ParadeQualifies reports whether the state counts toward parade formation.
func (s BehaviorState) ParadeQualifies() bool {
	return s == StateWalking || s == StateRunning || s == StateParading
}

// Position is an entity's world position in pixels.
type Position struct {
	X, Y float32
}

// PrevPosition is the position at the start of the current tick.
// Written once per tick before integration; read only by the renderer
// for interpolation, never by simulation logic.
type PrevPosition struct {
	X, Y float32
}

// Velocity is an entity's velocity in pixels per second.
type Velocity struct {
	X, Y float32
}

// CatState holds the behavior machine state and its countdown timer.
type CatState struct {
	State BehaviorState
	Timer float32 // Seconds remaining in the current state
}

// Personality holds the four fixed traits that weight behavior decisions.
// All in [0, 1], assigned at spawn and never mutated.
type Personality struct {
	Laziness     float32
	Curiosity    float32
	Skittishness float32
	Energy       float32
}

// Appearance holds render-facing attributes. Size also scales the
// movement speed cap.
type Appearance struct {
	Size    float32 // 0.6 (kitten) to 1.4 (large)
	Color   uint8   // Palette index
	Pattern uint8   // 0..3
}

// ParadeRole marks an entity's position in a cat parade.
type ParadeRole uint8

const (
	ParadeNone ParadeRole = iota
	ParadeLeader
	ParadeFollower
)

// Cat holds identity, social links and scheduling state.
type Cat struct {
	ID   uint32 // Stable handle, unique for the process lifetime
	Name string

	Cell int32 // Spatial hash cell cached at the last index rebuild

	// Social pairing. Target is the partner for ChasingCat/Playing and
	// the followed cat for parade followers. Zero entity = none.
	Target ecs.Entity

	Parade         ParadeRole
	PileMember     bool
	BreathingPhase float32 // Shared across a pile, radians

	Perch int32 // Index into the env perch list, -1 = not perched

	// ContagionAt is the next absolute tick this cat may spread zoomies
	// or yawns. 0 = ready now.
	ContagionAt int64

	// GiftTimer is the seconds left carrying a gift toward the cursor.
	// 0 = not carrying.
	GiftTimer float32

	AfkBonus bool // Spawned by AFK escalation; despawned on return
}
