package sim

import "github.com/pthm-cable/clowder/systems"

// ClickKind distinguishes the toy interactions a click can spawn.
type ClickKind uint8

const (
	ClickStartle ClickKind = iota // Plain click: startle nearby cats
	ClickTreat                    // Drop a treat
	ClickLaser                    // Start a laser frenzy
	ClickYarn                     // Throw a yarn ball
)

// Click is a single pointer event forwarded by the shell.
type Click struct {
	Kind   ClickKind
	X, Y   float32
	VX, VY float32 // Initial velocity for yarn throws
}

// Env carries the per-tick external signals. The simulation never polls
// input or the window system itself; the shell fills this in each tick.
type Env struct {
	CursorX, CursorY float32
	CursorPresent    bool
	UserActive       bool // Any user input this tick, drives AFK tracking

	Clicks []Click

	// Candidate perch surfaces (window titlebars), in a stable order.
	Perches []systems.PerchRect

	// Desired population. 0 = leave unchanged.
	PopulationTarget int

	// Local hour of day in [0, 24) for the day/night energy cycle.
	// Negative disables it, which keeps headless runs reproducible.
	Hour float32
}
