package systems

import (
	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
)

// CursorTracker derives cursor kinematics from the per-tick positions the
// shell feeds in. The simulation never polls input itself.
type CursorTracker struct {
	X, Y     float32
	VX, VY   float32
	Speed    float32
	StillFor float32

	seen bool
}

// Update ingests this tick's cursor position. Non-finite input is ignored
// and the previous position kept.
func (t *CursorTracker) Update(x, y, dt, stillThreshold float32) {
	if !isFinite(x) || !isFinite(y) {
		return
	}
	if !t.seen || dt <= 0 {
		t.X, t.Y = x, y
		t.seen = true
		return
	}

	t.VX = (x - t.X) / dt
	t.VY = (y - t.Y) / dt
	t.X, t.Y = x, y
	t.Speed = velocityMagnitude(t.VX, t.VY)

	if t.Speed < stillThreshold {
		t.StillFor += dt
	} else {
		t.StillFor = 0
	}
}

// CursorReaction is what a cat decides to do about the cursor this tick.
type CursorReaction uint8

const (
	CursorIgnore CursorReaction = iota
	CursorChase
	CursorFlee
	CursorCreep
)

// ReactToCursor decides how a cat responds to the cursor. Lazy cats ignore
// it, skittish cats flee it, curious cats chase it (or creep toward it when
// it has been still for a while). Only cats in receptive states react; the
// Moses-effect scatter for fast cursors is handled separately.
func ReactToCursor(s *CatSnapshot, t *CursorTracker, cfg *config.CursorConfig, chaseEnabled bool, seed uint64) CursorReaction {
	switch s.State {
	case components.StateSleeping, components.StateStartled, components.StateFleeingCursor,
		components.StateChasingMouse, components.StateZoomies:
		return CursorIgnore
	}

	distSq := distanceSq(s.X, s.Y, t.X, t.Y)
	notice := float32(cfg.NoticeRadius)
	if distSq > notice*notice {
		return CursorIgnore
	}

	if s.Personality.Laziness > 0.7 {
		return CursorIgnore
	}

	if s.Personality.Skittishness > 0.6 {
		return CursorFlee
	}

	if s.Personality.Curiosity > 0.5 {
		if t.StillFor >= float32(cfg.StillCreepAfter) {
			return CursorCreep
		}
		if chaseEnabled && Chance(seed, s.ID, SaltCursorChase, 0.02) {
			return CursorChase
		}
	}

	return CursorIgnore
}

// ChaseSpeed returns the cursor chase speed for a cat, scaled by curiosity.
func ChaseSpeed(p components.Personality, cfg *config.CursorConfig) float32 {
	return float32(cfg.ChaseSpeed) * (0.7 + 0.6*p.Curiosity)
}

// FleeSpeed returns the cursor flee speed for a cat, scaled by skittishness.
func FleeSpeed(p components.Personality, cfg *config.CursorConfig) float32 {
	lo := float32(cfg.FleeSpeedMin)
	hi := float32(cfg.FleeSpeedMax)
	return lo + (hi-lo)*p.Skittishness
}

// MosesPush returns the scatter impulse for a cat offset (dx, dy) from a
// fast-moving cursor, with 1/r falloff inside the Moses radius. hard is
// true for pushes strong enough to force the cat into Running.
func MosesPush(dx, dy float32, cursorSpeed float32, cfg *config.CursorConfig) (fx, fy float32, hard bool) {
	if cursorSpeed <= float32(cfg.MosesSpeedThreshold) {
		return 0, 0, false
	}

	dist := velocityMagnitude(dx, dy)
	radius := float32(cfg.MosesRadius)
	if dist >= radius || dist < 1e-3 {
		return 0, 0, false
	}

	falloff := (radius - dist) / radius
	strength := float32(cfg.MosesStrength) * cursorSpeed * falloff / dist

	fx = dx * strength
	fy = dy * strength
	hard = falloff > 0.5
	return fx, fy, hard
}
