package sim

import (
	"log/slog"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

// applyPerch lets idle walkers hop onto nearby perch surfaces and keeps
// perched cats patrolling along them. Perches that disappeared (windows
// closed or moved) drop their cats.
func (s *Sim) applyPerch(perches []systems.PerchRect) {
	cfg := &s.cfg.Perch

	for i := range s.snap {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		cat := s.catMap.Get(e)

		if cat.Perch >= 0 {
			perchable := st.State == components.StateWalking || st.State == components.StateIdle ||
				st.State == components.StateGrooming || st.State == components.StateSleeping
			if int(cat.Perch) >= len(perches) || !perchable {
				cat.Perch = -1
				continue
			}
			p := perches[cat.Perch]
			if pos.X < p.X-10 || pos.X > p.X+p.W+10 {
				cat.Perch = -1
				continue
			}
			pos.Y = p.Y
			vel.Y = 0
			if st.State == components.StateWalking {
				vel.X = systems.PerchPatrol(p, pos.X, vel.X, float32(cfg.WalkSpeed))
			} else {
				vel.X = 0
			}
			continue
		}

		if st.State != components.StateWalking && st.State != components.StateIdle {
			continue
		}
		idx := systems.NearestPerch(perches, pos.X, pos.Y, float32(cfg.SnapDist))
		if idx < 0 {
			continue
		}
		if systems.Chance(s.tickSeed, cat.ID, systems.SaltPerch, float32(cfg.Chance)) {
			cat.Perch = int32(idx)
			pos.Y = perches[idx].Y
			vel.X, vel.Y = 0, 0
		}
	}
}

// applyMovement integrates the tick: flocking and field steering, then
// friction, the size-scaled speed clamp, integration and bounds. The
// previous position is written immediately before integration and is only
// ever read by the renderer.
func (s *Sim) applyMovement(dt float32, params systems.ModeParams) {
	cfg := s.cfg
	friction := float32(cfg.Physics.Friction)
	minVel := float32(cfg.Physics.MinVelocity)
	maxSpeed := float32(cfg.Physics.MaxSpeed)
	w := cfg.Derived.ScreenW32
	h := cfg.Derived.ScreenH32
	margin := cfg.Derived.Margin32

	for i := range s.snap {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		prev := s.prevMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		appear := s.appearMap.Get(e)
		cat := s.catMap.Get(e)

		// Flocking steering applies to loose walkers and runners; parades
		// and directed states manage their own velocity.
		if st.State == components.StateWalking || st.State == components.StateRunning {
			vel.X += s.buf.SteerX[i] * dt
			vel.Y += s.buf.SteerY[i] * dt

			ex, ey := systems.EdgePull(pos.X, pos.Y, w, h, params.EdgeAffinity, float32(cfg.Modes.EdgePull))
			vel.X += ex * dt
			vel.Y += ey * dt
		}

		// Hot cells repel every moving cat.
		if st.State.IsMoving() {
			hx, hy := s.heat.AvoidForce(pos.X, pos.Y)
			vel.X += hx * dt
			vel.Y += hy * dt
		}

		vel.X, vel.Y = systems.ApplyFriction(vel.X, vel.Y, friction, minVel)

		// Size-scaled speed clamp: kittens dart, big cats lumber.
		cap32 := maxSpeed * systems.SpeedScale(appear.Size)
		speed := sqrt32(vel.X*vel.X + vel.Y*vel.Y)
		if speed > cap32 {
			scale := cap32 / speed
			vel.X *= scale
			vel.Y *= scale
		}

		prev.X, prev.Y = pos.X, pos.Y

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		pos.X, pos.Y, vel.X, vel.Y = systems.ClampToBounds(pos.X, pos.Y, vel.X, vel.Y, w, h, margin)

		// Containment: numeric breakage gets sanitized, logged and
		// counted, never propagated.
		var fixed bool
		pos.X, pos.Y, fixed = systems.SanitizeVec(pos.X, pos.Y, prev.X, prev.Y)
		if fixed {
			vel.X, vel.Y = 0, 0
			slog.Warn("sanitized non-finite position", "cat", cat.ID, "tick", s.tick)
			if s.collector != nil {
				s.collector.RecordSanitized()
			}
		} else if vx, vy, vfixed := systems.SanitizeVec(vel.X, vel.Y, 0, 0); vfixed {
			vel.X, vel.Y = vx, vy
			if s.collector != nil {
				s.collector.RecordSanitized()
			}
		}
	}
}
