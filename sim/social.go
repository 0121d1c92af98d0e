package sim

import (
	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

// breatheRate is the shared pile breathing speed in radians per second.
const breatheRate = 2.0

// applySocial is the write half of the social pass: parade roles, pile
// membership and breathing, then the queued commands. It consumes only
// the read-phase buffers and never re-reads other cats' live state.
func (s *Sim) applySocial(dt float32) {
	s.applyParades()
	s.applyPiles(dt)
	s.applyCommands()

	// Consume contagion cooldowns for every source that ran a check.
	for i := range s.snap {
		if s.buf.ContagionChecked[i] {
			s.catMap.Get(s.snap[i].Entity).ContagionAt = s.tick + s.cfg.Derived.ContagionTicks
		}
	}
}

// applyParades assigns parade roles from the read buffers. The leader is
// the lowest handle among the qualifying group; followers trail the
// nearest aligned cat ahead of them, or the leader when no one is ahead.
func (s *Sim) applyParades() {
	s.paradeCount = 0
	followDist := float32(s.cfg.Social.ParadeFollowDist)
	speed := float32(s.cfg.Social.ParadeSpeed)

	for i := range s.snap {
		e := s.snap[i].Entity
		cat := s.catMap.Get(e)

		leader := s.buf.ParadeLeader[i]
		if leader < 0 {
			// Not in a parade this tick; membership is invalidated here,
			// at most one tick after the qualifying state was lost.
			if cat.Parade != components.ParadeNone {
				cat.Parade = components.ParadeNone
				st := s.stateMap.Get(e)
				if st.State == components.StateParading {
					s.setState(st, cat, components.StateWalking, 0)
				}
			}
			continue
		}

		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)

		if int(leader) == i {
			if cat.Parade != components.ParadeLeader {
				cat.Parade = components.ParadeLeader
				s.paradeCount++
				if s.collector != nil {
					s.collector.RecordParadeFormed()
				}
			} else {
				s.paradeCount++
			}
			if st.State != components.StateParading {
				s.setState(st, cat, components.StateParading, 0)
			}
			// The leader keeps its heading at parade speed.
			nx, ny := normalize(vel.X, vel.Y)
			if nx != 0 || ny != 0 {
				vel.X = nx * speed
				vel.Y = ny * speed
			}
			continue
		}

		cat.Parade = components.ParadeFollower
		if st.State != components.StateParading {
			s.setState(st, cat, components.StateParading, 0)
		}

		ahead := s.buf.ParadeAhead[i]
		if ahead < 0 {
			ahead = leader
		}
		ap := &s.snap[ahead]
		dx := ap.X - pos.X
		dy := ap.Y - pos.Y
		dist := sqrt32(dx*dx + dy*dy)
		nx, ny := normalize(dx, dy)

		// Keep the chain spacing: speed up when falling behind, ease off
		// when crowding the cat ahead.
		switch {
		case dist > followDist*1.2:
			vel.X = nx * speed * 1.2
			vel.Y = ny * speed * 1.2
		case dist < followDist*0.8:
			vel.X = nx * speed * 0.4
			vel.Y = ny * speed * 0.4
		default:
			vel.X = nx * speed
			vel.Y = ny * speed
		}
	}
}

// applyPiles refreshes pile membership and the shared breathing phase.
// The leader (lowest handle, lowest snapshot index) advances the phase;
// members copy it. Leaders precede members in iteration order, so members
// always copy the already-advanced value.
func (s *Sim) applyPiles(dt float32) {
	s.pileCount = 0

	for i := range s.snap {
		cat := s.catMap.Get(s.snap[i].Entity)

		leader := s.buf.PileLeader[i]
		if leader < 0 {
			cat.PileMember = false
			continue
		}

		if !cat.PileMember && s.collector != nil && int(leader) == i {
			s.collector.RecordPileFormed()
		}
		cat.PileMember = true

		if int(leader) == i {
			s.pileCount++
			cat.BreathingPhase += dt * breatheRate
		} else {
			cat.BreathingPhase = s.catMap.Get(s.snap[leader].Entity).BreathingPhase
		}
	}
}

// applyCommands executes the state changes queued by the read phase.
// Commands are applied in queue order, which is handle order of the
// acting cat; each checks the subject's live state so earlier commands
// win deterministically.
func (s *Sim) applyCommands() {
	for _, cmd := range s.buf.Commands {
		e := s.snap[cmd.Idx].Entity
		if !s.world.Alive(e) {
			continue
		}
		st := s.stateMap.Get(e)
		cat := s.catMap.Get(e)
		vel := s.velMap.Get(e)

		switch cmd.Kind {
		case systems.CmdWakeStartled:
			if st.State != components.StateSleeping {
				continue
			}
			dvx, dvy, duration := systems.StartleImpulse(s.tickSeed, cat.ID)
			vel.X += dvx
			vel.Y += dvy
			s.setState(st, cat, components.StateStartled, duration)
			if s.collector != nil {
				s.collector.RecordCascadeWake()
			}

		case systems.CmdCatchZoomies:
			if !systems.ContagionReceptive(systems.CmdCatchZoomies, st.State) {
				continue
			}
			s.setState(st, cat, components.StateZoomies, 0)
			vel.X, vel.Y = systems.HeadingVelocity(s.tickSeed, cat.ID, float32(s.cfg.Behavior.ZoomieSpeed))
			if s.collector != nil {
				s.collector.RecordContagion(components.StateZoomies)
			}

		case systems.CmdCatchYawn:
			if !systems.ContagionReceptive(systems.CmdCatchYawn, st.State) {
				continue
			}
			s.setState(st, cat, components.StateYawning, 0)
			if s.collector != nil {
				s.collector.RecordContagion(components.StateYawning)
			}

		case systems.CmdJoinNap:
			if !st.State.CanSocialize() {
				continue
			}
			// Settle next to the sleeper: drift the last step toward it,
			// then sleep.
			sleeper := &s.snap[cmd.Other]
			pos := s.posMap.Get(e)
			nx, ny := normalize(sleeper.X-pos.X, sleeper.Y-pos.Y)
			pos.X += nx * 4
			pos.Y += ny * 4
			vel.X, vel.Y = 0, 0
			s.setState(st, cat, components.StateSleeping, 0)

		case systems.CmdSeedYawn:
			if st.State == components.StateSleeping {
				s.setState(st, cat, components.StateYawning, 0)
			}

		case systems.CmdStartPlay:
			other := s.snap[cmd.Other].Entity
			if !s.world.Alive(other) {
				continue
			}
			otherSt := s.stateMap.Get(other)
			if !st.State.CanSocialize() || !otherSt.State.CanSocialize() {
				continue
			}
			otherCat := s.catMap.Get(other)
			s.setState(st, cat, components.StatePlaying, 0)
			s.setState(otherSt, otherCat, components.StatePlaying, 0)
			cat.Target = other
			otherCat.Target = e

		case systems.CmdStartChase:
			other := s.snap[cmd.Other].Entity
			if !st.State.CanSocialize() || !s.world.Alive(other) {
				continue
			}
			s.setState(st, cat, components.StateChasingCat, 0)
			cat.Target = other

		case systems.CmdPounce:
			if st.State != components.StateIdle && st.State != components.StateWalking {
				continue
			}
			target := &s.snap[cmd.Other]
			pos := s.posMap.Get(e)
			nx, ny := normalize(target.X-pos.X, target.Y-pos.Y)
			vel.X = nx * float32(s.cfg.Social.PounceSpeed)
			vel.Y = ny * float32(s.cfg.Social.PounceSpeed)
			s.setState(st, cat, components.StateRunning, 0.3)

			// The target jumps out of its fur.
			te := target.Entity
			if s.world.Alive(te) {
				tst := s.stateMap.Get(te)
				if tst.State != components.StateStartled {
					tcat := s.catMap.Get(te)
					tvel := s.velMap.Get(te)
					dvx, dvy, duration := systems.StartleImpulse(s.tickSeed, tcat.ID)
					tvel.X += dvx
					tvel.Y += dvy
					s.setState(tst, tcat, components.StateStartled, duration)
				}
			}

		case systems.CmdFleeChase:
			if !st.State.CanSocialize() {
				continue
			}
			chaser := &s.snap[cmd.Other]
			s.setState(st, cat, components.StateRunning, 0)
			pos := s.posMap.Get(e)
			nx, ny := normalize(pos.X-chaser.X, pos.Y-chaser.Y)
			vel.X = nx * float32(s.cfg.Social.CatFleeSpeed)
			vel.Y = ny * float32(s.cfg.Social.CatFleeSpeed)
		}
	}
}
