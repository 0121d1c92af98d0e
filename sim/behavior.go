package sim

import (
	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

// setState performs a state transition: records it, rolls the new timer
// when none is given, and clears a stale partner link.
func (s *Sim) setState(st *components.CatState, cat *components.Cat, next components.BehaviorState, timer float32) {
	if s.collector != nil && st.State != next {
		s.collector.RecordTransition(st.State, next)
	}
	st.State = next
	if timer > 0 {
		st.Timer = timer
	} else {
		st.Timer = systems.RollDuration(next, s.tickSeed, cat.ID)
	}
	if next != components.StateChasingCat && next != components.StatePlaying {
		cat.Target = ecsZero
	}
}

// updateBehavior advances state timers, runs autonomous transitions and
// steers target-directed states. Iterates in handle order over the
// snapshots; all reads of other cats go through the snapshot.
func (s *Sim) updateBehavior(dt float32, params systems.ModeParams) {
	cfg := s.cfg

	for i := range s.snap {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		pers := s.persMap.Get(e)
		cat := s.catMap.Get(e)

		st.Timer -= dt
		if st.Timer <= 0 {
			s.expireState(st, cat, pers, vel, params)
		}

		switch st.State {
		case components.StateChasingCat:
			s.steerToPartner(pos, vel, st, cat,
				float32(cfg.Social.CatChaseSpeed), float32(cfg.Social.ChaseGiveUpDist))
		case components.StatePlaying:
			s.steerToPartner(pos, vel, st, cat,
				float32(cfg.Social.PlaySpeed), float32(cfg.Social.PlayGiveUpDist))
		case components.StateChasingMouse:
			s.steerToLure(pos, vel, st, cat, pers)
		case components.StateFleeingCursor:
			speed := systems.FleeSpeed(*pers, &cfg.Cursor)
			dx, dy := normalize(pos.X-s.cursor.X, pos.Y-s.cursor.Y)
			vel.X = dx * speed
			vel.Y = dy * speed
		}
	}
}

// expireState picks what a cat does when its state timer runs out.
func (s *Sim) expireState(st *components.CatState, cat *components.Cat, pers *components.Personality, vel *components.Velocity, params systems.ModeParams) {
	switch st.State {
	case components.StateYawning:
		// A yawn usually ends in a nap for a lazy cat.
		if pers.Laziness > 0.4 {
			s.setState(st, cat, components.StateSleeping, 0)
		} else {
			s.setState(st, cat, components.StateIdle, 0)
		}

	case components.StateStartled:
		s.setState(st, cat, components.StateRunning, 0)
		vel.X, vel.Y = systems.HeadingVelocity(s.tickSeed, cat.ID, float32(s.cfg.Behavior.RunSpeed))

	case components.StateSleeping:
		s.setState(st, cat, components.StateIdle, 0)

	case components.StateChasingMouse, components.StateFleeingCursor,
		components.StateChasingCat, components.StatePlaying, components.StateParading:
		s.setState(st, cat, components.StateIdle, 0)

	default:
		next := systems.NextState(*pers, params.EnergyScale, &s.cfg.Behavior, s.tickSeed, cat.ID)
		s.setState(st, cat, next, 0)
		if speed := systems.EntrySpeed(next, &s.cfg.Behavior); speed > 0 {
			vel.X, vel.Y = systems.HeadingVelocity(s.tickSeed, cat.ID, speed)
		}
	}
}

// steerToPartner drives chase and play states toward the stored partner,
// giving up when the partner vanishes or gets too far away.
func (s *Sim) steerToPartner(pos *components.Position, vel *components.Velocity, st *components.CatState, cat *components.Cat, speed, giveUp float32) {
	if cat.Target == ecsZero || !s.world.Alive(cat.Target) {
		s.setState(st, cat, components.StateIdle, 0)
		return
	}

	tp := s.posMap.Get(cat.Target)
	dx := tp.X - pos.X
	dy := tp.Y - pos.Y
	if dx*dx+dy*dy > giveUp*giveUp {
		s.setState(st, cat, components.StateIdle, 0)
		return
	}

	nx, ny := normalize(dx, dy)
	vel.X = nx * speed
	vel.Y = ny * speed
}

// steerToLure drives ChasingMouse toward the laser dot when one is live,
// otherwise toward the cursor. With neither in reach the cat loses
// interest.
func (s *Sim) steerToLure(pos *components.Position, vel *components.Velocity, st *components.CatState, cat *components.Cat, pers *components.Personality) {
	var tx, ty, speed float32

	if s.toys.Laser.Active {
		tx, ty = s.toys.Laser.X, s.toys.Laser.Y
		speed = float32(s.cfg.Toys.LaserSpeed)
	} else {
		notice := float32(s.cfg.Cursor.NoticeRadius)
		dx := s.cursor.X - pos.X
		dy := s.cursor.Y - pos.Y
		if dx*dx+dy*dy > notice*notice {
			s.setState(st, cat, components.StateIdle, 0)
			return
		}
		tx, ty = s.cursor.X, s.cursor.Y
		speed = systems.ChaseSpeed(*pers, &s.cfg.Cursor)
	}

	nx, ny := normalize(tx-pos.X, ty-pos.Y)
	vel.X = nx * speed
	vel.Y = ny * speed
}
