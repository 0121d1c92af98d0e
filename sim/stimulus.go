package sim

import (
	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

// applyClicks handles this tick's pointer events: plain clicks startle,
// the rest spawn toys.
func (s *Sim) applyClicks(clicks []Click) {
	for _, c := range clicks {
		if c.X != c.X || c.Y != c.Y {
			continue
		}

		switch c.Kind {
		case ClickTreat:
			s.toys.DropTreat(c.X, c.Y)
		case ClickLaser:
			s.toys.StartLaser(c.X, c.Y)
		case ClickYarn:
			s.toys.ThrowYarn(c.X, c.Y, c.VX, c.VY)
		case ClickStartle:
			s.startleAt(c.X, c.Y)
		}
	}
}

// startleAt startles the nearest cat to the click and pushes everything
// within the flee radius away with distance falloff. Sleeping cats inside
// the flee radius wake up startled.
func (s *Sim) startleAt(x, y float32) {
	startleR := float32(s.cfg.Toys.StartleRadius)
	fleeR := float32(s.cfg.Toys.ClickFleeRadius)
	fleeStrength := float32(s.cfg.Toys.ClickFleeStrength)

	// Handle order plus strict < keeps the lowest handle on ties.
	nearest := -1
	nearestDistSq := startleR * startleR
	for i := range s.snap {
		d := distSq(s.snap[i].X-x, s.snap[i].Y-y)
		if d < nearestDistSq {
			nearestDistSq = d
			nearest = i
		}
	}

	for i := range s.snap {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		cat := s.catMap.Get(e)

		d := distSq(pos.X-x, pos.Y-y)
		if d >= fleeR*fleeR {
			continue
		}

		dist := sqrt32(d)
		nx, ny := normalize(pos.X-x, pos.Y-y)
		falloff := (fleeR - dist) / fleeR
		vel.X += nx * fleeStrength * falloff
		vel.Y += ny * fleeStrength * falloff

		// A startle in progress is not restarted; only the flee push applies.
		if (i == nearest || st.State == components.StateSleeping) &&
			st.State != components.StateStartled {
			dvx, dvy, duration := systems.StartleImpulse(s.tickSeed, cat.ID)
			vel.X += dvx
			vel.Y += dvy
			s.setState(st, cat, components.StateStartled, duration)
		}
	}
}

// applyCursor runs cursor reactions: the Moses-effect scatter for fast
// cursors, then chase/flee/creep decisions against the snapshot.
func (s *Sim) applyCursor(params systems.ModeParams) {
	cfg := &s.cfg.Cursor

	for i := range s.snap {
		snap := &s.snap[i]
		e := snap.Entity
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		cat := s.catMap.Get(e)

		// Fast cursor parts the sea of cats.
		fx, fy, hard := systems.MosesPush(snap.X-s.cursor.X, snap.Y-s.cursor.Y, s.cursor.Speed, cfg)
		if fx != 0 || fy != 0 {
			vel.X += fx * s.cfg.Derived.DT32
			vel.Y += fy * s.cfg.Derived.DT32
			if hard && st.State != components.StateRunning && st.State != components.StateStartled {
				s.setState(st, cat, components.StateRunning, 0)
			}
			continue
		}

		switch systems.ReactToCursor(snap, &s.cursor, cfg, params.ChaseEnabled, s.tickSeed) {
		case systems.CursorChase:
			s.setState(st, cat, components.StateChasingMouse, 0)
		case systems.CursorFlee:
			if st.State != components.StateFleeingCursor {
				s.setState(st, cat, components.StateFleeingCursor, 0)
			}
		case systems.CursorCreep:
			// Creep closer without a state change.
			if st.State == components.StateIdle || st.State == components.StateWalking {
				nx, ny := normalize(s.cursor.X-snap.X, s.cursor.Y-snap.Y)
				vel.X = nx * float32(cfg.CreepSpeed)
				vel.Y = ny * float32(cfg.CreepSpeed)
			}
		}
	}
}

// applyGifts walks gift carriers toward the cursor and occasionally
// recruits a new one: curious cats bring the user presents. Carriers lose
// interest when the timer runs out or the cursor leaves.
func (s *Sim) applyGifts(dt float32, cursorPresent bool) {
	cfg := &s.cfg.Social
	carriers := 0

	for i := range s.snap {
		e := s.snap[i].Entity
		cat := s.catMap.Get(e)
		if cat.GiftTimer <= 0 {
			continue
		}

		cat.GiftTimer -= dt
		if cat.GiftTimer <= 0 || !cursorPresent {
			cat.GiftTimer = 0
			continue
		}

		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		dx := s.cursor.X - pos.X
		dy := s.cursor.Y - pos.Y

		if dx*dx+dy*dy < float32(cfg.GiftDropDist)*float32(cfg.GiftDropDist) {
			// Delivered. The cat sits down next to its offering.
			cat.GiftTimer = 0
			vel.X, vel.Y = 0, 0
			s.setState(s.stateMap.Get(e), cat, components.StateIdle, 0)
			if s.collector != nil {
				s.collector.RecordGiftDelivered()
			}
			continue
		}

		nx, ny := normalize(dx, dy)
		vel.X = nx * float32(cfg.GiftCarrySpeed)
		vel.Y = ny * float32(cfg.GiftCarrySpeed)
		carriers++
	}

	if !cursorPresent || carriers >= cfg.MaxGiftCarriers {
		return
	}

	// Recruit at most one carrier per tick, lowest eligible handle first.
	for i := range s.snap {
		snap := &s.snap[i]
		if snap.State != components.StateIdle && snap.State != components.StateWalking {
			continue
		}
		if snap.Personality.Curiosity < 0.6 {
			continue
		}
		cat := s.catMap.Get(snap.Entity)
		if cat.GiftTimer > 0 {
			continue
		}
		if !systems.Chance(s.tickSeed, snap.ID, systems.SaltGift, float32(cfg.GiftChance)) {
			continue
		}
		cat.GiftTimer = float32(cfg.GiftCarryTime)
		s.setState(s.stateMap.Get(snap.Entity), cat, components.StateWalking, float32(cfg.GiftCarryTime))
		break
	}
}

// applyToyAttraction pulls cats toward live toys: laser frenzy first,
// then treats, then yarn balls.
func (s *Sim) applyToyAttraction() {
	cfg := &s.cfg.Toys

	for i := range s.snap {
		snap := &s.snap[i]
		e := snap.Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		pers := s.persMap.Get(e)
		cat := s.catMap.Get(e)

		// Laser frenzy grabs every curious cat that is awake.
		if s.toys.Laser.Active && pers.Curiosity >= 0.4 &&
			st.State != components.StateSleeping && st.State != components.StateStartled &&
			st.State != components.StateChasingMouse {
			s.setState(st, cat, components.StateChasingMouse, 0)
			continue
		}

		if st.State != components.StateIdle && st.State != components.StateWalking {
			continue
		}

		// Nearest treat in range wins; handle order resolves nothing here
		// since treats are per-cat.
		treatR := float32(cfg.TreatRadius)
		best := -1
		bestDistSq := treatR * treatR
		for ti := range s.toys.Treats {
			t := &s.toys.Treats[ti]
			if t.Eaten {
				continue
			}
			d := distSq(t.X-pos.X, t.Y-pos.Y)
			if d < bestDistSq {
				bestDistSq = d
				best = ti
			}
		}
		if best >= 0 {
			t := &s.toys.Treats[best]
			if bestDistSq < 12*12 {
				s.toys.EatTreat(best)
				s.setState(st, cat, components.StateGrooming, 0)
			} else {
				speed := float32(cfg.TreatSpeed) * (0.7 + 0.6*pers.Curiosity)
				nx, ny := normalize(t.X-pos.X, t.Y-pos.Y)
				vel.X = nx * speed
				vel.Y = ny * speed
			}
			continue
		}

		// Yarn: chase a nearby ball, bat it when close.
		for yi := range s.toys.Yarn {
			yb := &s.toys.Yarn[yi]
			d := distSq(yb.X-pos.X, yb.Y-pos.Y)
			if d < 20*20 {
				s.toys.Bat(yi, pos.X, pos.Y)
				break
			}
			if d < 60*60 {
				nx, ny := normalize(yb.X-pos.X, yb.Y-pos.Y)
				vel.X = nx * float32(cfg.YarnBatSpeed)
				vel.Y = ny * float32(cfg.YarnBatSpeed)
				break
			}
		}
	}
}
