package sim

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

var catNames = []string{
	"Mochi", "Biscuit", "Pixel", "Noodle", "Pepper", "Clementine", "Waffles",
	"Miso", "Turnip", "Gadget", "Pudding", "Sprocket", "Beans", "Tofu",
	"Maple", "Ziggy", "Crumpet", "Nimbus", "Pickle", "Soba", "Marble",
	"Toast", "Fig", "Juniper", "Bramble", "Dumpling", "Static", "Mouse",
	"Pancake", "Olive", "Comet", "Butter", "Socks", "Ramen", "Pretzel",
	"Nova", "Churro", "Tangerine", "Pebble", "Smudge",
}

// nextName returns a procedural name for a new cat. Names repeat with a
// numeric suffix once the base list is exhausted.
func nextName(id uint32) string {
	i := int(id-1) % len(catNames)
	gen := int(id-1) / len(catNames)
	if gen == 0 {
		return catNames[i]
	}
	return fmt.Sprintf("%s %d", catNames[i], gen+1)
}

// alive counts live cats, split by AFK bonus status.
func (s *Sim) aliveCounts() (base, bonus int) {
	query := s.filter.Query()
	for query.Next() {
		_, _, _, _, _, _, cat := query.Get()
		if cat.AfkBonus {
			bonus++
		} else {
			base++
		}
	}
	return base, bonus
}

// spawnCats spawns up to n cats, rejecting any that would exceed the hard
// population cap. Rejections are logged and counted, never fatal.
func (s *Sim) spawnCats(n int, bonus bool) int {
	base, extra := s.aliveCounts()
	alive := base + extra

	spawned := 0
	for i := 0; i < n; i++ {
		if alive >= s.cfg.Population.Max {
			rejected := n - spawned
			slog.Warn("spawn rejected, population at cap",
				"cap", s.cfg.Population.Max, "rejected", rejected)
			if s.collector != nil {
				s.collector.RecordRejectedSpawns(rejected)
			}
			break
		}
		s.spawnOne(bonus)
		alive++
		spawned++
	}
	return spawned
}

// spawnOne creates a single cat with randomized personality, appearance
// and a jittered idle timer. Spawn-time randomness uses the sequential
// RNG; it runs outside the snapshot pass so ordering is not a concern.
func (s *Sim) spawnOne(bonus bool) {
	cfg := s.cfg
	margin := cfg.Derived.Margin32
	w := cfg.Derived.ScreenW32
	h := cfg.Derived.ScreenH32

	id := s.nextID
	s.nextID++

	pos := components.Position{
		X: margin + s.rng.Float32()*(w-2*margin),
		Y: margin + s.rng.Float32()*(h-2*margin),
	}

	s.mapper.NewEntity(
		&pos,
		&components.PrevPosition{X: pos.X, Y: pos.Y},
		&components.Velocity{},
		&components.CatState{
			State: components.StateIdle,
			Timer: 1 + s.rng.Float32()*4,
		},
		&components.Personality{
			Laziness:     s.rng.Float32(),
			Curiosity:    s.rng.Float32(),
			Skittishness: s.rng.Float32(),
			Energy:       s.rng.Float32(),
		},
		&components.Appearance{
			Size:    0.6 + s.rng.Float32()*0.8,
			Color:   uint8(s.rng.Intn(8)),
			Pattern: uint8(s.rng.Intn(4)),
		},
		&components.Cat{
			ID:       id,
			Name:     nextName(id),
			Perch:    -1,
			AfkBonus: bonus,
		},
	)
}

// stepPopulation moves the base population toward the target, a few cats
// per tick so swings do not pop visually.
func (s *Sim) stepPopulation() {
	base, _ := s.aliveCounts()
	step := s.cfg.Population.StepsPerTick

	switch {
	case base < s.popTarget:
		n := s.popTarget - base
		if n > step {
			n = step
		}
		s.spawnCats(n, false)
	case base > s.popTarget:
		n := base - s.popTarget
		if n > step {
			n = step
		}
		s.despawnNewest(n)
	}
}

// despawnNewest removes the n most recently spawned non-bonus cats.
// Collect first, then mutate: removing entities inside a query would
// invalidate it.
func (s *Sim) despawnNewest(n int) {
	type victim struct {
		e  ecs.Entity
		id uint32
	}
	var all []victim

	query := s.filter.Query()
	for query.Next() {
		_, _, _, _, _, _, cat := query.Get()
		if !cat.AfkBonus {
			all = append(all, victim{e: query.Entity(), id: cat.ID})
		}
	}

	for i := 0; i < n && len(all) > 0; i++ {
		best := 0
		for j := 1; j < len(all); j++ {
			if all[j].id > all[best].id {
				best = j
			}
		}
		s.mapper.Remove(all[best].e)
		all[best] = all[len(all)-1]
		all = all[:len(all)-1]
	}
}

// despawnBonus removes every AFK bonus cat, optionally scattering the
// remaining swarm (the user came back and startled everyone).
func (s *Sim) despawnBonus(scatter bool) {
	var victims []ecs.Entity

	query := s.filter.Query()
	for query.Next() {
		_, _, vel, st, _, _, cat := query.Get()
		if cat.AfkBonus {
			victims = append(victims, query.Entity())
			continue
		}
		if scatter {
			dvx, dvy, duration := systems.StartleImpulse(s.tickSeed, cat.ID)
			vel.X += dvx
			vel.Y += dvy
			if st.State != components.StateStartled {
				s.setState(st, cat, components.StateStartled, duration)
			}
		}
	}

	for _, e := range victims {
		s.mapper.Remove(e)
	}
	s.modes.SetBonusAlive(0)
}
