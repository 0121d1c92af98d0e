// Package sim hosts the simulation core: the agent store, the per-tick
// pipeline and the read-only views the shell renders from.
package sim

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
	"github.com/pthm-cable/clowder/systems"
	"github.com/pthm-cable/clowder/telemetry"
)

// Sim owns the cat world and advances it one fixed tick at a time. It is
// single-threaded: Advance must never be called concurrently, and all
// mutation happens inside Advance.
type Sim struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map7[
		components.Position,
		components.PrevPosition,
		components.Velocity,
		components.CatState,
		components.Personality,
		components.Appearance,
		components.Cat,
	]
	filter *ecs.Filter7[
		components.Position,
		components.PrevPosition,
		components.Velocity,
		components.CatState,
		components.Personality,
		components.Appearance,
		components.Cat,
	]

	// Individual component mappers for lookups by entity.
	posMap     *ecs.Map1[components.Position]
	prevMap    *ecs.Map1[components.PrevPosition]
	velMap     *ecs.Map1[components.Velocity]
	stateMap   *ecs.Map1[components.CatState]
	persMap    *ecs.Map1[components.Personality]
	appearMap  *ecs.Map1[components.Appearance]
	catMap     *ecs.Map1[components.Cat]

	// Tick-scoped structures, rebuilt every Advance.
	hash *systems.SpatialHash
	snap []systems.CatSnapshot
	buf  systems.Buffers

	heat   *systems.Heatmap
	cursor systems.CursorTracker
	toys   *systems.Toys
	modes  *systems.ModeState

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector

	tick      int64
	tickSeed  uint64
	worldSeed uint64
	nextID    uint32
	popTarget int
	advancing bool

	// Per-tick counts published through Stats.
	paradeCount int
	pileCount   int
}

// New creates a simulation with the given world seed and spawns the
// initial population.
func New(cfg *config.Config, seed int64) *Sim {
	world := ecs.NewWorld()

	s := &Sim{
		cfg:       cfg,
		world:     world,
		rng:       rand.New(rand.NewSource(seed)),
		worldSeed: uint64(seed),
		nextID:    1,
		popTarget: cfg.Population.Initial,

		mapper: ecs.NewMap7[
			components.Position,
			components.PrevPosition,
			components.Velocity,
			components.CatState,
			components.Personality,
			components.Appearance,
			components.Cat,
		](world),
		filter: ecs.NewFilter7[
			components.Position,
			components.PrevPosition,
			components.Velocity,
			components.CatState,
			components.Personality,
			components.Appearance,
			components.Cat,
		](world),

		posMap:    ecs.NewMap1[components.Position](world),
		prevMap:   ecs.NewMap1[components.PrevPosition](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		stateMap:  ecs.NewMap1[components.CatState](world),
		persMap:   ecs.NewMap1[components.Personality](world),
		appearMap: ecs.NewMap1[components.Appearance](world),
		catMap:    ecs.NewMap1[components.Cat](world),

		hash:  systems.NewSpatialHash(float32(cfg.Spatial.CellSize), cfg.Spatial.TableSize),
		heat:  systems.NewHeatmap(&cfg.Heatmap, cfg.Derived.ScreenW32, cfg.Derived.ScreenH32),
		toys:  systems.NewToys(&cfg.Toys),
		modes: systems.NewModeState(systems.ModePlay),
	}

	s.spawnCats(cfg.Population.Initial, false)

	return s
}

// SetCollector attaches a telemetry collector. Nil disables collection.
func (s *Sim) SetCollector(c *telemetry.Collector) { s.collector = c }

// Collector returns the attached telemetry collector, or nil.
func (s *Sim) Collector() *telemetry.Collector { return s.collector }

// SetPerf attaches a performance collector. Nil disables phase timing.
func (s *Sim) SetPerf(p *telemetry.PerfCollector) { s.perf = p }

// phase marks the start of a named pipeline phase when timing is enabled.
func (s *Sim) phase(name string) {
	if s.perf != nil {
		s.perf.StartPhase(name)
	}
}

// Tick returns the current tick number.
func (s *Sim) Tick() int64 { return s.tick }

// Count returns the number of live cats.
func (s *Sim) Count() int { return len(s.snap) }

// Modes exposes the mode state for shell controls.
func (s *Sim) Modes() *systems.ModeState { return s.modes }

// Toys exposes toy state for rendering.
func (s *Sim) Toys() *systems.Toys { return s.toys }

// Heat exposes the heatmap for debug overlays.
func (s *Sim) Heat() *systems.Heatmap { return s.heat }

// SetPopulationTarget sets the desired population. Values above the hard
// cap are clamped; negative values are ignored.
func (s *Sim) SetPopulationTarget(n int) {
	if n < 0 {
		return
	}
	if n > s.cfg.Population.Max {
		n = s.cfg.Population.Max
	}
	s.popTarget = n
}

// PopulationTarget returns the current population target.
func (s *Sim) PopulationTarget() int { return s.popTarget }

// Advance runs one simulation tick. dt is sanitized to the configured
// fixed timestep when non-positive or non-finite; env may be nil for a
// headless tick with no external signals.
func (s *Sim) Advance(dt float32, env *Env) {
	if s.advancing {
		// Re-entrant call, a scheduler bug. Skip rather than corrupt state.
		slog.Error("re-entrant Advance call skipped", "tick", s.tick)
		return
	}
	s.advancing = true
	defer func() { s.advancing = false }()

	if !(dt > 0) || dt != dt {
		dt = s.cfg.Derived.DT32
	}
	if env == nil {
		env = &Env{Hour: -1}
	}

	if s.perf != nil {
		s.perf.StartTick()
	}

	s.tickSeed = systems.TickSeed(s.worldSeed, s.tick)

	// Mode and AFK tracking.
	s.phase(telemetry.PhaseStimulus)
	params, events := s.modes.Update(float64(dt), env.UserActive, &s.cfg.Modes)
	if env.Hour >= 0 {
		params.EnergyScale *= systems.DayNightEnergy(env.Hour)
	}
	if events.DespawnBonus {
		s.despawnBonus(events.Scatter)
	}
	if events.SpawnBonus > 0 {
		s.spawnCats(events.SpawnBonus, true)
		s.modes.SetBonusAlive(s.modes.BonusAlive() + events.SpawnBonus)
	}

	// External surfaces: cursor kinematics, heat, toys.
	if env.CursorPresent {
		s.cursor.Update(env.CursorX, env.CursorY, dt, float32(s.cfg.Cursor.StillThreshold))
		s.heat.Deposit(s.cursor.X, s.cursor.Y, dt)
	}
	s.heat.Decay()
	s.toys.Update(dt, s.cfg.Derived.ScreenW32, s.cfg.Derived.ScreenH32, &s.cursor, s.tickSeed)

	// Population management.
	if env.PopulationTarget > 0 {
		s.SetPopulationTarget(env.PopulationTarget)
	}
	s.stepPopulation()

	// Rebuild the tick-scoped index and snapshots, then run the two-phase
	// social pass around the per-agent update.
	s.phase(telemetry.PhaseSpatial)
	s.rebuild()
	s.phase(telemetry.PhaseReadPass)
	systems.PhaseRead(s.snap, s.hash, &s.buf, s.cfg, s.tickSeed)

	s.phase(telemetry.PhaseStimulus)
	s.applyClicks(env.Clicks)
	s.phase(telemetry.PhaseBehavior)
	s.updateBehavior(dt, params)
	s.phase(telemetry.PhaseStimulus)
	s.applyCursor(params)
	s.applyToyAttraction()
	s.applyGifts(dt, env.CursorPresent)
	s.phase(telemetry.PhaseSocial)
	s.applySocial(dt)
	s.phase(telemetry.PhaseMovement)
	s.applyPerch(env.Perches)
	s.applyMovement(dt, params)

	s.phase(telemetry.PhaseTelemetry)
	if s.collector != nil {
		s.collector.SetGauges(len(s.snap), s.paradeCount, s.pileCount)
	}

	if s.perf != nil {
		s.perf.EndTick()
	}
	s.tick++
}

// rebuild refreshes the spatial hash and the start-of-tick snapshots.
// Snapshots are sorted by handle so every later stage iterates in handle
// order no matter how the ECS stores its archetypes.
func (s *Sim) rebuild() {
	s.snap = s.snap[:0]

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, vel, st, pers, appear, cat := query.Get()

		s.snap = append(s.snap, systems.CatSnapshot{
			Entity:         entity,
			ID:             cat.ID,
			X:              pos.X,
			Y:              pos.Y,
			VX:             vel.X,
			VY:             vel.Y,
			State:          st.State,
			Timer:          st.Timer,
			Size:           appear.Size,
			Personality:    *pers,
			Parade:         cat.Parade,
			PileMember:     cat.PileMember,
			Target:         cat.Target,
			ContagionReady: cat.ContagionAt <= s.tick,
		})
	}

	sort.Slice(s.snap, func(a, b int) bool { return s.snap[a].ID < s.snap[b].ID })

	s.hash.Clear()
	for i := range s.snap {
		cell := s.hash.Insert(int32(i), s.snap[i].X, s.snap[i].Y)
		s.catMap.Get(s.snap[i].Entity).Cell = cell
	}
}

// AgentView is a read-only copy of one cat's render-facing state.
type AgentView struct {
	ID             uint32
	Name           string
	X, Y           float32
	PrevX, PrevY   float32
	VX, VY         float32
	State          components.BehaviorState
	Size           float32
	Color          uint8
	Pattern        uint8
	BreathingPhase float32
	PileMember     bool
	Parade         components.ParadeRole
}

// Agents appends a view of every live cat to dst, in handle order, and
// returns the updated slice. The views are copies; mutating them has no
// effect on the simulation.
func (s *Sim) Agents(dst []AgentView) []AgentView {
	for i := range s.snap {
		e := s.snap[i].Entity
		if !s.world.Alive(e) {
			continue
		}
		pos := s.posMap.Get(e)
		prev := s.prevMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		appear := s.appearMap.Get(e)
		cat := s.catMap.Get(e)

		dst = append(dst, AgentView{
			ID:             cat.ID,
			Name:           cat.Name,
			X:              pos.X,
			Y:              pos.Y,
			PrevX:          prev.X,
			PrevY:          prev.Y,
			VX:             vel.X,
			VY:             vel.Y,
			State:          st.State,
			Size:           appear.Size,
			Color:          appear.Color,
			Pattern:        appear.Pattern,
			BreathingPhase: cat.BreathingPhase,
			PileMember:     cat.PileMember,
			Parade:         cat.Parade,
		})
	}
	return dst
}

// QueryNeighbors returns the handles of cats within radius of (x, y), in
// handle order. NaN inputs and negative radii return nothing. The grid
// query caps its result count, and radii wider than the index cell size
// exceed its 3x3 scan; both cases fall back to a full scan so the result
// is always exactly the cats within radius.
func (s *Sim) QueryNeighbors(x, y, radius float32) []uint32 {
	if x != x || y != y || !(radius >= 0) {
		return nil
	}

	var out []uint32
	if radius <= float32(s.cfg.Spatial.CellSize) {
		neighbors := s.hash.QueryRadiusInto(nil, x, y, radius, -1, s.snap)
		if len(neighbors) < systems.MaxQueryResults {
			for _, n := range neighbors {
				out = append(out, s.snap[n.Idx].ID)
			}
			sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
			return out
		}
		// The grid query hit its cap and may have truncated.
		out = out[:0]
	}

	radiusSq := radius * radius
	for i := range s.snap {
		if distSq(s.snap[i].X-x, s.snap[i].Y-y) <= radiusSq {
			out = append(out, s.snap[i].ID)
		}
	}
	return out
}

// StatsSamples collects per-cat speed and neighbor-count samples from the
// last completed tick, for telemetry flushes.
func (s *Sim) StatsSamples() (speeds, neighbors []float64) {
	speeds = make([]float64, 0, len(s.snap))
	neighbors = make([]float64, 0, len(s.snap))
	for i := range s.snap {
		e := s.snap[i].Entity
		if !s.world.Alive(e) {
			continue
		}
		vel := s.velMap.Get(e)
		speeds = append(speeds, float64(sqrt32(vel.X*vel.X+vel.Y*vel.Y)))
		if i < len(s.buf.NeighborCount) {
			neighbors = append(neighbors, float64(s.buf.NeighborCount[i]))
		}
	}
	return speeds, neighbors
}

func distSq(dx, dy float32) float32 { return dx*dx + dy*dy }
