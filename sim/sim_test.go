package sim

import (
	"math"
	"sort"
	"testing"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
	"github.com/pthm-cable/clowder/systems"
	"github.com/pthm-cable/clowder/telemetry"
)

func newTestSim(t *testing.T, seed int64) *Sim {
	t.Helper()
	config.MustInit("")
	return New(config.Cfg(), seed)
}

func TestNew_SpawnsInitialPopulation(t *testing.T) {
	s := newTestSim(t, 1)
	s.Advance(0, nil)

	if s.Count() != config.Cfg().Population.Initial {
		t.Errorf("population %d, want %d", s.Count(), config.Cfg().Population.Initial)
	}
}

func TestAdvance_KeepsCatsInBoundsAndFinite(t *testing.T) {
	s := newTestSim(t, 2)
	cfg := config.Cfg()

	for tick := 0; tick < 600; tick++ {
		s.Advance(cfg.Derived.DT32, nil)
	}

	margin := cfg.Derived.Margin32
	w := cfg.Derived.ScreenW32
	h := cfg.Derived.ScreenH32

	for _, a := range s.Agents(nil) {
		if a.X != a.X || a.Y != a.Y {
			t.Fatalf("cat %d has NaN position", a.ID)
		}
		if a.X < margin || a.X > w-margin || a.Y < margin || a.Y > h-margin {
			t.Errorf("cat %d escaped bounds at (%f, %f)", a.ID, a.X, a.Y)
		}
		if math.IsInf(float64(a.VX), 0) || math.IsInf(float64(a.VY), 0) {
			t.Fatalf("cat %d has infinite velocity", a.ID)
		}
	}
}

func TestAdvance_StepBoundedBySpeedCap(t *testing.T) {
	s := newTestSim(t, 3)
	cfg := config.Cfg()

	// Warm up, then check the per-tick displacement against the largest
	// possible speed cap (smallest cats run at 1.3x base).
	for tick := 0; tick < 120; tick++ {
		s.Advance(cfg.Derived.DT32, nil)
	}

	maxStep := float32(cfg.Physics.MaxSpeed)*1.3*cfg.Derived.DT32 + 1e-3
	for _, a := range s.Agents(nil) {
		dx := a.X - a.PrevX
		dy := a.Y - a.PrevY
		step := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if step > maxStep {
			t.Errorf("cat %d moved %f px in one tick, cap %f", a.ID, step, maxStep)
		}
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	a := newTestSim(t, 99)
	b := newTestSim(t, 99)

	dt := config.Cfg().Derived.DT32
	for tick := 0; tick < 180; tick++ {
		a.Advance(dt, nil)
		b.Advance(dt, nil)
	}

	viewsA := a.Agents(nil)
	viewsB := b.Agents(nil)
	if len(viewsA) != len(viewsB) {
		t.Fatalf("population diverged: %d vs %d", len(viewsA), len(viewsB))
	}
	for i := range viewsA {
		va, vb := viewsA[i], viewsB[i]
		if va.ID != vb.ID || va.X != vb.X || va.Y != vb.Y || va.State != vb.State {
			t.Fatalf("cat %d diverged: (%f, %f, %v) vs (%f, %f, %v)",
				va.ID, va.X, va.Y, va.State, vb.X, vb.Y, vb.State)
		}
	}
}

func TestPopulationTarget_GrowsAndShrinks(t *testing.T) {
	s := newTestSim(t, 4)
	cfg := config.Cfg()

	target := cfg.Population.Initial + 10
	env := &Env{PopulationTarget: target}

	// Growth is rate limited to StepsPerTick per tick.
	ticksNeeded := 10/cfg.Population.StepsPerTick + 2
	for i := 0; i < ticksNeeded; i++ {
		s.Advance(cfg.Derived.DT32, env)
	}
	if s.Count() != target {
		t.Errorf("population %d after growth, want %d", s.Count(), target)
	}

	env.PopulationTarget = cfg.Population.Initial
	for i := 0; i < ticksNeeded; i++ {
		s.Advance(cfg.Derived.DT32, env)
	}
	if s.Count() != cfg.Population.Initial {
		t.Errorf("population %d after shrink, want %d", s.Count(), cfg.Population.Initial)
	}
}

func TestSpawn_RejectedAtHardCap(t *testing.T) {
	s := newTestSim(t, 5)
	cfg := config.Cfg()

	spawned := s.spawnCats(cfg.Population.Max+100, false)
	if spawned != cfg.Population.Max-cfg.Population.Initial {
		t.Errorf("spawned %d, want %d", spawned, cfg.Population.Max-cfg.Population.Initial)
	}

	// Hold the target at the cap so the tick does not shrink back toward
	// the initial population.
	s.SetPopulationTarget(cfg.Population.Max)
	s.Advance(cfg.Derived.DT32, nil)
	if s.Count() != cfg.Population.Max {
		t.Errorf("population %d, want hard cap %d", s.Count(), cfg.Population.Max)
	}
}

func TestSetPopulationTarget_ClampsToCap(t *testing.T) {
	s := newTestSim(t, 6)
	cfg := config.Cfg()

	s.SetPopulationTarget(cfg.Population.Max * 2)
	if s.PopulationTarget() != cfg.Population.Max {
		t.Errorf("target %d, want clamp at %d", s.PopulationTarget(), cfg.Population.Max)
	}

	s.SetPopulationTarget(-5)
	if s.PopulationTarget() != cfg.Population.Max {
		t.Error("negative target was not ignored")
	}
}

func TestQueryNeighbors_ExactForAnyRadius(t *testing.T) {
	s := newTestSim(t, 7)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	agents := s.Agents(nil)
	cx, cy := cfg.Derived.ScreenW32/2, cfg.Derived.ScreenH32/2

	for _, radius := range []float32{50, 100, 500, 5000} {
		want := map[uint32]bool{}
		for _, a := range agents {
			dx, dy := a.X-cx, a.Y-cy
			if dx*dx+dy*dy <= radius*radius {
				want[a.ID] = true
			}
		}

		got := s.QueryNeighbors(cx, cy, radius)
		if len(got) != len(want) {
			t.Fatalf("radius %f: got %d neighbors, want %d", radius, len(got), len(want))
		}
		if !sort.SliceIsSorted(got, func(a, b int) bool { return got[a] < got[b] }) {
			t.Fatalf("radius %f: results not in handle order", radius)
		}
		for _, id := range got {
			if !want[id] {
				t.Fatalf("radius %f: unexpected neighbor %d", radius, id)
			}
		}
	}
}

func TestQueryNeighbors_ExactWhenDense(t *testing.T) {
	// Pile more cats onto one point than the grid query can return; the
	// query must still report every one of them.
	s := newTestSim(t, 19)
	s.spawnCats(300, false)
	s.rebuild()

	for i := range s.snap {
		pos := s.posMap.Get(s.snap[i].Entity)
		pos.X, pos.Y = 500, 400
	}
	s.rebuild()

	if s.Count() <= systems.MaxQueryResults {
		t.Fatalf("population %d does not exceed the query cap %d", s.Count(), systems.MaxQueryResults)
	}

	got := s.QueryNeighbors(500, 400, 50)
	if len(got) != s.Count() {
		t.Fatalf("got %d neighbors, want all %d", len(got), s.Count())
	}
	if !sort.SliceIsSorted(got, func(a, b int) bool { return got[a] < got[b] }) {
		t.Error("results not in handle order")
	}
}

func TestQueryNeighbors_InvalidInputs(t *testing.T) {
	s := newTestSim(t, 8)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	nan := float32(math.NaN())
	if got := s.QueryNeighbors(nan, 100, 50); got != nil {
		t.Errorf("NaN x returned %d results", len(got))
	}
	if got := s.QueryNeighbors(100, 100, -1); got != nil {
		t.Errorf("negative radius returned %d results", len(got))
	}
	if got := s.QueryNeighbors(100, 100, nan); got != nil {
		t.Errorf("NaN radius returned %d results", len(got))
	}
}

func TestClick_StartlesNearestCat(t *testing.T) {
	s := newTestSim(t, 9)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	agents := s.Agents(nil)
	targetID := agents[0].ID
	env := &Env{Clicks: []Click{{Kind: ClickStartle, X: agents[0].X, Y: agents[0].Y}}}
	s.Advance(cfg.Derived.DT32, env)

	for _, a := range s.Agents(nil) {
		if a.ID == targetID {
			if a.State != components.StateStartled {
				t.Errorf("clicked cat in state %v, want startled", a.State)
			}
			return
		}
	}
	t.Fatal("clicked cat disappeared")
}

func TestClick_DoesNotRestartleStartledCat(t *testing.T) {
	s := newTestSim(t, 14)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	// A cat mid-startle with plenty of timer left.
	e := s.snap[0].Entity
	st := s.stateMap.Get(e)
	st.State = components.StateStartled
	st.Timer = 30

	pos := s.posMap.Get(e)
	env := &Env{Clicks: []Click{{Kind: ClickStartle, X: pos.X, Y: pos.Y}}}
	s.Advance(cfg.Derived.DT32, env)

	if st.State != components.StateStartled {
		t.Fatalf("cat left startled state: %v", st.State)
	}
	// A restart would reroll the timer down to under two seconds.
	if st.Timer < 29 {
		t.Errorf("startle timer %f, want it still counting down from 30", st.Timer)
	}
}

func TestGifts_CarrierDeliversAtCursor(t *testing.T) {
	s := newTestSim(t, 16)
	cfg := config.Cfg()
	collector := telemetry.NewCollector(60, cfg.Derived.DT32)
	s.SetCollector(collector)
	s.Advance(cfg.Derived.DT32, nil)

	cursorX := cfg.Derived.ScreenW32 / 2
	cursorY := cfg.Derived.ScreenH32 / 2

	// Park everyone far from the cursor, then hand the first cat a gift
	// 80px away from it.
	for i := range s.snap {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		pos.X = 100
		pos.Y = 50 + float32(i)*30
		vel.X, vel.Y = 0, 0
		st.State = components.StateIdle
		st.Timer = 100
	}
	carrier := s.snap[0].Entity
	pos := s.posMap.Get(carrier)
	pos.X = cursorX - 80
	pos.Y = cursorY
	cat := s.catMap.Get(carrier)
	cat.GiftTimer = float32(cfg.Social.GiftCarryTime)

	env := &Env{CursorPresent: true, CursorX: cursorX, CursorY: cursorY}
	delivered := false
	for tick := 0; tick < 240; tick++ {
		s.Advance(cfg.Derived.DT32, env)
		if cat.GiftTimer == 0 {
			delivered = true
			break
		}
	}
	if !delivered {
		t.Fatal("carrier never delivered its gift")
	}

	dropDist := float32(cfg.Social.GiftDropDist)
	dx := s.posMap.Get(carrier).X - cursorX
	dy := s.posMap.Get(carrier).Y - cursorY
	if distSq(dx, dy) > (dropDist+1)*(dropDist+1) {
		t.Errorf("carrier dropped off %f px away, want within %f", sqrt32(distSq(dx, dy)), dropDist)
	}

	stats := collector.Flush(s.Tick(), nil, nil)
	if stats.GiftsDelivered < 1 {
		t.Errorf("gifts delivered %d, want at least 1", stats.GiftsDelivered)
	}
}

func TestAdvance_HourModulatesActivity(t *testing.T) {
	noon := newTestSim(t, 17)
	night := newTestSim(t, 17)
	plain := newTestSim(t, 17)
	dt := config.Cfg().Derived.DT32

	for tick := 0; tick < 600; tick++ {
		noon.Advance(dt, &Env{Hour: 12})
		night.Advance(dt, &Env{Hour: 3})
		plain.Advance(dt, nil)
	}

	// Midday leaves the energy modifier at 1; the clock must not perturb
	// an otherwise identical run.
	noonViews := noon.Agents(nil)
	plainViews := plain.Agents(nil)
	for i := range noonViews {
		a, b := noonViews[i], plainViews[i]
		if a.X != b.X || a.Y != b.Y || a.State != b.State {
			t.Fatalf("cat %d diverged under a noon clock", a.ID)
		}
	}

	// Small hours damp activity; the trajectories must differ.
	nightViews := night.Agents(nil)
	diverged := false
	for i := range nightViews {
		if nightViews[i].X != plainViews[i].X || nightViews[i].Y != plainViews[i].Y ||
			nightViews[i].State != plainViews[i].State {
			diverged = true
			break
		}
	}
	if !diverged {
		t.Error("night hours had no effect on behavior")
	}
}

func TestClick_SpawnsToys(t *testing.T) {
	s := newTestSim(t, 10)
	cfg := config.Cfg()

	env := &Env{Clicks: []Click{
		{Kind: ClickTreat, X: 100, Y: 100},
		{Kind: ClickYarn, X: 200, Y: 200, VX: 50, VY: 0},
		{Kind: ClickLaser, X: 300, Y: 300},
	}}
	s.Advance(cfg.Derived.DT32, env)

	if len(s.Toys().Treats) != 1 {
		t.Errorf("treat count %d, want 1", len(s.Toys().Treats))
	}
	if len(s.Toys().Yarn) != 1 {
		t.Errorf("yarn count %d, want 1", len(s.Toys().Yarn))
	}
	if !s.Toys().Laser.Active {
		t.Error("laser not active after laser click")
	}
}

func TestAdvance_SanitizesBadDT(t *testing.T) {
	s := newTestSim(t, 11)

	s.Advance(float32(math.NaN()), nil)
	s.Advance(-1, nil)
	s.Advance(0, nil)

	for _, a := range s.Agents(nil) {
		if a.X != a.X || a.Y != a.Y {
			t.Fatalf("cat %d corrupted by bad dt", a.ID)
		}
	}
	if s.Tick() != 3 {
		t.Errorf("tick %d, want 3", s.Tick())
	}
}

func TestWakeCascade_SpreadsThroughPile(t *testing.T) {
	s := newTestSim(t, 12)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	// Force four cats into a tight sleeping pile.
	placed := 0
	for i := range s.snap {
		if placed >= 4 {
			break
		}
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		vel := s.velMap.Get(e)
		st := s.stateMap.Get(e)
		pos.X = 400 + float32(placed%2)*20
		pos.Y = 300 + float32(placed/2)*20
		vel.X, vel.Y = 0, 0
		st.State = components.StateSleeping
		st.Timer = 100
		placed++
	}
	// Park everyone else far away so they cannot interfere.
	for i := 4; i < len(s.snap); i++ {
		e := s.snap[i].Entity
		pos := s.posMap.Get(e)
		st := s.stateMap.Get(e)
		pos.X = 1200
		pos.Y = 50 + float32(i)*10
		st.State = components.StateIdle
		st.Timer = 100
	}

	// One tick to register pile membership.
	s.Advance(cfg.Derived.DT32, nil)

	pileIDs := map[uint32]bool{}
	for _, a := range s.Agents(nil) {
		if a.PileMember {
			pileIDs[a.ID] = true
		}
	}
	if len(pileIDs) != 4 {
		t.Fatalf("pile has %d members, want 4", len(pileIDs))
	}

	// Startle one member with a click right on top of it.
	var first AgentView
	for _, a := range s.Agents(nil) {
		if a.PileMember {
			first = a
			break
		}
	}
	env := &Env{Clicks: []Click{{Kind: ClickStartle, X: first.X, Y: first.Y}}}
	s.Advance(cfg.Derived.DT32, env)

	// Within two more ticks the whole pile must be awake.
	s.Advance(cfg.Derived.DT32, nil)
	s.Advance(cfg.Derived.DT32, nil)

	for _, a := range s.Agents(nil) {
		if pileIDs[a.ID] && a.State == components.StateSleeping {
			t.Errorf("pile member %d still sleeping after cascade", a.ID)
		}
	}
}

func TestStatsSamples_MatchesPopulation(t *testing.T) {
	s := newTestSim(t, 13)
	cfg := config.Cfg()
	s.Advance(cfg.Derived.DT32, nil)

	speeds, neighbors := s.StatsSamples()
	if len(speeds) != s.Count() {
		t.Errorf("speed samples %d, want %d", len(speeds), s.Count())
	}
	if len(neighbors) != s.Count() {
		t.Errorf("neighbor samples %d, want %d", len(neighbors), s.Count())
	}
	for _, v := range speeds {
		if v < 0 || math.IsNaN(v) {
			t.Fatalf("bad speed sample %f", v)
		}
	}
}

func TestNextName_GenerationSuffix(t *testing.T) {
	if nextName(1) != "Mochi" {
		t.Errorf("first name %q, want Mochi", nextName(1))
	}
	n := uint32(len(catNames))
	if nextName(n+1) != "Mochi 2" {
		t.Errorf("second generation %q, want Mochi 2", nextName(n+1))
	}
}
