// Package game is the raylib shell: it feeds desktop input into the
// simulation, steps it on a fixed timestep and renders the swarm.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clowder/config"
	"github.com/pthm-cable/clowder/sim"
	"github.com/pthm-cable/clowder/systems"
	"github.com/pthm-cable/clowder/telemetry"
)

// Options configure a game instance.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game owns the simulation, its telemetry and the render state.
type Game struct {
	cfg *config.Config
	sim *sim.Sim

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	env         sim.Env
	agents      []sim.AgentView
	accumulator float32
	alpha       float32

	lastMouse      rl.Vector2
	paused         bool
	showPanel      bool
	showHeat       bool
	stepsPerUpdate int
}

// NewGameWithOptions creates a game with the given options.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()

	g := &Game{
		cfg:            cfg,
		logStats:       opts.LogStats,
		stepsPerUpdate: opts.StepsPerUpdate,
	}
	if g.stepsPerUpdate < 1 {
		g.stepsPerUpdate = 1
	}

	g.sim = sim.New(cfg, opts.Seed)

	g.collector = telemetry.NewCollector(opts.StatsWindowSec, cfg.Derived.DT32)
	g.perf = telemetry.NewPerfCollector(int(g.collector.WindowDurationTicks()))
	g.sim.SetCollector(g.collector)
	g.sim.SetPerf(g.perf)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	} else if om != nil {
		g.output = om
		if err := g.output.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config snapshot", "error", err)
		}
	}

	g.env.Perches = defaultPerches(cfg)
	g.env.PopulationTarget = cfg.Population.Initial
	// Headless runs stay clock-free; handleInput sets the hour when windowed.
	g.env.Hour = -1

	return g
}

// defaultPerches places a couple of shelf surfaces near the top of the
// screen, standing in for window edges on a real desktop.
func defaultPerches(cfg *config.Config) []systems.PerchRect {
	w := cfg.Derived.ScreenW32
	return []systems.PerchRect{
		{X: w * 0.10, Y: 60, W: w * 0.25},
		{X: w * 0.60, Y: 90, W: w * 0.30},
	}
}

// Update advances the simulation with a fixed-timestep accumulator and
// interpolation alpha for rendering.
func (g *Game) Update() {
	g.perf.RecordFrame()
	g.handleInput()

	if g.paused {
		return
	}

	dt := g.cfg.Derived.DT32
	g.accumulator += rl.GetFrameTime()

	// Cap the backlog so a long stall does not spiral into more stalls.
	if g.accumulator > dt*5 {
		g.accumulator = dt * 5
	}

	for g.accumulator >= dt {
		g.sim.Advance(dt, &g.env)
		g.env.Clicks = g.env.Clicks[:0]
		g.accumulator -= dt
		g.flushTelemetry()
	}

	g.alpha = g.accumulator / dt
}

// UpdateHeadless advances the simulation without graphics or input.
func (g *Game) UpdateHeadless() {
	dt := g.cfg.Derived.DT32
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.sim.Advance(dt, &g.env)
		g.flushTelemetry()
	}
}

// flushTelemetry flushes the stats window when due and writes CSV output.
func (g *Game) flushTelemetry() {
	if g.collector == nil || !g.collector.ShouldFlush(g.sim.Tick()) {
		return
	}

	speeds, neighbors := g.sim.StatsSamples()
	stats := g.collector.Flush(g.sim.Tick(), speeds, neighbors)
	perfStats := g.perf.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Sim exposes the simulation for tests and tooling.
func (g *Game) Sim() *sim.Sim {
	return g.sim
}

// Unload flushes and closes output files.
func (g *Game) Unload() {
	if g.output != nil {
		if err := g.output.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
}
