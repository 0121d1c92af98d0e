// Package telemetry aggregates simulation events into windowed stats and
// writes them to CSV for offline analysis.
package telemetry

import "github.com/pthm-cable/clowder/components"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float32

	windowStartTick int64

	// Event counters for the current window
	transitions     int
	zoomieContagion int
	yawnContagion   int
	cascadeWakes    int
	paradesFormed   int
	pilesFormed     int
	rejectedSpawns  int
	sanitized       int
	giftsDelivered  int

	// Gauges, overwritten every tick
	population  int
	paradeCount int
	pileCount   int
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	// Round, don't truncate: float32(1/60) divides 1.0 into 59.9999...
	ticksPerWindow := int64(windowDurationSec/float64(dt) + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTransition records a behavior state change.
func (c *Collector) RecordTransition(from, to components.BehaviorState) {
	c.transitions++
}

// RecordContagion records a caught zoomie or yawn.
func (c *Collector) RecordContagion(state components.BehaviorState) {
	if state == components.StateZoomies {
		c.zoomieContagion++
	} else {
		c.yawnContagion++
	}
}

// RecordCascadeWake records a cat startled awake by a pile cascade.
func (c *Collector) RecordCascadeWake() {
	c.cascadeWakes++
}

// RecordParadeFormed records a newly formed parade.
func (c *Collector) RecordParadeFormed() {
	c.paradesFormed++
}

// RecordPileFormed records a newly formed sleeping pile.
func (c *Collector) RecordPileFormed() {
	c.pilesFormed++
}

// RecordRejectedSpawns records spawn requests rejected at the population cap.
func (c *Collector) RecordRejectedSpawns(n int) {
	c.rejectedSpawns += n
}

// RecordSanitized records a non-finite value replaced during movement.
func (c *Collector) RecordSanitized() {
	c.sanitized++
}

// RecordGiftDelivered records a gift dropped at the cursor.
func (c *Collector) RecordGiftDelivered() {
	c.giftsDelivered++
}

// SetGauges overwrites the per-tick gauges.
func (c *Collector) SetGauges(population, parades, piles int) {
	c.population = population
	c.paradeCount = parades
	c.pileCount = piles
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds and neighborCounts are per-cat samples taken at window end.
func (c *Collector) Flush(currentTick int64, speeds, neighborCounts []float64) WindowStats {
	speedMean, speedStd, speedP50, speedP90 := ComputeDistStats(speeds)
	nbrMean, _, nbrP50, nbrP90 := ComputeDistStats(neighborCounts)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Population:  c.population,
		ParadeCount: c.paradeCount,
		PileCount:   c.pileCount,

		Transitions:     c.transitions,
		ZoomieContagion: c.zoomieContagion,
		YawnContagion:   c.yawnContagion,
		CascadeWakes:    c.cascadeWakes,
		ParadesFormed:   c.paradesFormed,
		PilesFormed:     c.pilesFormed,
		RejectedSpawns:  c.rejectedSpawns,
		Sanitized:       c.sanitized,
		GiftsDelivered:  c.giftsDelivered,

		SpeedMean:     speedMean,
		SpeedStd:      speedStd,
		SpeedP50:      speedP50,
		SpeedP90:      speedP90,
		NeighborsMean: nbrMean,
		NeighborsP50:  nbrP50,
		NeighborsP90:  nbrP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.transitions = 0
	c.zoomieContagion = 0
	c.yawnContagion = 0
	c.cascadeWakes = 0
	c.paradesFormed = 0
	c.pilesFormed = 0
	c.rejectedSpawns = 0
	c.sanitized = 0
	c.giftsDelivered = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
