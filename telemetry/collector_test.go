package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/clowder/components"
)

func TestCollector_FlushCadence(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	if c.WindowDurationTicks() != 60 {
		t.Fatalf("window ticks %d, want 60", c.WindowDurationTicks())
	}
	if c.ShouldFlush(59) {
		t.Error("flushed one tick early")
	}
	if !c.ShouldFlush(60) {
		t.Error("did not flush at the window boundary")
	}

	c.Flush(60, nil, nil)
	if c.ShouldFlush(119) {
		t.Error("flushed early in the second window")
	}
	if !c.ShouldFlush(120) {
		t.Error("did not flush at the second boundary")
	}
}

func TestCollector_TinyWindowClampsToOneTick(t *testing.T) {
	c := NewCollector(0.001, 1.0/60.0)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("window ticks %d, want minimum 1", c.WindowDurationTicks())
	}
}

func TestCollector_CountersResetOnFlush(t *testing.T) {
	c := NewCollector(1.0, 1.0/60.0)

	c.RecordTransition(components.StateIdle, components.StateWalking)
	c.RecordContagion(components.StateZoomies)
	c.RecordContagion(components.StateZoomies)
	c.RecordContagion(components.StateYawning)
	c.RecordCascadeWake()
	c.RecordParadeFormed()
	c.RecordPileFormed()
	c.RecordRejectedSpawns(3)
	c.RecordSanitized()
	c.RecordGiftDelivered()
	c.SetGauges(42, 1, 2)

	stats := c.Flush(60, nil, nil)
	if stats.Transitions != 1 {
		t.Errorf("transitions %d, want 1", stats.Transitions)
	}
	if stats.ZoomieContagion != 2 || stats.YawnContagion != 1 {
		t.Errorf("contagion %d/%d, want 2/1", stats.ZoomieContagion, stats.YawnContagion)
	}
	if stats.CascadeWakes != 1 || stats.ParadesFormed != 1 || stats.PilesFormed != 1 {
		t.Error("event counters wrong")
	}
	if stats.RejectedSpawns != 3 || stats.Sanitized != 1 {
		t.Error("rejection/sanitize counters wrong")
	}
	if stats.GiftsDelivered != 1 {
		t.Errorf("gifts delivered %d, want 1", stats.GiftsDelivered)
	}
	if stats.Population != 42 || stats.ParadeCount != 1 || stats.PileCount != 2 {
		t.Error("gauges wrong")
	}

	next := c.Flush(120, nil, nil)
	if next.Transitions != 0 || next.ZoomieContagion != 0 || next.CascadeWakes != 0 {
		t.Error("counters not reset after flush")
	}
	// Gauges persist; they are overwritten each tick, not accumulated.
	if next.Population != 42 {
		t.Errorf("gauge population %d, want 42", next.Population)
	}
}

func TestComputeDistStats_KnownValues(t *testing.T) {
	mean, std, p50, p90 := ComputeDistStats([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("mean %f, want 5.5", mean)
	}
	if std <= 0 {
		t.Errorf("std %f, want positive", std)
	}
	if p50 < 5 || p50 > 6 {
		t.Errorf("p50 %f, want in [5, 6]", p50)
	}
	if p90 < 9 || p90 > 10 {
		t.Errorf("p90 %f, want in [9, 10]", p90)
	}
}

func TestComputeDistStats_EmptyAndSingle(t *testing.T) {
	mean, std, p50, p90 := ComputeDistStats(nil)
	if mean != 0 || std != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty sample set should produce zeros")
	}

	mean, std, p50, _ = ComputeDistStats([]float64{7})
	if mean != 7 || std != 0 || p50 != 7 {
		t.Errorf("single sample: mean %f std %f p50 %f", mean, std, p50)
	}
}

func TestComputeDistStats_DoesNotMutateInput(t *testing.T) {
	in := []float64{9, 1, 5, 3}
	ComputeDistStats(in)
	if in[0] != 9 || in[1] != 1 || in[2] != 5 || in[3] != 3 {
		t.Error("input slice was reordered")
	}
}
