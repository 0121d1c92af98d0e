package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/clowder/config"
)

func testHeatmap() *Heatmap {
	cfg := &config.HeatmapConfig{
		GridSize:       64,
		Decay:          0.995,
		HeatRate:       2.0,
		AvoidThreshold: 0.3,
		AvoidStrength:  40,
	}
	return NewHeatmap(cfg, 1280, 720)
}

func TestHeatmap_DepositSpreadsIntoRing(t *testing.T) {
	m := testHeatmap()
	dt := float32(1.0 / 60.0)
	m.Deposit(640, 360, dt)

	center := m.Sample(640, 360)
	want := float32(2.0) * dt
	if math.Abs(float64(center-want)) > 1e-6 {
		t.Errorf("center heat %f, want %f", center, want)
	}

	cw, ch := m.CellSize()
	ring := m.Sample(640+cw, 360+ch)
	if math.Abs(float64(ring-want*0.3)) > 1e-6 {
		t.Errorf("ring heat %f, want %f", ring, want*0.3)
	}
}

func TestHeatmap_DecayFadesCells(t *testing.T) {
	m := testHeatmap()
	m.Deposit(640, 360, 1)
	before := m.Sample(640, 360)

	m.Decay()
	after := m.Sample(640, 360)
	want := before * 0.995
	if math.Abs(float64(after-want)) > 1e-6 {
		t.Errorf("after decay %f, want %f", after, want)
	}
}

func TestHeatmap_SampleOutOfRangeIsZero(t *testing.T) {
	m := testHeatmap()
	m.Deposit(0, 0, 1)

	if v := m.Sample(-10, 100); v != 0 {
		t.Errorf("negative x sampled %f", v)
	}
	if v := m.Sample(100, 5000); v != 0 {
		t.Errorf("out-of-range y sampled %f", v)
	}
	if v := m.Sample(float32(math.NaN()), 100); v != 0 {
		t.Errorf("NaN sampled %f", v)
	}
}

func TestHeatmap_AvoidForceGatedByThreshold(t *testing.T) {
	m := testHeatmap()

	// Below threshold: no force.
	m.Deposit(640, 360, 0.05)
	if fx, fy := m.AvoidForce(640, 360); fx != 0 || fy != 0 {
		t.Errorf("below threshold: force (%f, %f)", fx, fy)
	}

	// Pile on heat until well above the threshold.
	for i := 0; i < 60; i++ {
		m.Deposit(640, 360, 1.0/60)
	}
	if m.Sample(640, 360) <= 0.3 {
		t.Fatal("setup failed: heat did not exceed threshold")
	}

	// Force at a point left of the peak should push further left,
	// down the gradient.
	cw, _ := m.CellSize()
	fx, _ := m.AvoidForce(640-cw, 360)
	if fx >= 0 {
		t.Errorf("expected push away from hot center, got fx = %f", fx)
	}
}

func TestHeatmap_DepositNaNIgnored(t *testing.T) {
	m := testHeatmap()
	m.Deposit(float32(math.NaN()), 360, 1)

	for cy := 0; cy < m.GridSize(); cy++ {
		for cx := 0; cx < m.GridSize(); cx++ {
			if m.At(cx, cy) != 0 {
				t.Fatalf("NaN deposit reached cell (%d, %d)", cx, cy)
			}
		}
	}
}
