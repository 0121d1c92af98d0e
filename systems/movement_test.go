package systems

import (
	"math"
	"math/rand"
	"testing"
)

func TestSpeedScale_SizeBands(t *testing.T) {
	cases := []struct {
		size float32
		want float32
	}{
		{0.6, 1.3},
		{1.0, 1.0},
		{1.4, 0.7},
		{0.1, 1.3}, // clamped
		{2.0, 0.7}, // clamped
	}
	for _, c := range cases {
		got := SpeedScale(c.size)
		if math.Abs(float64(got-c.want)) > 1e-5 {
			t.Errorf("SpeedScale(%f) = %f, want %f", c.size, got, c.want)
		}
	}
}

func TestApplyFriction_ComesToRest(t *testing.T) {
	vx, vy := float32(200), float32(0)

	ticks := 0
	for vx != 0 || vy != 0 {
		vx, vy = ApplyFriction(vx, vy, 0.92, 0.5)
		ticks++
		if ticks > 600 {
			t.Fatal("velocity never reached zero")
		}
	}

	// 200 * 0.92^n < 0.5 at n = ceil(ln(0.0025)/ln(0.92)) = 72.
	if ticks != 72 {
		t.Errorf("came to rest after %d ticks, want 72", ticks)
	}
}

func TestApplyFriction_SnapsBelowMinimum(t *testing.T) {
	vx, vy := ApplyFriction(0.3, 0.3, 0.92, 0.5)
	if vx != 0 || vy != 0 {
		t.Errorf("sub-threshold velocity (%f, %f) did not snap to zero", vx, vy)
	}
}

func TestClampToBounds_Fuzz(t *testing.T) {
	const w, h, margin = 1280, 720, 8
	rng := rand.New(rand.NewSource(31))

	for i := 0; i < 10000; i++ {
		x := rng.Float32()*2000 - 400
		y := rng.Float32()*1200 - 300
		vx := rng.Float32()*600 - 300
		vy := rng.Float32()*600 - 300

		cx, cy, cvx, cvy := ClampToBounds(x, y, vx, vy, w, h, margin)

		if cx < margin || cx > w-margin || cy < margin || cy > h-margin {
			t.Fatalf("iteration %d: (%f, %f) escaped bounds", i, cx, cy)
		}
		if cx == margin && cvx < 0 {
			t.Fatalf("iteration %d: velocity still pushing past left edge", i)
		}
		if cx == w-margin && cvx > 0 {
			t.Fatalf("iteration %d: velocity still pushing past right edge", i)
		}
		if cy == margin && cvy < 0 {
			t.Fatalf("iteration %d: velocity still pushing past top edge", i)
		}
		if cy == h-margin && cvy > 0 {
			t.Fatalf("iteration %d: velocity still pushing past bottom edge", i)
		}
	}
}

func TestClampToBounds_InteriorUntouched(t *testing.T) {
	x, y, vx, vy := ClampToBounds(640, 360, -50, 30, 1280, 720, 8)
	if x != 640 || y != 360 || vx != -50 || vy != 30 {
		t.Error("interior position was modified")
	}
}

func TestSanitizeVec_ReplacesNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	x, y, fixed := SanitizeVec(nan, 5, 100, 200)
	if !fixed || x != 100 || y != 5 {
		t.Errorf("NaN x: got (%f, %f, %v)", x, y, fixed)
	}

	x, y, fixed = SanitizeVec(3, inf, 100, 200)
	if !fixed || x != 3 || y != 200 {
		t.Errorf("Inf y: got (%f, %f, %v)", x, y, fixed)
	}

	x, y, fixed = SanitizeVec(3, 5, 100, 200)
	if fixed || x != 3 || y != 5 {
		t.Error("finite vector was modified")
	}
}

func TestEdgePull_TowardNearestEdge(t *testing.T) {
	const w, h = 1280, 720

	// Near the left edge: pull left.
	fx, fy := EdgePull(50, 360, w, h, 0.5, 12)
	if fx >= 0 || fy != 0 {
		t.Errorf("left: got (%f, %f)", fx, fy)
	}

	// Near the top edge: pull up.
	fx, fy = EdgePull(640, 40, w, h, 0.5, 12)
	if fy >= 0 || fx != 0 {
		t.Errorf("top: got (%f, %f)", fx, fy)
	}

	// Zero affinity: no pull.
	fx, fy = EdgePull(50, 360, w, h, 0, 12)
	if fx != 0 || fy != 0 {
		t.Errorf("zero affinity: got (%f, %f)", fx, fy)
	}
}
