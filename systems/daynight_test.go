package systems

import "testing"

func TestDayNightEnergy_CurveAnchors(t *testing.T) {
	cases := []struct{ hour, want float32 }{
		{0, 0.4},
		{3, 0.4},
		{9, 1.0},
		{12, 1.0},
		{16.5, 1.0},
		{23.5, 0.4},
	}
	for _, c := range cases {
		got := DayNightEnergy(c.hour)
		if got < c.want-1e-4 || got > c.want+1e-4 {
			t.Errorf("hour %.1f: energy %f, want %f", c.hour, got, c.want)
		}
	}
}

func TestDayNightEnergy_MorningRampMonotone(t *testing.T) {
	prev := DayNightEnergy(5)
	for h := float32(5.25); h <= 9; h += 0.25 {
		cur := DayNightEnergy(h)
		if cur < prev {
			t.Fatalf("energy dipped from %f to %f at hour %.2f", prev, cur, h)
		}
		prev = cur
	}
	if prev < 1-1e-4 {
		t.Errorf("ramp ends at %f, want 1.0", prev)
	}
}

func TestDayNightTint_NoonWhiteNightBlue(t *testing.T) {
	r, g, b := DayNightTint(12)
	if r != 1 || g != 1 || b != 1 {
		t.Errorf("noon tint (%f, %f, %f), want white", r, g, b)
	}

	r, _, b = DayNightTint(3)
	if b <= r {
		t.Errorf("night tint r=%f b=%f, want blue-shifted", r, b)
	}
	if r >= 1 {
		t.Errorf("night tint r=%f, want dimmed", r)
	}
}
