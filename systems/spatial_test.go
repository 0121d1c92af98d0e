package systems

import (
	"math"
	"math/rand"
	"testing"
)

func buildHash(snap []CatSnapshot) *SpatialHash {
	h := NewSpatialHash(120, 4096)
	for i := range snap {
		h.Insert(int32(i), snap[i].X, snap[i].Y)
	}
	return h
}

func randomSnapshots(n int, w, h float32, seed int64) []CatSnapshot {
	rng := rand.New(rand.NewSource(seed))
	snap := make([]CatSnapshot, n)
	for i := range snap {
		snap[i] = CatSnapshot{
			ID: uint32(i + 1),
			X:  rng.Float32() * w,
			Y:  rng.Float32() * h,
		}
	}
	return snap
}

func bruteForce(snap []CatSnapshot, x, y, radius float32, exclude int32) map[int32]bool {
	got := map[int32]bool{}
	for i := range snap {
		if int32(i) == exclude {
			continue
		}
		dx := snap[i].X - x
		dy := snap[i].Y - y
		if dx*dx+dy*dy <= radius*radius {
			got[int32(i)] = true
		}
	}
	return got
}

func TestQueryRadius_MatchesBruteForce(t *testing.T) {
	snap := randomSnapshots(300, 1280, 720, 7)
	h := buildHash(snap)

	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		x := rng.Float32() * 1280
		y := rng.Float32() * 720
		radius := rng.Float32() * 120

		want := bruteForce(snap, x, y, radius, -1)
		if len(want) >= MaxQueryResults {
			continue
		}

		got := h.QueryRadiusInto(nil, x, y, radius, -1, snap)
		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d neighbors, want %d", trial, len(got), len(want))
		}
		for _, n := range got {
			if !want[n.Idx] {
				t.Errorf("trial %d: unexpected neighbor %d", trial, n.Idx)
			}
			dx := snap[n.Idx].X - x
			dy := snap[n.Idx].Y - y
			if math.Abs(float64(n.DistSq-(dx*dx+dy*dy))) > 1e-3 {
				t.Errorf("trial %d: neighbor %d DistSq mismatch", trial, n.Idx)
			}
		}
	}
}

func TestQueryRadius_ZeroRadiusOnlyExactMatches(t *testing.T) {
	snap := []CatSnapshot{
		{ID: 1, X: 100, Y: 100},
		{ID: 2, X: 100, Y: 100},
		{ID: 3, X: 100.5, Y: 100},
	}
	h := buildHash(snap)

	got := h.QueryRadiusInto(nil, 100, 100, 0, -1, snap)
	if len(got) != 2 {
		t.Fatalf("expected 2 exact matches, got %d", len(got))
	}
	for _, n := range got {
		if n.Idx == 2 {
			t.Error("index 2 is 0.5px away, should not match at radius 0")
		}
	}
}

func TestQueryRadius_ExcludesSelf(t *testing.T) {
	snap := randomSnapshots(50, 500, 500, 3)
	h := buildHash(snap)

	got := h.QueryRadiusInto(nil, snap[10].X, snap[10].Y, 100, 10, snap)
	for _, n := range got {
		if n.Idx == 10 {
			t.Fatal("excluded index returned")
		}
	}
}

func TestQueryRadius_InvalidInputsReturnNothing(t *testing.T) {
	snap := randomSnapshots(20, 500, 500, 5)
	h := buildHash(snap)
	nan := float32(math.NaN())

	if got := h.QueryRadiusInto(nil, 100, 100, -1, -1, snap); len(got) != 0 {
		t.Errorf("negative radius: got %d results", len(got))
	}
	if got := h.QueryRadiusInto(nil, 100, 100, nan, -1, snap); len(got) != 0 {
		t.Errorf("NaN radius: got %d results", len(got))
	}
	if got := h.QueryRadiusInto(nil, nan, 100, 50, -1, snap); len(got) != 0 {
		t.Errorf("NaN origin: got %d results", len(got))
	}
}

func TestQueryRadius_CapsResults(t *testing.T) {
	// 200 cats on the same point, all within radius.
	snap := make([]CatSnapshot, 200)
	for i := range snap {
		snap[i] = CatSnapshot{ID: uint32(i + 1), X: 50, Y: 50}
	}
	h := buildHash(snap)

	got := h.QueryRadiusInto(nil, 50, 50, 10, -1, snap)
	if len(got) != MaxQueryResults {
		t.Errorf("expected cap at %d, got %d", MaxQueryResults, len(got))
	}
}

func TestClear_ReusesBucketsCorrectly(t *testing.T) {
	snapA := randomSnapshots(100, 800, 600, 11)
	h := buildHash(snapA)

	// Rebuild with different content, as the sim does every tick.
	snapB := randomSnapshots(80, 800, 600, 13)
	h.Clear()
	for i := range snapB {
		h.Insert(int32(i), snapB[i].X, snapB[i].Y)
	}

	want := bruteForce(snapB, 400, 300, 100, -1)
	got := h.QueryRadiusInto(nil, 400, 300, 100, -1, snapB)
	if len(got) != len(want) {
		t.Fatalf("after clear: got %d neighbors, want %d", len(got), len(want))
	}
	for _, n := range got {
		if !want[n.Idx] {
			t.Errorf("after clear: stale or wrong neighbor %d", n.Idx)
		}
	}
}

func TestCellCoord_NegativePositions(t *testing.T) {
	if c := cellCoord(-1, 120); c != -1 {
		t.Errorf("cellCoord(-1) = %d, want -1", c)
	}
	if c := cellCoord(-120.5, 120); c != -2 {
		t.Errorf("cellCoord(-120.5) = %d, want -2", c)
	}
	if c := cellCoord(119.9, 120); c != 0 {
		t.Errorf("cellCoord(119.9) = %d, want 0", c)
	}
}
