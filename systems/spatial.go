// Package systems provides the simulation systems operating on per-tick
// cat snapshots.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/clowder/components"
)

// CatSnapshot is a start-of-tick copy of the state the read phase consumes.
// Snapshots are rebuilt every tick in handle order, so all iteration over
// them is independent of ECS storage order.
type CatSnapshot struct {
	Entity      ecs.Entity
	ID          uint32
	X, Y        float32
	VX, VY      float32
	State       components.BehaviorState
	Timer       float32
	Size        float32
	Personality components.Personality
	Parade      components.ParadeRole
	PileMember  bool
	Target      ecs.Entity

	// ContagionReady is true when the cat's contagion cooldown expired
	// before this tick started.
	ContagionReady bool
}

// Neighbor holds a nearby snapshot index with precomputed spatial data.
// This avoids recomputing deltas and distances in the read phase.
type Neighbor struct {
	Idx    int32   // Index into the snapshot slice
	DX, DY float32 // Delta from query origin to the neighbor
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// Classic spatial hashing primes.
const (
	hashPrime1 = 73856093
	hashPrime2 = 19349663
)

// SpatialHash provides O(1) amortized neighbor lookups over an unbounded
// plane using a fixed-size hashed bucket table. Buckets hold snapshot
// indices and are rebuilt from scratch every tick.
type SpatialHash struct {
	cellSize  float32
	tableSize uint32
	buckets   [][]int32
	touched   []uint32 // Buckets used since the last Clear
}

// NewSpatialHash creates a spatial hash with the given cell size and
// bucket table size. CellSize must be at least the largest query radius;
// queries scan only the 3x3 cell block around the origin.
func NewSpatialHash(cellSize float32, tableSize int) *SpatialHash {
	return &SpatialHash{
		cellSize:  cellSize,
		tableSize: uint32(tableSize),
		buckets:   make([][]int32, tableSize),
		touched:   make([]uint32, 0, 256),
	}
}

// Clear empties all buckets used since the last clear. Bucket capacity is
// retained so steady-state rebuilds allocate nothing.
func (h *SpatialHash) Clear() {
	for _, b := range h.touched {
		h.buckets[b] = h.buckets[b][:0]
	}
	h.touched = h.touched[:0]
}

// Insert adds a snapshot index at the given position and returns the
// bucket key, which callers may cache on the agent.
func (h *SpatialHash) Insert(idx int32, x, y float32) int32 {
	key := h.hash(cellCoord(x, h.cellSize), cellCoord(y, h.cellSize))
	if len(h.buckets[key]) == 0 {
		h.touched = append(h.touched, key)
	}
	h.buckets[key] = append(h.buckets[key], idx)
	return int32(key)
}

// QueryRadiusInto finds snapshots within radius of (x, y) and appends them
// to dst (up to MaxQueryResults). Returns the updated slice; reuse dst
// across calls to avoid allocations. Pass exclude = -1 to exclude nothing.
// NaN or negative radii yield no results.
func (h *SpatialHash) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude int32, snap []CatSnapshot) []Neighbor {
	if !(radius >= 0) || radius != radius || x != x || y != y {
		return dst
	}

	cx := cellCoord(x, h.cellSize)
	cy := cellCoord(y, h.cellSize)
	radiusSq := radius * radius

	// Distinct cells can collide into the same bucket; visit each bucket
	// once so no neighbor is reported twice.
	var seen [9]uint32
	nSeen := 0

	for dr := int32(-1); dr <= 1; dr++ {
		for dc := int32(-1); dc <= 1; dc++ {
			key := h.hash(cx+dc, cy+dr)

			dup := false
			for i := 0; i < nSeen; i++ {
				if seen[i] == key {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			seen[nSeen] = key
			nSeen++

			for _, idx := range h.buckets[key] {
				if idx == exclude {
					continue
				}

				s := &snap[idx]
				dx := s.X - x
				dy := s.Y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Idx: idx, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// CellKey returns the bucket key for a world position.
func (h *SpatialHash) CellKey(x, y float32) int32 {
	return int32(h.hash(cellCoord(x, h.cellSize), cellCoord(y, h.cellSize)))
}

// hash maps signed cell coordinates to a bucket index.
func (h *SpatialHash) hash(cx, cy int32) uint32 {
	v := uint32(cx)*hashPrime1 ^ uint32(cy)*hashPrime2
	return v % h.tableSize
}

// cellCoord returns the cell coordinate of a world coordinate. Uses floor
// so negative positions land in the correct cell.
func cellCoord(v, cellSize float32) int32 {
	return int32(math.Floor(float64(v / cellSize)))
}
