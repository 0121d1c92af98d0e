package systems

import "github.com/pthm-cable/clowder/config"

// Heatmap tracks recent cursor presence on a coarse grid. Cats steer away
// from hot cells, so heavily used screen regions clear out over time.
type Heatmap struct {
	size   int
	cellW  float32
	cellH  float32
	cells  []float32
	decay  float32
	rate   float32
	thresh float32
	avoid  float32
}

// NewHeatmap creates a heatmap covering a world of the given size.
func NewHeatmap(cfg *config.HeatmapConfig, worldW, worldH float32) *Heatmap {
	n := cfg.GridSize
	if n < 1 {
		n = 1
	}
	return &Heatmap{
		size:   n,
		cellW:  worldW / float32(n),
		cellH:  worldH / float32(n),
		cells:  make([]float32, n*n),
		decay:  float32(cfg.Decay),
		rate:   float32(cfg.HeatRate),
		thresh: float32(cfg.AvoidThreshold),
		avoid:  float32(cfg.AvoidStrength),
	}
}

// Deposit adds heat under the cursor: full rate in the cursor's cell and
// a 0.3x spread into the 3x3 ring around it.
func (m *Heatmap) Deposit(x, y, dt float32) {
	cx, cy := m.cell(x, y)
	if cx < 0 {
		return
	}

	amount := m.rate * dt
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			gx, gy := cx+dx, cy+dy
			if gx < 0 || gx >= m.size || gy < 0 || gy >= m.size {
				continue
			}
			a := amount
			if dx != 0 || dy != 0 {
				a *= 0.3
			}
			m.cells[gy*m.size+gx] += a
		}
	}
}

// Decay fades all cells by the per-tick decay factor.
func (m *Heatmap) Decay() {
	for i := range m.cells {
		m.cells[i] *= m.decay
	}
}

// Sample returns the heat at a world position. Out-of-range positions
// sample as zero.
func (m *Heatmap) Sample(x, y float32) float32 {
	cx, cy := m.cell(x, y)
	if cx < 0 {
		return 0
	}
	return m.cells[cy*m.size+cx]
}

// AvoidForce returns a steering force pushing down the local heat gradient
// when the sampled heat exceeds the avoidance threshold, and (0, 0)
// otherwise. The gradient is a central difference over neighboring cells.
func (m *Heatmap) AvoidForce(x, y float32) (float32, float32) {
	if m.Sample(x, y) <= m.thresh {
		return 0, 0
	}

	gx := m.Sample(x+m.cellW, y) - m.Sample(x-m.cellW, y)
	gy := m.Sample(x, y+m.cellH) - m.Sample(x, y-m.cellH)

	nx, ny := normalizeVec(gx, gy)
	return -nx * m.avoid, -ny * m.avoid
}

// GridSize returns the grid dimension in cells.
func (m *Heatmap) GridSize() int { return m.size }

// CellSize returns the world-space width and height of one cell.
func (m *Heatmap) CellSize() (float32, float32) { return m.cellW, m.cellH }

// At returns the heat of grid cell (cx, cy), zero when out of range.
func (m *Heatmap) At(cx, cy int) float32 {
	if cx < 0 || cx >= m.size || cy < 0 || cy >= m.size {
		return 0
	}
	return m.cells[cy*m.size+cx]
}

// Threshold returns the avoidance threshold, for debug overlays.
func (m *Heatmap) Threshold() float32 { return m.thresh }

// cell returns grid coordinates for a world position, or (-1, -1) when the
// position is outside the grid or not finite.
func (m *Heatmap) cell(x, y float32) (int, int) {
	if !isFinite(x) || !isFinite(y) {
		return -1, -1
	}
	cx := int(x / m.cellW)
	cy := int(y / m.cellH)
	if cx < 0 || cx >= m.size || cy < 0 || cy >= m.size {
		return -1, -1
	}
	return cx, cy
}
