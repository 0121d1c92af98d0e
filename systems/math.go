package systems

import "math"

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// velocityMagnitude returns the magnitude of a velocity vector.
func velocityMagnitude(vx, vy float32) float32 {
	return float32(math.Sqrt(float64(vx*vx + vy*vy)))
}

// normalizeVec returns the unit vector of (x, y), or (0, 0) for a
// zero-length input.
func normalizeVec(x, y float32) (float32, float32) {
	mag := velocityMagnitude(x, y)
	if mag < 1e-6 {
		return 0, 0
	}
	return x / mag, y / mag
}

// limitVec scales (x, y) down to the given magnitude if it exceeds it.
func limitVec(x, y, maxMag float32) (float32, float32) {
	mag := velocityMagnitude(x, y)
	if mag > maxMag && mag > 0 {
		scale := maxMag / mag
		return x * scale, y * scale
	}
	return x, y
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}
