package sim

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// ecsZero is the zero entity, used as the "no target" sentinel.
var ecsZero = ecs.Entity{}

// sqrt32 is a float32 square root.
func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// normalize returns the unit vector of (x, y), or (0, 0) for zero input.
func normalize(x, y float32) (float32, float32) {
	mag := float32(math.Sqrt(float64(x*x + y*y)))
	if mag < 1e-6 {
		return 0, 0
	}
	return x / mag, y / mag
}
