package systems

// SpeedScale returns the size-dependent speed cap multiplier. Kittens
// (size 0.6) move at 1.3x the base cap, the largest cats (size 1.4) at
// 0.7x, scaling linearly in between.
func SpeedScale(size float32) float32 {
	return clampFloat(1.75-0.75*size, 0.7, 1.3)
}

// ApplyFriction damps a velocity by the per-tick friction factor and snaps
// speeds below minVelocity to zero so cats come to rest instead of
// drifting forever.
func ApplyFriction(vx, vy, friction, minVelocity float32) (float32, float32) {
	vx *= friction
	vy *= friction
	if vx*vx+vy*vy < minVelocity*minVelocity {
		return 0, 0
	}
	return vx, vy
}

// ClampToBounds keeps a position inside [margin, dim-margin] on both axes
// and zeroes the velocity component that pushed it out.
func ClampToBounds(x, y, vx, vy, w, h, margin float32) (float32, float32, float32, float32) {
	if x < margin {
		x = margin
		if vx < 0 {
			vx = 0
		}
	} else if x > w-margin {
		x = w - margin
		if vx > 0 {
			vx = 0
		}
	}
	if y < margin {
		y = margin
		if vy < 0 {
			vy = 0
		}
	} else if y > h-margin {
		y = h - margin
		if vy > 0 {
			vy = 0
		}
	}
	return x, y, vx, vy
}

// SanitizeVec replaces non-finite vector components with the fallback and
// reports whether anything was replaced.
func SanitizeVec(x, y, fallbackX, fallbackY float32) (float32, float32, bool) {
	fixed := false
	if !isFinite(x) {
		x = fallbackX
		fixed = true
	}
	if !isFinite(y) {
		y = fallbackY
		fixed = true
	}
	return x, y, fixed
}

// EdgePull returns a steering force toward the nearest screen edge,
// weighted by affinity. Used by modes that keep cats out of the way.
func EdgePull(x, y, w, h, affinity, strength float32) (float32, float32) {
	if affinity <= 0 {
		return 0, 0
	}

	// Distance to each edge; pull toward the closest one.
	left, right := x, w-x
	top, bottom := y, h-y

	minD := left
	fx, fy := float32(-1), float32(0)
	if right < minD {
		minD = right
		fx, fy = 1, 0
	}
	if top < minD {
		minD = top
		fx, fy = 0, -1
	}
	if bottom < minD {
		fx, fy = 0, 1
	}

	return fx * affinity * strength, fy * affinity * strength
}
