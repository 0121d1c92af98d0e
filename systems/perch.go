package systems

// PerchRect is a horizontal surface cats may sit on, such as a window
// titlebar. Only the top edge matters: X/Y is its left end, W its width.
type PerchRect struct {
	X, Y, W float32
}

// NearestPerch returns the index of the perch whose top edge is closest to
// (x, y) within snapDist, or -1 if none qualifies. Equidistant perches
// resolve to the lowest index, so a stable env ordering gives stable picks.
func NearestPerch(perches []PerchRect, x, y, snapDist float32) int {
	best := -1
	bestDist := snapDist
	for i, p := range perches {
		if x < p.X || x > p.X+p.W {
			continue
		}
		d := y - p.Y
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// PerchPatrol returns the patrol velocity for a cat sitting on a perch,
// walking back and forth along it. The cat turns around at the ends.
func PerchPatrol(p PerchRect, x, vx, walkSpeed float32) float32 {
	if vx == 0 {
		vx = walkSpeed
	}
	if x <= p.X+4 {
		return walkSpeed
	}
	if x >= p.X+p.W-4 {
		return -walkSpeed
	}
	if vx > 0 {
		return walkSpeed
	}
	return -walkSpeed
}
