package systems

// Day/night cycle. The shell samples the local clock and passes the hour
// in; the simulation only sees a scalar energy modifier, so headless runs
// stay reproducible by passing a fixed hour (or a negative one to opt out).

// DayNightEnergy returns the activity modifier for an hour of day in
// [0, 24). Cats doze through the small hours, ramp up over the morning
// and wind down through the evening.
func DayNightEnergy(hour float32) float32 {
	switch {
	case hour < 5:
		return 0.4
	case hour < 7:
		return 0.4 + smoothstep(5, 7, hour)*0.4
	case hour < 9:
		return 0.8 + smoothstep(7, 9, hour)*0.2
	case hour < 17:
		return 1.0
	case hour < 20:
		return 1.0 - smoothstep(17, 20, hour)*0.2
	case hour < 23:
		return 0.8 - smoothstep(20, 23, hour)*0.4
	default:
		return 0.4
	}
}

// DayNightTint returns the ambient color multiplier for an hour of day,
// for the renderer to modulate cat sprites with.
func DayNightTint(hour float32) (r, g, b float32) {
	night := [3]float32{0.65, 0.68, 0.92}
	dawn := [3]float32{1.0, 0.88, 0.75}
	day := [3]float32{1.0, 1.0, 1.0}
	dusk := [3]float32{1.0, 0.85, 0.72}
	evening := [3]float32{0.78, 0.82, 0.98}

	var c [3]float32
	switch {
	case hour < 5:
		c = night
	case hour < 7:
		c = lerp3(night, dawn, smoothstep(5, 7, hour))
	case hour < 8.5:
		c = lerp3(dawn, day, smoothstep(7, 8.5, hour))
	case hour < 17:
		c = day
	case hour < 19:
		c = lerp3(day, dusk, smoothstep(17, 19, hour))
	case hour < 21:
		c = lerp3(dusk, evening, smoothstep(19, 21, hour))
	case hour < 23:
		c = lerp3(evening, night, smoothstep(21, 23, hour))
	default:
		c = night
	}
	return c[0], c[1], c[2]
}

// smoothstep is the usual hermite ramp clamped to [0, 1].
func smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
