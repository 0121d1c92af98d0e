package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/systems"
)

// catPalette maps the appearance color index to a render color.
var catPalette = [8]rl.Color{
	{R: 240, G: 160, B: 80, A: 255},  // orange tabby
	{R: 90, G: 90, B: 100, A: 255},   // gray
	{R: 40, G: 40, B: 48, A: 255},    // black
	{R: 235, G: 235, B: 230, A: 255}, // white
	{R: 160, G: 110, B: 70, A: 255},  // brown
	{R: 200, G: 170, B: 140, A: 255}, // cream
	{R: 120, G: 100, B: 140, A: 255}, // lilac
	{R: 220, G: 190, B: 90, A: 255},  // ginger
}

// Draw renders one frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 24, G: 26, B: 34, A: 255})

	if g.showHeat {
		g.drawHeatmap()
	}
	g.drawPerches()
	g.drawToys()
	g.drawCats()
	g.drawHUD()
	if g.showPanel {
		g.drawPanel()
	}

	rl.EndDrawing()
}

// drawCats renders every cat, interpolated between the last two ticks.
// Coats are tinted for the time of day.
func (g *Game) drawCats() {
	g.agents = g.sim.Agents(g.agents[:0])

	tr, tg, tb := float32(1), float32(1), float32(1)
	if g.env.Hour >= 0 {
		tr, tg, tb = systems.DayNightTint(g.env.Hour)
	}

	for i := range g.agents {
		a := &g.agents[i]

		x := a.PrevX + (a.X-a.PrevX)*g.alpha
		y := a.PrevY + (a.Y-a.PrevY)*g.alpha

		radius := 8 * a.Size
		if a.PileMember {
			// Shared pile breathing: the whole pile swells in sync.
			radius *= 1 + 0.08*float32(math.Sin(float64(a.BreathingPhase)))
		}

		body := catPalette[a.Color%8]
		body.R = uint8(float32(body.R) * tr)
		body.G = uint8(float32(body.G) * tg)
		body.B = uint8(float32(body.B) * tb)
		if a.State == components.StateSleeping {
			body.A = 180
		}

		rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, body)

		// Ears hint at heading; sleeping cats tuck them in.
		if a.State != components.StateSleeping {
			hx, hy := headingOf(a.VX, a.VY)
			earBase := radius * 0.7
			rl.DrawCircleV(rl.Vector2{X: x + hx*earBase - hy*earBase*0.5, Y: y + hy*earBase + hx*earBase*0.5}, radius*0.25, body)
			rl.DrawCircleV(rl.Vector2{X: x + hx*earBase + hy*earBase*0.5, Y: y + hy*earBase - hx*earBase*0.5}, radius*0.25, body)
		}

		// Pattern stripe for tabby/patched coats.
		if a.Pattern > 0 {
			stripe := rl.Color{R: 0, G: 0, B: 0, A: 60}
			rl.DrawCircleV(rl.Vector2{X: x, Y: y - radius*0.3}, radius*0.5, stripe)
		}

		switch a.Parade {
		case components.ParadeLeader:
			rl.DrawCircleLines(int32(x), int32(y), radius+3, rl.Gold)
		case components.ParadeFollower:
			rl.DrawCircleLines(int32(x), int32(y), radius+3, rl.Color{R: 255, G: 215, B: 0, A: 110})
		}

		if a.State == components.StateZoomies {
			rl.DrawCircleLines(int32(x), int32(y), radius+5, rl.Red)
		}
	}
}

// drawToys renders treats, yarn balls and the laser dot.
func (g *Game) drawToys() {
	toys := g.sim.Toys()

	for i := range toys.Treats {
		t := &toys.Treats[i]
		if t.Eaten {
			continue
		}
		rl.DrawCircleV(rl.Vector2{X: t.X, Y: t.Y}, 4, rl.Brown)
	}

	for i := range toys.Yarn {
		yb := &toys.Yarn[i]
		rl.DrawCircleV(rl.Vector2{X: yb.X, Y: yb.Y}, 6, rl.Maroon)
		rl.DrawCircleLines(int32(yb.X), int32(yb.Y), 6, rl.Pink)
	}

	if toys.Laser.Active {
		rl.DrawCircleV(rl.Vector2{X: toys.Laser.X, Y: toys.Laser.Y}, 3, rl.Red)
		rl.DrawCircleLines(int32(toys.Laser.X), int32(toys.Laser.Y), 6, rl.Color{R: 255, G: 0, B: 0, A: 90})
	}
}

// drawPerches renders the perch shelves.
func (g *Game) drawPerches() {
	for _, p := range g.env.Perches {
		rl.DrawLineEx(
			rl.Vector2{X: p.X, Y: p.Y},
			rl.Vector2{X: p.X + p.W, Y: p.Y},
			3,
			rl.Color{R: 120, G: 120, B: 130, A: 160},
		)
	}
}

// drawHeatmap overlays the cursor heat grid. Cells above the avoidance
// threshold glow red.
func (g *Game) drawHeatmap() {
	heat := g.sim.Heat()
	n := heat.GridSize()
	cw, ch := heat.CellSize()
	thresh := heat.Threshold()

	for cy := 0; cy < n; cy++ {
		for cx := 0; cx < n; cx++ {
			v := heat.At(cx, cy)
			if v <= 0.01 {
				continue
			}
			a := uint8(min32(v*40, 120))
			c := rl.Color{R: 255, G: 140, B: 0, A: a}
			if v > thresh {
				c = rl.Color{R: 255, G: 40, B: 40, A: a}
			}
			rl.DrawRectangle(int32(float32(cx)*cw), int32(float32(cy)*ch), int32(cw)+1, int32(ch)+1, c)
		}
	}
}

// drawHUD renders the status line and key help.
func (g *Game) drawHUD() {
	rl.DrawText(fmt.Sprintf("Tick: %d", g.sim.Tick()), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Cats: %d  Mode: %s", g.sim.Count(), g.sim.Modes().Mode()), 10, 35, 20, rl.White)
	rl.DrawText("click: startle  T/L/Y+click: treat/laser/yarn  M: mode  H: heat  Tab: panel", 10, 60, 10, rl.Gray)
	if g.paused {
		rl.DrawText("PAUSED", 10, 80, 20, rl.Yellow)
	}
}

// headingOf returns the unit heading of a velocity, defaulting to up.
func headingOf(vx, vy float32) (float32, float32) {
	mag := float32(math.Sqrt(float64(vx*vx + vy*vy)))
	if mag < 1e-3 {
		return 0, -1
	}
	return vx / mag, vy / mag
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
