package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clowder/systems"
)

const (
	panelWidth  = 250
	panelHeight = 170
)

// panelRect returns the debug panel bounds.
func (g *Game) panelRect() rl.Rectangle {
	return rl.Rectangle{
		X:      g.cfg.Derived.ScreenW32 - panelWidth - 10,
		Y:      10,
		Width:  panelWidth,
		Height: panelHeight,
	}
}

// panelHovered reports whether the mouse is over the visible panel, so
// panel clicks do not leak into the world as startles.
func (g *Game) panelHovered(mouse rl.Vector2) bool {
	if !g.showPanel {
		return false
	}
	r := g.panelRect()
	return mouse.X >= r.X && mouse.X <= r.X+r.Width && mouse.Y >= r.Y && mouse.Y <= r.Y+r.Height
}

// drawPanel renders the control panel: mode buttons and the population
// target slider.
func (g *Game) drawPanel() {
	r := g.panelRect()
	rl.DrawRectangleRec(r, rl.Color{R: 30, G: 30, B: 40, A: 230})
	rl.DrawRectangleLinesEx(r, 1, rl.Gray)

	x := r.X + 10
	y := r.Y + 10

	rl.DrawText("Clowder", int32(x), int32(y), 16, rl.White)
	y += 26

	modes := []systems.Mode{systems.ModeWork, systems.ModePlay, systems.ModeZen, systems.ModeChaos}
	for i, m := range modes {
		bounds := rl.Rectangle{X: x + float32(i)*57, Y: y, Width: 53, Height: 24}
		if gui.Button(bounds, m.String()) {
			g.sim.Modes().Set(m)
		}
	}
	y += 34

	rl.DrawText("Population target", int32(x), int32(y), 12, rl.Gray)
	y += 16
	target := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: panelWidth - 70, Height: 20},
		"1", fmt.Sprintf("%d", g.cfg.Population.Max),
		float32(g.env.PopulationTarget), 1, float32(g.cfg.Population.Max),
	)
	rl.DrawText(fmt.Sprintf("%d", g.env.PopulationTarget), int32(x+panelWidth-60), int32(y+2), 16, rl.White)
	if int(target) != g.env.PopulationTarget && int(target) >= 1 {
		g.env.PopulationTarget = int(target)
	}
	y += 30

	rl.DrawText(fmt.Sprintf("Alive: %d  Tick: %d", g.sim.Count(), g.sim.Tick()), int32(x), int32(y), 12, rl.Gray)
}
