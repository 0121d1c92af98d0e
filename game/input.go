package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/clowder/sim"
	"github.com/pthm-cable/clowder/systems"
)

// handleInput reads the mouse and keyboard into the sim environment.
// Plain clicks startle; clicks with T, L or Y held spawn toys.
func (g *Game) handleInput() {
	mouse := rl.GetMousePosition()
	moved := mouse.X != g.lastMouse.X || mouse.Y != g.lastMouse.Y
	g.lastMouse = mouse

	g.env.CursorX = mouse.X
	g.env.CursorY = mouse.Y
	g.env.CursorPresent = rl.IsCursorOnScreen()
	g.env.UserActive = moved || rl.IsMouseButtonDown(rl.MouseLeftButton)

	now := time.Now()
	g.env.Hour = float32(now.Hour()) + float32(now.Minute())/60

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) && !g.panelHovered(mouse) {
		kind := sim.ClickStartle
		switch {
		case rl.IsKeyDown(rl.KeyT):
			kind = sim.ClickTreat
		case rl.IsKeyDown(rl.KeyL):
			kind = sim.ClickLaser
		case rl.IsKeyDown(rl.KeyY):
			kind = sim.ClickYarn
		}

		click := sim.Click{Kind: kind, X: mouse.X, Y: mouse.Y}
		if kind == sim.ClickYarn {
			// Throw velocity comes from the cursor motion this frame.
			d := rl.GetMouseDelta()
			if ft := rl.GetFrameTime(); ft > 0 {
				click.VX = d.X / ft
				click.VY = d.Y / ft
			}
		}
		g.env.Clicks = append(g.env.Clicks, click)
		g.env.UserActive = true
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyM) {
		g.sim.Modes().Cycle()
	}
	if rl.IsKeyPressed(rl.KeyOne) {
		g.sim.Modes().Set(systems.ModeWork)
	}
	if rl.IsKeyPressed(rl.KeyTwo) {
		g.sim.Modes().Set(systems.ModePlay)
	}
	if rl.IsKeyPressed(rl.KeyThree) {
		g.sim.Modes().Set(systems.ModeZen)
	}
	if rl.IsKeyPressed(rl.KeyFour) {
		g.sim.Modes().Set(systems.ModeChaos)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.showHeat = !g.showHeat
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.showPanel = !g.showPanel
	}
}
