package systems

import (
	"math"

	"github.com/pthm-cable/clowder/config"
)

// Treat attracts nearby cats until it expires or a cat reaches it.
type Treat struct {
	X, Y  float32
	Age   float32
	Eaten bool
}

// Laser is the dot cats chase during a laser frenzy. It trails the cursor
// with positional jitter so the chase never settles.
type Laser struct {
	X, Y   float32
	Age    float32
	Active bool
}

// YarnBall rolls with its own physics: friction, wall bounce and pushes
// from the cursor or batting cats.
type YarnBall struct {
	X, Y   float32
	VX, VY float32
	Age    float32
}

// Toys owns all toy state. The shell spawns toys from input events; the
// sim queries them during the tick and steps their physics.
type Toys struct {
	Treats []Treat
	Yarn   []YarnBall
	Laser  Laser

	cfg *config.ToysConfig
}

// NewToys creates an empty toy box.
func NewToys(cfg *config.ToysConfig) *Toys {
	return &Toys{cfg: cfg}
}

// DropTreat places a treat, respecting the treat cap.
func (t *Toys) DropTreat(x, y float32) bool {
	if !isFinite(x) || !isFinite(y) || len(t.Treats) >= t.cfg.MaxTreats {
		return false
	}
	t.Treats = append(t.Treats, Treat{X: x, Y: y})
	return true
}

// ThrowYarn launches a yarn ball, respecting the yarn cap.
func (t *Toys) ThrowYarn(x, y, vx, vy float32) bool {
	if !isFinite(x) || !isFinite(y) || len(t.Yarn) >= t.cfg.MaxYarnBalls {
		return false
	}
	vx, vy, _ = SanitizeVec(vx, vy, 0, 0)
	t.Yarn = append(t.Yarn, YarnBall{X: x, Y: y, VX: vx, VY: vy})
	return true
}

// StartLaser begins a laser frenzy at the given point.
func (t *Toys) StartLaser(x, y float32) {
	if !isFinite(x) || !isFinite(y) {
		return
	}
	t.Laser = Laser{X: x, Y: y, Active: true}
}

// Update steps toy lifetimes and physics for one tick. The laser dot
// trails the cursor with jitter; yarn balls roll, bounce off the screen
// edges and get nudged by a nearby cursor.
func (t *Toys) Update(dt, w, h float32, cursor *CursorTracker, seed uint64) {
	// Treats expire; eaten ones are removed immediately.
	keep := t.Treats[:0]
	for _, tr := range t.Treats {
		tr.Age += dt
		if !tr.Eaten && tr.Age < float32(t.cfg.TreatLifetime) {
			keep = append(keep, tr)
		}
	}
	t.Treats = keep

	if t.Laser.Active {
		t.Laser.Age += dt
		if t.Laser.Age >= float32(t.cfg.LaserDuration) {
			t.Laser.Active = false
		} else {
			// Trail the cursor, jittered per tick so the dot darts around.
			jx := (Draw(seed, 0, SaltLaser) - 0.5) * 2 * float32(t.cfg.LaserJitter)
			jy := (Draw(seed, 1, SaltLaser) - 0.5) * 2 * float32(t.cfg.LaserJitter)
			tx := cursor.X + jx
			ty := cursor.Y + jy

			dx, dy := normalizeVec(tx-t.Laser.X, ty-t.Laser.Y)
			t.Laser.X += dx * float32(t.cfg.LaserSpeed) * dt
			t.Laser.Y += dy * float32(t.cfg.LaserSpeed) * dt
		}
	}

	keepYarn := t.Yarn[:0]
	for _, yb := range t.Yarn {
		yb.Age += dt
		if yb.Age >= float32(t.cfg.YarnLifetime) {
			continue
		}

		// Cursor nudges nearby yarn.
		dx := yb.X - cursor.X
		dy := yb.Y - cursor.Y
		if d := velocityMagnitude(dx, dy); d < 30 && d > 1e-3 {
			yb.VX += dx / d * 60
			yb.VY += dy / d * 60
		}

		fr := float32(math.Pow(float64(t.cfg.YarnFriction), float64(dt*60)))
		yb.VX *= fr
		yb.VY *= fr
		yb.X += yb.VX * dt
		yb.Y += yb.VY * dt

		bounce := float32(t.cfg.YarnBounce)
		if yb.X < 0 {
			yb.X, yb.VX = 0, -yb.VX*bounce
		} else if yb.X > w {
			yb.X, yb.VX = w, -yb.VX*bounce
		}
		if yb.Y < 0 {
			yb.Y, yb.VY = 0, -yb.VY*bounce
		} else if yb.Y > h {
			yb.Y, yb.VY = h, -yb.VY*bounce
		}

		keepYarn = append(keepYarn, yb)
	}
	t.Yarn = keepYarn
}

// Bat applies a batting impulse to the yarn ball at index i, away from the
// batting cat.
func (t *Toys) Bat(i int, fromX, fromY float32) {
	if i < 0 || i >= len(t.Yarn) {
		return
	}
	yb := &t.Yarn[i]
	dx, dy := normalizeVec(yb.X-fromX, yb.Y-fromY)
	yb.VX += dx * float32(t.cfg.YarnBatSpeed)
	yb.VY += dy * float32(t.cfg.YarnBatSpeed)
}

// EatTreat marks the treat at index i as eaten.
func (t *Toys) EatTreat(i int) {
	if i >= 0 && i < len(t.Treats) {
		t.Treats[i].Eaten = true
	}
}
