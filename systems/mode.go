package systems

import "github.com/pthm-cable/clowder/config"

// Mode is a user-selectable activity preset.
type Mode uint8

const (
	ModeWork Mode = iota
	ModePlay
	ModeZen
	ModeChaos
)

var modeNames = [...]string{"work", "play", "zen", "chaos"}

// String returns the lowercase name of the mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ModeParams are the per-tick knobs the active mode sets.
type ModeParams struct {
	EnergyScale  float32 // Multiplies activity weights in state transitions
	EdgeAffinity float32 // Pull toward screen edges, 0 = none
	ChaseEnabled bool    // Whether cats may chase the cursor
}

// ModeEvents carry population actions requested by AFK escalation.
type ModeEvents struct {
	SpawnBonus   int  // Bonus cats to spawn this tick
	DespawnBonus bool // User returned: remove all bonus cats
	Scatter      bool // User returned from deep AFK: scatter the swarm
}

// ModeState tracks the active mode and how long the user has been away.
// While the user is AFK the swarm gradually loosens up: edge affinity
// relaxes first, then activity rises, and after a long absence the state
// settles into Zen and slowly grows the population.
type ModeState struct {
	mode       Mode
	afkFor     float64
	bonusAccum float64
	bonusAlive int
}

// NewModeState creates mode tracking starting in the given mode.
func NewModeState(initial Mode) *ModeState {
	return &ModeState{mode: initial}
}

// Mode returns the active mode.
func (s *ModeState) Mode() Mode { return s.mode }

// Set switches the active mode.
func (s *ModeState) Set(m Mode) { s.mode = m }

// Cycle advances to the next mode, wrapping after Chaos.
func (s *ModeState) Cycle() {
	s.mode = (s.mode + 1) % Mode(len(modeNames))
}

// BonusAlive returns how many AFK bonus cats the sim has reported alive.
func (s *ModeState) BonusAlive() int { return s.bonusAlive }

// SetBonusAlive records the current AFK bonus population, set by the sim
// after spawns and despawns settle.
func (s *ModeState) SetBonusAlive(n int) { s.bonusAlive = n }

// Update advances AFK tracking by dt. active reports whether any user
// input was seen this tick. Returns the effective params for this tick
// and any population events.
func (s *ModeState) Update(dt float64, active bool, cfg *config.ModesConfig) (ModeParams, ModeEvents) {
	var events ModeEvents

	if active {
		if s.afkFor >= cfg.AfkZenAfter {
			events.DespawnBonus = true
			events.Scatter = true
		}
		s.afkFor = 0
		s.bonusAccum = 0
	} else {
		s.afkFor += dt
	}

	params := s.baseParams(cfg)

	if s.afkFor >= cfg.AfkRelaxAfter {
		params.EdgeAffinity = 0
	}
	if s.afkFor >= cfg.AfkEnergyAfter {
		params.EnergyScale *= 1.5
	}
	if s.afkFor >= cfg.AfkZenAfter {
		params = ModeParams{EnergyScale: float32(cfg.ZenEnergyScale), ChaseEnabled: false}

		if s.bonusAlive < cfg.AfkBonusCap {
			s.bonusAccum += dt * cfg.AfkSpawnPerMin / 60
			if s.bonusAccum >= 1 {
				n := int(s.bonusAccum)
				s.bonusAccum -= float64(n)
				if s.bonusAlive+n > cfg.AfkBonusCap {
					n = cfg.AfkBonusCap - s.bonusAlive
				}
				events.SpawnBonus = n
			}
		}
	}

	return params, events
}

// baseParams returns the preset for the active mode.
func (s *ModeState) baseParams(cfg *config.ModesConfig) ModeParams {
	switch s.mode {
	case ModeWork:
		return ModeParams{
			EnergyScale:  float32(cfg.WorkEnergyScale),
			EdgeAffinity: float32(cfg.WorkEdgeAffinity),
			ChaseEnabled: false,
		}
	case ModeZen:
		return ModeParams{EnergyScale: float32(cfg.ZenEnergyScale), ChaseEnabled: false}
	case ModeChaos:
		return ModeParams{EnergyScale: float32(cfg.ChaosEnergyScale), ChaseEnabled: true}
	default:
		return ModeParams{EnergyScale: 1.0, ChaseEnabled: true}
	}
}
