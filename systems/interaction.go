package systems

import (
	"github.com/pthm-cable/clowder/components"
	"github.com/pthm-cable/clowder/config"
)

// CommandKind identifies a state change decided during the read phase.
type CommandKind uint8

const (
	CmdStartPlay    CommandKind = iota // Idx and Other start playing together
	CmdStartChase                      // Idx starts chasing Other
	CmdFleeChase                       // Idx bolts away from its chaser Other
	CmdJoinNap                         // Idx settles down to sleep next to Other
	CmdCatchZoomies                    // Idx catches zoomies from Other
	CmdCatchYawn                       // Idx catches a yawn from Other
	CmdSeedYawn                        // Idx yawns in its sleep
	CmdWakeStartled                    // Idx is startled awake by a pile cascade from Other
	CmdPounce                          // Idx leaps at the unsuspecting Other
)

// Command is a pending state change. The read phase only appends commands;
// the write phase applies them after all reads are done, so no agent ever
// observes a mid-tick mutation.
type Command struct {
	Kind  CommandKind
	Idx   int32 // Acting snapshot index
	Other int32 // Partner snapshot index, -1 if none
}

// Buffers hold the per-agent accumulators the read phase fills. All slices
// are indexed by snapshot index. Reused across ticks; Reset sizes and
// zeroes them.
type Buffers struct {
	// Flocking steering accumulated from neighbors.
	SteerX, SteerY []float32
	NeighborCount  []int32

	// ParadeLeader is the snapshot index of the lowest-handle qualifying
	// cat in this cat's parade group (possibly itself), or -1 when the cat
	// is not in a parade. Snapshots are handle ordered, so the lowest
	// index is the lowest handle.
	ParadeLeader []int32
	// ParadeAhead is the snapshot index of the nearest aligned cat ahead
	// of this one, or -1 when no one is ahead (this cat fronts the chain).
	ParadeAhead []int32

	// PileLeader is the snapshot index of the lowest-handle sleeping cat
	// within pile radius (possibly itself), or -1 when not in a pile.
	PileLeader []int32

	// ContagionChecked marks sources whose contagion cooldown was consumed
	// this tick.
	ContagionChecked []bool

	Commands []Command

	scratch []Neighbor

	// Parade union-find scratch. Aligned qualifying pairs are unioned into
	// connected components; a component of ParadeMinCats or more is one
	// parade, led by its lowest snapshot index. -1 marks non-qualifiers.
	paradeParent []int32
	paradeSize   []int32
}

// Reset prepares the buffers for a tick over n snapshots.
func (b *Buffers) Reset(n int) {
	if cap(b.SteerX) < n {
		b.SteerX = make([]float32, n)
		b.SteerY = make([]float32, n)
		b.NeighborCount = make([]int32, n)
		b.ParadeLeader = make([]int32, n)
		b.ParadeAhead = make([]int32, n)
		b.PileLeader = make([]int32, n)
		b.ContagionChecked = make([]bool, n)
		b.paradeParent = make([]int32, n)
		b.paradeSize = make([]int32, n)
	}
	b.SteerX = b.SteerX[:n]
	b.SteerY = b.SteerY[:n]
	b.NeighborCount = b.NeighborCount[:n]
	b.ParadeLeader = b.ParadeLeader[:n]
	b.ParadeAhead = b.ParadeAhead[:n]
	b.PileLeader = b.PileLeader[:n]
	b.ContagionChecked = b.ContagionChecked[:n]
	b.paradeParent = b.paradeParent[:n]
	b.paradeSize = b.paradeSize[:n]

	for i := 0; i < n; i++ {
		b.SteerX[i] = 0
		b.SteerY[i] = 0
		b.NeighborCount[i] = 0
		b.ParadeLeader[i] = -1
		b.ParadeAhead[i] = -1
		b.PileLeader[i] = -1
		b.ContagionChecked[i] = false
		b.paradeParent[i] = -1
		b.paradeSize[i] = 0
	}
	b.Commands = b.Commands[:0]
}

// paradeRoot finds the union-find root with path compression.
func paradeRoot(parent []int32, i int32) int32 {
	for parent[i] != i {
		parent[i] = parent[parent[i]]
		i = parent[i]
	}
	return i
}

// paradeUnion joins two components. The higher root attaches under the
// lower one, so every component's root is its lowest snapshot index.
func paradeUnion(parent []int32, a, b int32) {
	if parent[a] < 0 {
		parent[a] = a
	}
	if parent[b] < 0 {
		parent[b] = b
	}
	ra, rb := paradeRoot(parent, a), paradeRoot(parent, b)
	if ra == rb {
		return
	}
	if ra < rb {
		parent[rb] = ra
	} else {
		parent[ra] = rb
	}
}

// contagious reports whether a state spreads to neighbors, and which salt
// and command apply.
func contagious(s components.BehaviorState) (salt uint32, kind CommandKind, ok bool) {
	switch s {
	case components.StateZoomies:
		return SaltZoomieContagion, CmdCatchZoomies, true
	case components.StateYawning:
		return SaltYawnContagion, CmdCatchYawn, true
	}
	return 0, 0, false
}

// ContagionReceptive reports whether a cat in state s can catch the given
// contagion. Zoomies jump to cats on their feet with nothing better to do;
// yawns spread to cats idling or grooming.
func ContagionReceptive(kind CommandKind, s components.BehaviorState) bool {
	if kind == CmdCatchZoomies {
		return s == components.StateIdle || s == components.StateWalking
	}
	return s == components.StateIdle || s == components.StateGrooming
}

// PhaseRead is the read half of the social pass. It iterates start-of-tick
// snapshots, never live agent state, and records every decision into buf.
// All stochastic draws are keyed by agent handles, so the results do not
// depend on snapshot storage or iteration order beyond the handle ordering
// of the snapshots themselves.
func PhaseRead(snap []CatSnapshot, hash *SpatialHash, buf *Buffers, cfg *config.Config, seed uint64) {
	buf.Reset(len(snap))

	flockR := float32(cfg.Flocking.FlockRadius)
	sepR := float32(cfg.Flocking.SeparationRadius)
	sepRSq := sepR * sepR
	interR := float32(cfg.Social.InteractionRadius)
	interRSq := interR * interR
	contR := float32(cfg.Social.ContagionRadius)
	contRSq := contR * contR
	paradeR := float32(cfg.Social.ParadeRadius)
	paradeRSq := paradeR * paradeR
	pileR := float32(cfg.Social.PileRadius)
	pileRSq := pileR * pileR
	wakeR := float32(cfg.Social.WakeCascadeRange)
	wakeRSq := wakeR * wakeR
	alignDot := float32(cfg.Social.ParadeAlignDot)

	for i := range snap {
		s := &snap[i]
		idx := int32(i)

		buf.scratch = hash.QueryRadiusInto(buf.scratch[:0], s.X, s.Y, flockR, idx, snap)

		sleeping := s.State == components.StateSleeping
		moving := s.State.IsMoving()
		social := s.State.CanSocialize()

		speed := velocityMagnitude(s.VX, s.VY)
		hx, hy := float32(0), float32(0)
		if speed > 1e-3 {
			hx, hy = s.VX/speed, s.VY/speed
		}
		paradeSelf := s.State.ParadeQualifies() && speed > 1

		contSalt, contKind, isSource := contagious(s.State)
		if isSource && s.ContagionReady {
			buf.ContagionChecked[i] = true
		}

		// Freshly disturbed pile member: wake the rest of the pile. The
		// membership flag was set from last tick's pile, so this fires on
		// the tick after the disturbance, one hop per tick.
		cascading := s.PileMember && !sleeping

		// Flocking accumulators.
		var cohX, cohY, alignX, alignY float32
		var flockN int32

		// Parade accumulators.
		aheadIdx := int32(-1)
		var aheadDistSq float32

		// Pile accumulators.
		pileCount := 0
		pileMin := idx

		for _, n := range buf.scratch {
			o := &snap[n.Idx]
			buf.NeighborCount[i]++

			// Separation: push apart, stronger when closer.
			if !sleeping && n.DistSq < sepRSq && n.DistSq > 1e-6 {
				d := velocityMagnitude(n.DX, n.DY)
				w := (sepR - d) / sepR
				buf.SteerX[i] -= n.DX / d * w * float32(cfg.Flocking.SeparationStrength)
				buf.SteerY[i] -= n.DY / d * w * float32(cfg.Flocking.SeparationStrength)
			}

			// Cohesion and alignment pull loose walkers together.
			if moving && o.State.IsMoving() {
				cohX += n.DX
				cohY += n.DY
				alignX += o.VX
				alignY += o.VY
				flockN++
			}

			// Parade candidates: aligned walkers nearby. Aligned pairs are
			// unioned so a chain longer than the parade radius still counts
			// as one parade; membership is decided after the sweep.
			if paradeSelf && o.State.ParadeQualifies() && n.DistSq < paradeRSq {
				oSpeed := velocityMagnitude(o.VX, o.VY)
				if oSpeed > 1 {
					dot := (hx*o.VX + hy*o.VY) / oSpeed
					if dot > alignDot {
						paradeUnion(buf.paradeParent, idx, n.Idx)
						// Ahead = in front of our heading. Ties go to the
						// lower handle via strict < on equal distances.
						if n.DX*hx+n.DY*hy > 0 {
							if aheadIdx < 0 || n.DistSq < aheadDistSq ||
								(n.DistSq == aheadDistSq && n.Idx < aheadIdx) {
								aheadIdx = n.Idx
								aheadDistSq = n.DistSq
							}
						}
					}
				}
			}

			// Pile candidates: fellow sleepers in a tight cluster.
			if sleeping && o.State == components.StateSleeping && n.DistSq < pileRSq {
				pileCount++
				if n.Idx < pileMin {
					pileMin = n.Idx
				}
			}

			// Contagion: zoomies and yawns jump to receptive neighbors.
			// Each (source, target) pair draws independently.
			if isSource && s.ContagionReady && n.DistSq < contRSq && ContagionReceptive(contKind, o.State) {
				var p float32
				if contKind == CmdCatchZoomies {
					p = float32(cfg.Social.ZoomieContagion)
				} else {
					p = float32(cfg.Social.YawnContagion)
				}
				if PairChance(seed, s.ID, o.ID, contSalt, p) {
					buf.Commands = append(buf.Commands, Command{Kind: contKind, Idx: n.Idx, Other: idx})
				}
			}

			// Wake cascade: startle sleeping cats near a disturbed pile.
			if cascading && o.State == components.StateSleeping && n.DistSq < wakeRSq {
				buf.Commands = append(buf.Commands, Command{Kind: CmdWakeStartled, Idx: n.Idx, Other: idx})
			}

			// Pair interactions, only for receptive cats.
			if social && n.DistSq < interRSq {
				// Play is mutual: evaluate once per pair, from the lower
				// handle, damped by both cats' skittishness.
				if o.State.CanSocialize() && s.ID < o.ID {
					p := float32(cfg.Social.PlayChance) *
						(1 - s.Personality.Skittishness*0.5) *
						(1 - o.Personality.Skittishness*0.5)
					if PairChance(seed, s.ID, o.ID, SaltPlay, p) {
						buf.Commands = append(buf.Commands, Command{Kind: CmdStartPlay, Idx: idx, Other: n.Idx})
					}
				}

				// Chase is directional: curious, energetic cats start one.
				if o.State.CanSocialize() {
					p := float32(cfg.Social.ChaseChance) * s.Personality.Curiosity * s.Personality.Energy
					if PairChance(seed, s.ID, o.ID, SaltChaseCat, p) {
						buf.Commands = append(buf.Commands, Command{Kind: CmdStartChase, Idx: idx, Other: n.Idx})
						if o.Personality.Skittishness > 0.5 {
							buf.Commands = append(buf.Commands, Command{Kind: CmdFleeChase, Idx: n.Idx, Other: idx})
						}
					}
				}

				// Pounce: an energetic, curious cat springs at a calm
				// neighbor.
				if (s.State == components.StateIdle || s.State == components.StateWalking) &&
					(o.State == components.StateIdle || o.State == components.StateWalking ||
						o.State == components.StateGrooming) &&
					s.Personality.Energy > 0.5 && s.Personality.Curiosity > 0.3 {
					p := float32(cfg.Social.PounceChance) * s.Personality.Energy
					if PairChance(seed, s.ID, o.ID, SaltPounce, p) {
						buf.Commands = append(buf.Commands, Command{Kind: CmdPounce, Idx: idx, Other: n.Idx})
					}
				}

				// Lazy cats join a nearby nap.
				if o.State == components.StateSleeping {
					p := float32(cfg.Social.NapJoinChance) * s.Personality.Laziness
					if PairChance(seed, s.ID, o.ID, SaltNapJoin, p) {
						buf.Commands = append(buf.Commands, Command{Kind: CmdJoinNap, Idx: idx, Other: n.Idx})
					}
				}
			}
		}

		// Fold cohesion and alignment into the steering accumulator.
		if flockN > 0 {
			inv := 1 / float32(flockN)
			cx, cy := limitVec(cohX*inv*float32(cfg.Flocking.CohesionStrength)/10,
				cohY*inv*float32(cfg.Flocking.CohesionStrength)/10,
				float32(cfg.Flocking.MaxCohesion))
			ax, ay := limitVec((alignX*inv-s.VX)*float32(cfg.Flocking.AlignmentStrength)/10,
				(alignY*inv-s.VY)*float32(cfg.Flocking.AlignmentStrength)/10,
				float32(cfg.Flocking.MaxAlignment))
			buf.SteerX[i] += cx + ax
			buf.SteerY[i] += cy + ay
		}
		buf.SteerX[i], buf.SteerY[i] = limitVec(buf.SteerX[i], buf.SteerY[i],
			float32(cfg.Flocking.MaxSeparation)+float32(cfg.Flocking.MaxCohesion)+float32(cfg.Flocking.MaxAlignment))

		if paradeSelf {
			buf.ParadeAhead[i] = aheadIdx
		}

		// A pile needs PileMinNeighbors fellow sleepers.
		if sleeping && pileCount >= cfg.Social.PileMinNeighbors {
			buf.PileLeader[i] = pileMin
		}

		// Sleeping cats occasionally seed a yawn.
		if sleeping && Chance(seed, s.ID, SaltYawnSeed, float32(cfg.Behavior.YawnSeedChance)) {
			buf.Commands = append(buf.Commands, Command{Kind: CmdSeedYawn, Idx: idx, Other: -1})
		}
	}

	// Resolve parades: a connected component of ParadeMinCats or more
	// aligned walkers parades together, led by the component root (its
	// lowest snapshot index, hence lowest handle).
	for i := range snap {
		if buf.paradeParent[i] >= 0 {
			buf.paradeSize[paradeRoot(buf.paradeParent, int32(i))]++
		}
	}
	for i := range snap {
		if buf.paradeParent[i] < 0 {
			continue
		}
		root := paradeRoot(buf.paradeParent, int32(i))
		if int(buf.paradeSize[root]) >= cfg.Social.ParadeMinCats {
			buf.ParadeLeader[i] = root
		}
	}
}
