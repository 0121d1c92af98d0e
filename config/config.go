// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Spatial    SpatialConfig    `yaml:"spatial"`
	Population PopulationConfig `yaml:"population"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Cursor     CursorConfig     `yaml:"cursor"`
	Flocking   FlockingConfig   `yaml:"flocking"`
	Social     SocialConfig     `yaml:"social"`
	Heatmap    HeatmapConfig    `yaml:"heatmap"`
	Perch      PerchConfig      `yaml:"perch"`
	Toys       ToysConfig       `yaml:"toys"`
	Modes      ModesConfig      `yaml:"modes"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds movement integration parameters.
type PhysicsConfig struct {
	DT          float64 `yaml:"dt"`           // Seconds per simulation tick
	Friction    float64 `yaml:"friction"`     // Velocity multiplier applied each tick
	MinVelocity float64 `yaml:"min_velocity"` // Speeds below this snap to zero
	MaxSpeed    float64 `yaml:"max_speed"`    // Base speed cap before size scaling
	Margin      float64 `yaml:"margin"`       // Screen bounds margin in pixels
}

// SpatialConfig holds spatial hash parameters.
// CellSize must be at least the largest query radius used anywhere so a
// 3x3 cell scan can never miss a true neighbor.
type SpatialConfig struct {
	CellSize  float64 `yaml:"cell_size"`
	TableSize int     `yaml:"table_size"` // 0 = derived from population.max
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial      int `yaml:"initial"`
	Max          int `yaml:"max"`            // Hard cap; spawns above it are rejected
	StepsPerTick int `yaml:"steps_per_tick"` // Max spawns/despawns per tick toward target
}

// BehaviorConfig holds state machine parameters.
type BehaviorConfig struct {
	WalkSpeed        float64 `yaml:"walk_speed"`
	RunSpeed         float64 `yaml:"run_speed"`
	ZoomieSpeed      float64 `yaml:"zoomie_speed"`
	ZoomieSeedChance float64 `yaml:"zoomie_seed_chance"` // Per-transition weight, energy scaled
	YawnSeedChance   float64 `yaml:"yawn_seed_chance"`   // Per-tick chance a sleeper seeds a yawn
}

// CursorConfig holds cursor reaction parameters.
type CursorConfig struct {
	NoticeRadius        float64 `yaml:"notice_radius"`
	ChaseSpeed          float64 `yaml:"chase_speed"`
	FleeSpeedMin        float64 `yaml:"flee_speed_min"`
	FleeSpeedMax        float64 `yaml:"flee_speed_max"`
	MosesRadius         float64 `yaml:"moses_radius"`
	MosesSpeedThreshold float64 `yaml:"moses_speed_threshold"`
	MosesStrength       float64 `yaml:"moses_strength"`
	StillThreshold      float64 `yaml:"still_threshold"`   // Cursor speed below this counts as still
	StillCreepAfter     float64 `yaml:"still_creep_after"` // Seconds still before curious cats creep
	CreepSpeed          float64 `yaml:"creep_speed"`
}

// FlockingConfig holds boid steering parameters.
type FlockingConfig struct {
	SeparationRadius   float64 `yaml:"separation_radius"`
	SeparationStrength float64 `yaml:"separation_strength"`
	MaxSeparation      float64 `yaml:"max_separation"`
	FlockRadius        float64 `yaml:"flock_radius"`
	CohesionStrength   float64 `yaml:"cohesion_strength"`
	MaxCohesion        float64 `yaml:"max_cohesion"`
	AlignmentStrength  float64 `yaml:"alignment_strength"`
	MaxAlignment       float64 `yaml:"max_alignment"`
}

// SocialConfig holds pair interaction, contagion, parade and pile parameters.
type SocialConfig struct {
	InteractionRadius float64 `yaml:"interaction_radius"`
	PlayChance        float64 `yaml:"play_chance"`
	ChaseChance       float64 `yaml:"chase_chance"`
	NapJoinChance     float64 `yaml:"nap_join_chance"`
	CatChaseSpeed     float64 `yaml:"cat_chase_speed"`
	CatFleeSpeed      float64 `yaml:"cat_flee_speed"`
	PlaySpeed         float64 `yaml:"play_speed"`
	ChaseGiveUpDist   float64 `yaml:"chase_give_up_dist"`
	PlayGiveUpDist    float64 `yaml:"play_give_up_dist"`

	PounceChance float64 `yaml:"pounce_chance"` // Per neighbor per tick, energy scaled
	PounceSpeed  float64 `yaml:"pounce_speed"`  // Leap speed toward the target

	GiftChance      float64 `yaml:"gift_chance"` // Per tick for an eligible curious cat
	GiftCarrySpeed  float64 `yaml:"gift_carry_speed"`
	GiftDropDist    float64 `yaml:"gift_drop_dist"`  // Distance to the cursor that counts as delivered
	GiftCarryTime   float64 `yaml:"gift_carry_time"` // Seconds before a carrier loses interest
	MaxGiftCarriers int     `yaml:"max_gift_carriers"`

	ContagionRadius   float64 `yaml:"contagion_radius"`
	ZoomieContagion   float64 `yaml:"zoomie_contagion"`   // Per eligible neighbor per check
	YawnContagion     float64 `yaml:"yawn_contagion"`     // Per eligible neighbor per check
	ContagionInterval float64 `yaml:"contagion_interval"` // Seconds between checks per source

	ParadeRadius     float64 `yaml:"parade_radius"`
	ParadeMinCats    int     `yaml:"parade_min_cats"`
	ParadeAlignDot   float64 `yaml:"parade_align_dot"` // Heading similarity threshold
	ParadeFollowDist float64 `yaml:"parade_follow_dist"`
	ParadeSpeed      float64 `yaml:"parade_speed"`

	PileRadius       float64 `yaml:"pile_radius"`
	PileMinNeighbors int     `yaml:"pile_min_neighbors"`
	WakeCascadeRange float64 `yaml:"wake_cascade_range"`
}

// HeatmapConfig holds cursor heat grid parameters.
type HeatmapConfig struct {
	GridSize       int     `yaml:"grid_size"`
	Decay          float64 `yaml:"decay"`     // Multiplier per tick
	HeatRate       float64 `yaml:"heat_rate"` // Accumulation per second under the cursor
	AvoidThreshold float64 `yaml:"avoid_threshold"`
	AvoidStrength  float64 `yaml:"avoid_strength"`
}

// PerchConfig holds titlebar perching parameters.
type PerchConfig struct {
	SnapDist  float64 `yaml:"snap_dist"`
	Chance    float64 `yaml:"chance"` // Per tick for an eligible cat near a perch edge
	WalkSpeed float64 `yaml:"walk_speed"`
}

// ToysConfig holds click, treat, laser and yarn parameters.
type ToysConfig struct {
	StartleRadius     float64 `yaml:"startle_radius"`
	ClickFleeRadius   float64 `yaml:"click_flee_radius"`
	ClickFleeStrength float64 `yaml:"click_flee_strength"`

	TreatRadius   float64 `yaml:"treat_radius"`
	TreatSpeed    float64 `yaml:"treat_speed"`
	TreatLifetime float64 `yaml:"treat_lifetime"`
	MaxTreats     int     `yaml:"max_treats"`

	LaserSpeed    float64 `yaml:"laser_speed"`
	LaserJitter   float64 `yaml:"laser_jitter"`
	LaserDuration float64 `yaml:"laser_duration"`

	YarnLifetime float64 `yaml:"yarn_lifetime"`
	YarnFriction float64 `yaml:"yarn_friction"`
	YarnBounce   float64 `yaml:"yarn_bounce"`
	YarnBatSpeed float64 `yaml:"yarn_bat_speed"`
	MaxYarnBalls int     `yaml:"max_yarn_balls"`
}

// ModesConfig holds mode presets and AFK escalation parameters.
type ModesConfig struct {
	WorkEdgeAffinity float64 `yaml:"work_edge_affinity"`
	WorkEnergyScale  float64 `yaml:"work_energy_scale"`
	ZenEnergyScale   float64 `yaml:"zen_energy_scale"`
	ChaosEnergyScale float64 `yaml:"chaos_energy_scale"`
	EdgePull         float64 `yaml:"edge_pull"` // Edge affinity pull strength

	AfkRelaxAfter  float64 `yaml:"afk_relax_after"`   // Seconds idle before edge affinity relaxes
	AfkEnergyAfter float64 `yaml:"afk_energy_after"`  // Seconds idle before energy rises
	AfkZenAfter    float64 `yaml:"afk_zen_after"`     // Seconds idle before forced Zen + growth
	AfkSpawnPerMin float64 `yaml:"afk_spawn_per_min"` // Bonus cats per minute while deep AFK
	AfkBonusCap    int     `yaml:"afk_bonus_cap"`     // Max bonus cats from AFK growth
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Simulation seconds per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	ScreenW32      float32
	ScreenH32      float32
	Margin32       float32
	ContagionTicks int64 // Contagion interval in whole ticks (min 1)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.Margin32 = float32(c.Physics.Margin)

	if c.Physics.DT > 0 {
		c.Derived.ContagionTicks = int64(c.Social.ContagionInterval / c.Physics.DT)
	}
	if c.Derived.ContagionTicks < 1 {
		c.Derived.ContagionTicks = 1
	}

	// Table size defaults to the next power of two above twice the max
	// population, which keeps bucket chains short at full load.
	if c.Spatial.TableSize == 0 {
		size := 1
		for size < c.Population.Max*2 {
			size *= 2
		}
		c.Spatial.TableSize = size
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
