// Package config holds the in-memory configuration consumed by the core
// (spec §6.2). Parsing it from files, flags, or environment variables is
// explicitly out of scope for the core (§1 Non-goals) — cmd/hqmserver builds
// one of these directly, the way the teacher's cmd/gameserver built a
// config.ServerConfig literal.
package config

import "github.com/migomipo/hqmgo/internal/physics"

// ReplayMode mirrors spec §6.2's replay_mode enum.
type ReplayMode uint8

const (
	ReplayOff ReplayMode = iota
	ReplayStandby
	ReplayOn
)

// PhysicsConfiguration is every tunable the deterministic simulation reads
// (spec §6.2); field names and defaults mirror hqm_game.rs's
// HQMPhysicsConfiguration.
type PhysicsConfiguration struct {
	Gravity                 float32
	LimitJumpSpeed          bool
	PlayerAcceleration      float32
	PlayerDeceleration      float32
	PlayerShiftAcceleration float32
	MaxPlayerSpeed          float32
	MaxPlayerShiftSpeed     float32
	PuckRinkFriction        float32
	PlayerTurning           float32
	PlayerShiftTurning      float32
}

// DefaultPhysicsConfiguration matches the constants named in spec §4.2 and
// physics.DefaultConfig, the struct this one is converted into at startup.
func DefaultPhysicsConfiguration() PhysicsConfiguration {
	return PhysicsConfiguration{
		Gravity:                 -0.000680,
		LimitJumpSpeed:          false,
		PlayerAcceleration:      0.000208,
		PlayerDeceleration:      0.000556,
		PlayerShiftAcceleration: 0.00052,
		MaxPlayerSpeed:          0.05,
		MaxPlayerShiftSpeed:     0.08,
		PuckRinkFriction:        0.05,
		PlayerTurning:           0.0088,
		PlayerShiftTurning:      0.0088,
	}
}

// ToPhysicsConfig converts the wire-facing configuration shape into the one
// the simulation package consumes directly.
func (p PhysicsConfiguration) ToPhysicsConfig() physics.Config {
	return physics.Config{
		Gravity:                 p.Gravity,
		LimitJumpSpeed:          p.LimitJumpSpeed,
		PlayerAcceleration:      p.PlayerAcceleration,
		PlayerDeceleration:      p.PlayerDeceleration,
		PlayerShiftAcceleration: p.PlayerShiftAcceleration,
		MaxPlayerSpeed:          p.MaxPlayerSpeed,
		MaxPlayerShiftSpeed:     p.MaxPlayerShiftSpeed,
		PuckRinkFriction:        p.PuckRinkFriction,
		PlayerTurning:           p.PlayerTurning,
		PlayerShiftTurning:      p.PlayerShiftTurning,
	}
}

// ModeParams carries the handful of per-mode knobs the CLI shell can set at
// startup (spec §6.6's "set" command targets most of these at runtime).
type ModeParams struct {
	Mode             string // "match", "warmup", "shootout", "russian", "practice"
	TeamMax          int
	Mercy            uint32
	FirstTo          uint32
	ShootoutAttempts uint32
	RussianAttempts  int
	WarmupPucks      int
}

// ServerConfiguration is the struct the core receives wholesale (spec §6.2).
type ServerConfiguration struct {
	ServerName    string
	Password      string // empty means no password
	PlayerMax     int
	ReplayMode    ReplayMode
	WelcomeLines  []string
	ServiceTag    string // empty means not a public/listed server
	TeamMax       int
	ModeParams    ModeParams
	PhysicsParams PhysicsConfiguration
}

func DefaultServerConfiguration() ServerConfiguration {
	return ServerConfiguration{
		ServerName:    "HQM Go server",
		PlayerMax:     32,
		ReplayMode:    ReplayOff,
		TeamMax:       5,
		ModeParams:    ModeParams{Mode: "match", TeamMax: 5},
		PhysicsParams: DefaultPhysicsConfiguration(),
	}
}
