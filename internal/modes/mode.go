// Package modes implements the pluggable before/after-tick hook surface
// (spec §4.5), grounded on the source's per-file HQMServerBehaviour
// implementations (hqm_match.rs, hqm_warmup.rs, hqm_shootout.rs,
// hqm_russian.rs, hqm_faceoff_practice.rs). The core invokes the Mode
// methods and otherwise knows nothing about which mode is active.
package modes

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

// ServerAPI is the narrow surface a mode needs from the running server —
// defined here, on the consumer side, so this package never imports the
// server package (it would be a cycle: the server holds a Mode).
type ServerAPI interface {
	Game() *world.Game
	SessionTeam(sessionSlot int) (world.Team, bool)
	SessionInput(sessionSlot int) world.PlayerInput
	SessionPreferredPosition(sessionSlot int) string
	SessionName(sessionSlot int) string
	InGameSessions() []int
	SpawnSkater(sessionSlot int, team world.Team, pos mathutil.Vec3, rot mathutil.Mat3)
	MoveToSpectator(sessionSlot int)
	AddChatMessage(sender int, text string)
}

// Mode is the behaviour plug-in interface (spec §4.5, §9 trait-object shape).
type Mode interface {
	BeforeTick(srv ServerAPI)
	AfterTick(srv ServerAPI, events []physics.Event)
	HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int)
	CreateGame(gameNumber int) *world.Game
	NumberOfPlayers() uint32
	BeforeSessionExit(srv ServerAPI, sessionSlot int)
}
