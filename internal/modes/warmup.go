package modes

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

// Warmup is the rule-free free-skate mode: no icing/offside/scoring, a
// fixed line of pucks, a clock permanently reset to five minutes every
// tick (hqm_warmup.rs's HQMPermanentWarmup).
type Warmup struct {
	Pucks      int
	SpawnPoint mathutil.Vec3
}

func NewWarmup(pucks int, spawnPoint mathutil.Vec3) *Warmup {
	if pucks < 1 {
		pucks = 1
	}
	return &Warmup{Pucks: pucks, SpawnPoint: spawnPoint}
}

func (w *Warmup) CreateGame(gameNumber int) *world.Game {
	g := world.NewGame(world.NewStandardRink(), w.Pucks, gameNumber)
	lineStart := g.World.Rink.Width/2 - 0.4*float32(w.Pucks-1)
	for i := 0; i < w.Pucks; i++ {
		pos := mathutil.Vec3{
			X: lineStart + 0.8*float32(i),
			Y: 1.5,
			Z: g.World.Rink.Length / 2,
		}
		g.World.CreatePuckObject(pos, mathutil.Identity3())
	}
	g.TimeRemainingTicks = 30000 // permanently locked to five minutes
	return g
}

func (w *Warmup) NumberOfPlayers() uint32 { return 0 }

func (w *Warmup) BeforeTick(srv ServerAPI) {
	for _, s := range srv.InGameSessions() {
		team, inGame := srv.SessionTeam(s)
		in := srv.SessionInput(s)
		if inGame && in.Keys.Has(world.KeySpectate) {
			srv.MoveToSpectator(s)
			continue
		}
		if inGame {
			continue
		}
		switch {
		case in.Keys.Has(world.KeyJoinRed):
			srv.SpawnSkater(s, world.TeamRed, w.SpawnPoint, mathutil.Identity3())
		case in.Keys.Has(world.KeyJoinBlue):
			srv.SpawnSkater(s, world.TeamBlue, w.SpawnPoint, mathutil.Identity3())
		}
		_ = team
	}
}

func (w *Warmup) AfterTick(srv ServerAPI, events []physics.Event) {
	srv.Game().TimeRemainingTicks = 30000
}

func (w *Warmup) HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int) {}

func (w *Warmup) BeforeSessionExit(srv ServerAPI, sessionSlot int) {}
