package modes

import (
	"fmt"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

// FaceoffPractice is the single-player reaction-time drill: one skater, one
// puck dropped a fixed faceoff distance away, a chat message reporting how
// long it took to touch it (hqm_faceoff_practice.rs).
type FaceoffPractice struct {
	timer     uint32
	waitTimer uint32
}

func NewFaceoffPractice() *FaceoffPractice { return &FaceoffPractice{} }

func (p *FaceoffPractice) NumberOfPlayers() uint32 { return 0 }

func (p *FaceoffPractice) CreateGame(gameNumber int) *world.Game {
	g := world.NewGame(world.NewStandardRink(), 1, gameNumber)
	g.TimeRemainingTicks = 30000 // permanently locked to five minutes
	return g
}

const (
	practiceCenterX = 15.0
	practiceCenterZ = 30.5
)

func (p *FaceoffPractice) startNewRound(srv ServerAPI, sessionSlot int) {
	p.timer = 0
	g := srv.Game()
	g.World.ClearPucks()

	skaterPos := mathutil.Vec3{X: practiceCenterX, Y: 1.5, Z: practiceCenterZ + 2.75}
	srv.SpawnSkater(sessionSlot, world.TeamRed, skaterPos, mathutil.Identity3())

	puckPos := mathutil.Vec3{X: practiceCenterX, Y: 1.5, Z: practiceCenterZ}
	g.World.CreatePuckObject(puckPos, mathutil.Identity3())
}

func (p *FaceoffPractice) BeforeTick(srv ServerAPI) {
	hasPlayer := -1
	wantsToPlay := -1
	for _, sl := range srv.InGameSessions() {
		_, inGame := srv.SessionTeam(sl)
		if inGame {
			hasPlayer = sl
			break
		}
		if wantsToPlay == -1 && srv.SessionInput(sl).Keys.Has(world.KeyJoinRed) {
			wantsToPlay = sl
		}
	}

	if hasPlayer != -1 && srv.SessionInput(hasPlayer).Keys.Has(world.KeySpectate) {
		srv.MoveToSpectator(hasPlayer)
		hasPlayer = -1
	}

	if hasPlayer != -1 {
		if p.waitTimer > 0 {
			p.waitTimer--
			if p.waitTimer == 0 {
				p.startNewRound(srv, hasPlayer)
			}
		} else {
			p.timer++
		}
		return
	}

	srv.Game().World.ClearPucks()
	if wantsToPlay != -1 {
		pos := mathutil.Vec3{X: practiceCenterX, Y: 1.5, Z: practiceCenterZ + 2.75}
		srv.SpawnSkater(wantsToPlay, world.TeamRed, pos, mathutil.Identity3())
		p.waitTimer = 300
	}
}

func (p *FaceoffPractice) AfterTick(srv ServerAPI, events []physics.Event) {
	if p.waitTimer != 0 {
		return
	}
	for _, ev := range events {
		if ev.Kind != physics.EventPuckTouch {
			continue
		}
		seconds := p.timer / 100
		centi := p.timer % 100
		srv.AddChatMessage(-1, fmt.Sprintf("%d.%02d seconds", seconds, centi))
		p.waitTimer = 300
		return
	}
}

func (p *FaceoffPractice) HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int) {}

func (p *FaceoffPractice) BeforeSessionExit(srv ServerAPI, sessionSlot int) {}
