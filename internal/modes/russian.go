package modes

import (
	"fmt"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

type russianPhase int

const (
	russianPhasePause russianPhase = iota
	russianPhaseGame
	russianPhaseGameOver
)

// Russian is the alternating-attack mode: a single zone is live at a time,
// the attacking team gets a fixed window to score before the puck and the
// attack flip to the other end (hqm_russian.rs's HQMRussianBehaviour). The
// source's defensive-line collision-ball nudge that slows players crossing
// their own blue line is a physics-level detail out of scope for this
// package; see DESIGN.md.
type Russian struct {
	Attempts int

	phase          russianPhase
	inZone         world.Team
	round          int
	goalScored     bool
	goalMsgTimer   uint32
	gameOverTimer  uint32
	initialized    bool
}

func NewRussian(attempts int) *Russian {
	return &Russian{Attempts: attempts, phase: russianPhasePause}
}

func (r *Russian) NumberOfPlayers() uint32 { return 0 }

func (r *Russian) CreateGame(gameNumber int) *world.Game {
	r.phase = russianPhasePause
	r.initialized = false
	g := world.NewGame(world.NewStandardRink(), 1, gameNumber)
	g.TimeRemainingTicks = 1000
	return g
}

func (r *Russian) BeforeTick(srv ServerAPI) {
	for _, sl := range srv.InGameSessions() {
		team, inGame := srv.SessionTeam(sl)
		in := srv.SessionInput(sl)
		if inGame && in.Keys.Has(world.KeySpectate) {
			srv.MoveToSpectator(sl)
			continue
		}
		if inGame {
			continue
		}
		switch {
		case in.Keys.Has(world.KeyJoinRed):
			srv.SpawnSkater(sl, world.TeamRed, russianBenchPos(srv, world.TeamRed), russianRot())
		case in.Keys.Has(world.KeyJoinBlue):
			srv.SpawnSkater(sl, world.TeamBlue, russianBenchPos(srv, world.TeamBlue), russianRot())
		}
		_ = team
	}
}

func russianRot() mathutil.Mat3 {
	return mathutil.RotateAroundAxis(mathutil.UnitY(), 3*piOver2())
}

func piOver2() float32 { return 1.5707963267948966 }

func russianBenchPos(srv ServerAPI, team world.Team) mathutil.Vec3 {
	mid := srv.Game().World.Rink.Length / 2
	z := mid + 12.0
	if team == world.TeamBlue {
		z = mid - 12.0
	}
	return mathutil.Vec3{X: 0.5, Y: 2.0, Z: z}
}

func (r *Russian) placePuckForTeam(srv ServerAPI, team world.Team) {
	g := srv.Game()
	g.World.ClearPucks()
	z := float32(55.0)
	if team == world.TeamBlue {
		z = 6.0
	}
	pos := mathutil.Vec3{X: g.World.Rink.Width / 2, Y: 0.5, Z: z}
	g.World.CreatePuckObject(pos, mathutil.Identity3())
	r.fixStatus(srv, team)
}

func (r *Russian) fixStatus(srv ServerAPI, team world.Team) {
	switch r.phase {
	case russianPhasePause:
		r.phase = russianPhaseGame
		r.inZone = team
		r.round = 0
		r.goalScored = false
		r.announceAttempts(srv, r.Attempts, team)
	case russianPhaseGame:
		if r.inZone != team {
			srv.Game().TimeRemainingTicks = 2000
			r.inZone = team
			if team == world.TeamRed {
				r.round++
			}
			remaining := r.Attempts - r.round
			r.announceAttempts(srv, remaining, team)
		}
	}
}

func (r *Russian) announceAttempts(srv ServerAPI, remaining int, team world.Team) {
	switch {
	case remaining >= 2:
		srv.AddChatMessage(-1, fmt.Sprintf("%d attempts left for %s", remaining, teamName(team)))
	case remaining == 1:
		srv.AddChatMessage(-1, fmt.Sprintf("Last attempt for %s", teamName(team)))
	default:
		srv.AddChatMessage(-1, fmt.Sprintf("Tie-breaker round for %s", teamName(team)))
	}
}

func (r *Russian) init(srv ServerAPI) {
	g := srv.Game()
	g.Period = 1
	g.TimeRemainingTicks = 2000
	g.World.ClearPucks()
	srv.AddChatMessage(-1, fmt.Sprintf("Each team will get %d attempts", r.Attempts))
	r.placePuckForTeam(srv, world.TeamRed)

	redIdx, blueIdx := 0, 0
	for _, sl := range srv.InGameSessions() {
		team, inGame := srv.SessionTeam(sl)
		if !inGame {
			continue
		}
		mid := g.World.Rink.Length / 2
		if team == world.TeamRed {
			pos := mathutil.Vec3{X: 0.5, Y: 2.0, Z: mid + 12.0 + float32(redIdx)}
			srv.SpawnSkater(sl, world.TeamRed, pos, russianRot())
			redIdx++
		} else {
			pos := mathutil.Vec3{X: 0.5, Y: 2.0, Z: mid - 12.0 - float32(blueIdx)}
			srv.SpawnSkater(sl, world.TeamBlue, pos, russianRot())
			blueIdx++
		}
	}
}

func (r *Russian) checkEnding(srv ServerAPI) {
	if r.phase != russianPhaseGame {
		return
	}
	g := srv.Game()
	redTaken := r.round
	if r.inZone == world.TeamBlue {
		redTaken++
	}
	blueTaken := r.round
	attempts := r.Attempts
	if redTaken > attempts {
		attempts = redTaken
	}
	remainingRed := attempts - redTaken
	remainingBlue := attempts - blueTaken

	var gameOver bool
	if int(g.RedScore) >= int(g.BlueScore) {
		gameOver = remainingBlue < int(g.RedScore-g.BlueScore)
	} else {
		gameOver = remainingRed < int(g.BlueScore-g.RedScore)
	}
	if gameOver {
		r.phase = russianPhaseGameOver
		r.gameOverTimer = 500
		g.GameOver = true
	}
}

func (r *Russian) AfterTick(srv ServerAPI, events []physics.Event) {
	g := srv.Game()

	switch r.phase {
	case russianPhasePause:
		red, blue := countTeams(srv)
		if red > 0 && blue > 0 {
			g.TimeRemainingTicks = decrement(g.TimeRemainingTicks)
			if g.TimeRemainingTicks == 0 {
				r.init(srv)
			}
		} else {
			g.TimeRemainingTicks = 1000
		}
		return
	case russianPhaseGameOver:
		r.gameOverTimer = decrement(r.gameOverTimer)
		if r.gameOverTimer == 0 {
			g.GameOver = true
		}
		return
	}

	if r.goalScored {
		r.goalMsgTimer = decrement(r.goalMsgTimer)
		if r.goalMsgTimer == 0 {
			r.placePuckForTeam(srv, r.inZone)
			g.TimeRemainingTicks = 2000
			r.goalScored = false
		}
		return
	}

	for _, ev := range events {
		switch ev.Kind {
		case physics.EventPuckEnteredNet:
			if ev.Team == world.TeamRed {
				g.RedScore++
			} else {
				g.BlueScore++
			}
			r.goalScored = true
			r.goalMsgTimer = 300
			g.AddGlobalMessage(world.Message{Kind: world.MessageGoal, GoalTeam: ev.Team, Scorer: -1, Assist: -1})
			r.checkEnding(srv)
		case physics.EventPuckTouch:
			r.fixStatus(srv, ev.Team)
		case physics.EventPuckEnteredOffensiveZone:
			r.fixStatus(srv, ev.Team.Other())
		case physics.EventPuckPassedGoalLine:
			r.checkEnding(srv)
		}
	}

	if r.goalScored {
		return
	}

	g.TimeRemainingTicks = decrement(g.TimeRemainingTicks)
	if g.TimeRemainingTicks == 0 {
		r.checkEnding(srv)
		if r.phase == russianPhaseGame {
			r.placePuckForTeam(srv, r.inZone.Other())
		}
	}
}

func (r *Russian) HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int) {
	switch cmd {
	case "reset", "resetgame":
		srv.AddChatMessage(-1, "Game reset")
		*r = *NewRussian(r.Attempts)
	}
}

func (r *Russian) BeforeSessionExit(srv ServerAPI, sessionSlot int) {}
