package modes

import (
	"fmt"
	"math"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

type shootoutAttemptState int

const (
	shootoutStart shootoutAttemptState = iota // puck not yet touched
	shootoutAttack                            // touched by attacker, still live
	shootoutNoMoreAttack                      // touched goalie/post or moved backwards, may still enter
	shootoutOver
)

type shootoutPhase int

const (
	shootoutPhasePause shootoutPhase = iota
	shootoutPhaseGame
	shootoutPhaseGameOver
)

// Shootout is the one-attacker-at-a-time penalty shot mode (hqm_shootout.rs's
// HQMShootoutBehaviour). Player side-spacing within a round deliberately
// reuses the same offset vector for even and odd indices — a source bug
// that leaves players stacked on one side instead of alternating; preserved
// here rather than fixed (see DESIGN.md).
type Shootout struct {
	Attempts uint32

	phase       shootoutPhase
	state       shootoutAttemptState
	round       uint32
	team        world.Team
	breakTicks  uint32
	initialized bool
}

func NewShootout(attempts uint32) *Shootout {
	return &Shootout{Attempts: attempts, phase: shootoutPhasePause}
}

func (s *Shootout) NumberOfPlayers() uint32 { return 1 }

func (s *Shootout) CreateGame(gameNumber int) *world.Game {
	s.phase = shootoutPhasePause
	s.initialized = false
	g := world.NewGame(world.NewStandardRink(), 1, gameNumber)
	g.TimeRemainingTicks = 1000
	return g
}

func (s *Shootout) BeforeTick(srv ServerAPI) {
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
			srv.SpawnSkater(sl, world.TeamRed, mathutil.Vec3{}, mathutil.Identity3())
		case in.Keys.Has(world.KeyJoinBlue):
			srv.SpawnSkater(sl, world.TeamBlue, mathutil.Vec3{}, mathutil.Identity3())
		}
		_ = team
	}
}

func (s *Shootout) AfterTick(srv ServerAPI, events []physics.Event) {
	g := srv.Game()
	for _, ev := range events {
		switch ev.Kind {
		case physics.EventPuckEnteredNet:
			if s.phase == shootoutPhaseGame && s.state != shootoutOver {
				s.endAttempt(srv, ev.Team == s.team)
			}
		case physics.EventPuckPassedGoalLine:
			if s.phase == shootoutPhaseGame && s.state != shootoutOver {
				s.endAttempt(srv, false)
			}
		case physics.EventPuckTouch:
			if s.phase != shootoutPhaseGame {
				continue
			}
			if ev.Team == s.team {
				switch s.state {
				case shootoutStart:
					s.state = shootoutAttack
				case shootoutNoMoreAttack:
					s.endAttempt(srv, false)
				}
			} else {
				switch s.state {
				case shootoutAttack:
					s.state = shootoutNoMoreAttack
				case shootoutStart:
					s.endAttempt(srv, false)
				}
			}
		case physics.EventPuckTouchedNet:
			if s.phase == shootoutPhaseGame && ev.Team == s.team &&
				(s.state == shootoutStart || s.state == shootoutAttack) {
				s.state = shootoutNoMoreAttack
			}
		}
	}

	switch s.phase {
	case shootoutPhasePause:
		red, blue := countTeams(srv)
		if red > 0 && blue > 0 {
			g.TimeRemainingTicks = decrement(g.TimeRemainingTicks)
			if g.TimeRemainingTicks == 0 {
				s.startNextAttempt(srv)
			}
		} else {
			g.TimeRemainingTicks = 1000
		}
	case shootoutPhaseGame:
		if s.state == shootoutOver {
			s.breakTicks = decrement(s.breakTicks)
			if s.breakTicks == 0 {
				s.startNextAttempt(srv)
			}
			return
		}
		if s.state == shootoutAttack {
			normal := mathutil.Vec3{Z: 1}
			if s.team == world.TeamRed {
				normal = mathutil.Vec3{Z: -1}
			}
			if puckSpeedTowards(g, normal) < 0 {
				s.state = shootoutNoMoreAttack
			}
		}
		g.TimeRemainingTicks = decrement(g.TimeRemainingTicks)
		if g.TimeRemainingTicks == 0 {
			g.TimeRemainingTicks = 1 // avoid flashing "Intermission"/"Game starting"
			s.endAttempt(srv, false)
		}
	case shootoutPhaseGameOver:
		s.breakTicks = decrement(s.breakTicks)
		if s.breakTicks == 0 {
			srv.Game().GameOver = true
		}
	}
}

func decrement(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return v - 1
}

func countTeams(srv ServerAPI) (red, blue int) {
	for _, sl := range srv.InGameSessions() {
		if team, ok := srv.SessionTeam(sl); ok {
			if team == world.TeamRed {
				red++
			} else {
				blue++
			}
		}
	}
	return
}

func puckSpeedTowards(g *world.Game, normal mathutil.Vec3) float32 {
	for i := range g.World.Slots {
		if g.World.Slots[i].Puck != nil {
			return g.World.Slots[i].Puck.Body.LinearVelocity.Dot(normal)
		}
	}
	return 0
}

func (s *Shootout) startNextAttempt(srv ServerAPI) {
	nextTeam := world.TeamRed
	nextRound := uint32(0)
	if s.initialized {
		nextTeam = s.team.Other()
		if s.team == world.TeamBlue {
			nextRound = s.round + 1
		} else {
			nextRound = s.round
		}
	}
	s.initialized = true

	remaining := int64(s.Attempts) - int64(nextRound)
	switch {
	case remaining >= 2:
		srv.AddChatMessage(-1, fmt.Sprintf("%d attempts left for %s", remaining, teamName(nextTeam)))
	case remaining == 1:
		srv.AddChatMessage(-1, fmt.Sprintf("Last attempt for %s", teamName(nextTeam)))
	default:
		srv.AddChatMessage(-1, fmt.Sprintf("Tie-breaker round for %s", teamName(nextTeam)))
	}

	defendingTeam := nextTeam.Other()

	g := srv.Game()
	g.TimeRemainingTicks = 1500
	g.Period = 1
	g.IsIntermissionGoal = false
	g.World.ClearPucks()

	rink := g.World.Rink
	puckPos := mathutil.Vec3{X: rink.Width / 2, Y: 1.0, Z: rink.Length / 2}
	g.World.CreatePuckObject(puckPos, mathutil.Identity3())

	redRot := mathutil.Identity3()
	blueRot := mathutil.RotateAroundAxis(mathutil.UnitY(), float32(math.Pi))

	redGoaliePos := mathutil.Vec3{X: rink.Width / 2, Y: 1.5, Z: rink.Length - 5.0}
	blueGoaliePos := mathutil.Vec3{X: rink.Width / 2, Y: 1.5, Z: 5.0}

	var attackRot, defendRot mathutil.Mat3
	var goaliePos mathutil.Vec3
	var attackers, defenders []int
	for _, sl := range srv.InGameSessions() {
		team, ok := srv.SessionTeam(sl)
		if !ok {
			continue
		}
		if team == nextTeam {
			attackers = append(attackers, sl)
		} else {
			defenders = append(defenders, sl)
		}
	}
	if nextTeam == world.TeamRed {
		attackRot, defendRot, goaliePos = redRot, blueRot, blueGoaliePos
	} else {
		attackRot, defendRot, goaliePos = blueRot, redRot, redGoaliePos
	}

	centerPos := mathutil.Vec3{X: rink.Width / 2, Y: 1.5, Z: rink.Length / 2}
	for i, sl := range attackers {
		pos := centerPos.Add(attackRot.MulVec3(mathutil.Vec3{Z: 3.0}))
		if i > 0 {
			dist := float32(i/2 + 1)
			// Both branches use the same offset; players never alternate
			// sides (preserved source quirk, see DESIGN.md).
			var side mathutil.Vec3
			if i%2 == 0 {
				side = mathutil.Vec3{X: -1.5 * dist}
			} else {
				side = mathutil.Vec3{X: -1.5 * dist}
			}
			pos = pos.Add(attackRot.MulVec3(side))
		}
		srv.SpawnSkater(sl, nextTeam, pos, attackRot)
	}
	for i, sl := range defenders {
		pos := goaliePos
		if i > 0 {
			dist := float32(i/2 + 1)
			var side mathutil.Vec3
			if i%2 == 0 {
				side = mathutil.Vec3{X: -1.5 * dist}
			} else {
				side = mathutil.Vec3{X: -1.5 * dist}
			}
			pos = pos.Add(defendRot.MulVec3(side))
		}
		srv.SpawnSkater(sl, defendingTeam, pos, defendRot)
	}

	s.phase = shootoutPhaseGame
	s.state = shootoutStart
	s.round = nextRound
	s.team = nextTeam
}

func (s *Shootout) endAttempt(srv ServerAPI, goalScored bool) {
	g := srv.Game()
	g.IsIntermissionGoal = goalScored
	g.BreakTicks = 300
	if goalScored {
		if s.team == world.TeamRed {
			g.RedScore++
		} else {
			g.BlueScore++
		}
		g.AddGlobalMessage(world.Message{Kind: world.MessageGoal, GoalTeam: s.team, Scorer: -1, Assist: -1})
	} else {
		srv.AddChatMessage(-1, "Miss")
	}

	redTaken := s.round + 1
	blueTaken := s.round
	if s.team == world.TeamBlue {
		blueTaken = s.round + 1
	}
	attempts := s.Attempts
	if redTaken > attempts {
		attempts = redTaken
	}
	remainingRed := attempts - redTaken
	remainingBlue := attempts - blueTaken

	var gameOver bool
	if g.RedScore >= g.BlueScore {
		gameOver = remainingBlue < (g.RedScore - g.BlueScore)
	} else {
		gameOver = remainingRed < (g.BlueScore - g.RedScore)
	}

	if gameOver {
		s.phase = shootoutPhaseGameOver
		s.breakTicks = 500
	} else {
		s.state = shootoutOver
		s.breakTicks = 300
	}
}

func teamName(t world.Team) string {
	if t == world.TeamRed {
		return "Red"
	}
	return "Blue"
}

func (s *Shootout) HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int) {}

func (s *Shootout) BeforeSessionExit(srv ServerAPI, sessionSlot int) {}
