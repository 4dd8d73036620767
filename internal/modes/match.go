package modes

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/rules"
	"github.com/migomipo/hqmgo/internal/world"
)

// Match is the standard rule-enforced game mode: icing, offside, goals,
// faceoffs, team-size caps (hqm_match.rs's HQMMatchBehaviour).
type Match struct {
	Engine  *rules.Engine
	TeamMax int

	pendingFaceoff bool
}

func NewMatch(cfg rules.Config, teamMax int) *Match {
	return &Match{Engine: rules.NewEngine(cfg), TeamMax: teamMax}
}

func (m *Match) CreateGame(gameNumber int) *world.Game {
	g := world.NewGame(world.NewStandardRink(), 1, gameNumber)
	g.TimeRemainingTicks = m.Engine.Cfg.TimePeriodTicks
	puckPos := mathutil.Vec3{X: g.World.Rink.Width / 2, Y: 1.5, Z: g.World.Rink.Length / 2}
	g.World.CreatePuckObject(puckPos, mathutil.Identity3())
	return g
}

func (m *Match) NumberOfPlayers() uint32 { return 0 }

// BeforeTick mirrors update_players: moves spectate-requesting skaters off
// the ice and spawns join-requesting spectators onto a team, capped at
// TeamMax a side. The per-session team-switch cooldown the source tracks is
// not modeled here — see DESIGN.md.
func (m *Match) BeforeTick(srv ServerAPI) {
	redCount, blueCount := 0, 0
	for _, s := range srv.InGameSessions() {
		if team, ok := srv.SessionTeam(s); ok {
			if team == world.TeamRed {
				redCount++
			} else {
				blueCount++
			}
		}
	}

	for _, s := range srv.InGameSessions() {
		team, inGame := srv.SessionTeam(s)
		in := srv.SessionInput(s)
		if inGame && in.Keys.Has(world.KeySpectate) {
			srv.MoveToSpectator(s)
			if team == world.TeamRed {
				redCount--
			} else {
				blueCount--
			}
			continue
		}
		if inGame {
			continue
		}
		switch {
		case in.Keys.Has(world.KeyJoinRed) && redCount < m.TeamMax:
			srv.SpawnSkater(s, world.TeamRed, benchSpot(srv.Game().World.Rink, world.TeamRed), mathutil.Identity3())
			redCount++
		case in.Keys.Has(world.KeyJoinBlue) && blueCount < m.TeamMax:
			srv.SpawnSkater(s, world.TeamBlue, benchSpot(srv.Game().World.Rink, world.TeamBlue), mathutil.Identity3())
			blueCount++
		}
	}

	g := srv.Game()
	if g.Period == 0 && g.TimeRemainingTicks > 2000 && redCount > 0 && blueCount > 0 {
		g.TimeRemainingTicks = 2000
	}
}

func benchSpot(rink *world.Rink, team world.Team) mathutil.Vec3 {
	z := rink.Length - 3.0
	if team == world.TeamBlue {
		z = 3.0
	}
	return mathutil.Vec3{X: rink.Width/2 + 4.0, Y: 1.5, Z: z}
}

func (m *Match) AfterTick(srv ServerAPI, events []physics.Event) {
	g := srv.Game()
	m.Engine.HandleEvents(g, events)
	clock := m.Engine.UpdateClock(g)
	if clock.NewGameDue {
		// The server loop is responsible for actually replacing the Game
		// (CreateGame + history reset); it polls GameOver for this.
		return
	}
	if clock.FaceoffDue {
		m.Engine.DoFaceoff(g, m.faceoffPlayers(srv))
	}
}

func (m *Match) faceoffPlayers(srv ServerAPI) []rules.PlayerRef {
	var out []rules.PlayerRef
	for _, s := range srv.InGameSessions() {
		team, inGame := srv.SessionTeam(s)
		out = append(out, rules.PlayerRef{
			SessionIndex:      s,
			Name:              srv.SessionName(s),
			InGame:            inGame,
			Team:              team,
			PreferredPosition: srv.SessionPreferredPosition(s),
		})
	}
	return out
}

func (m *Match) HandleCommand(srv ServerAPI, cmd, arg string, sessionSlot int) {
	switch cmd {
	case "faceoff":
		m.Engine.DoFaceoff(srv.Game(), m.faceoffPlayers(srv))
	case "pause", "pausegame":
		srv.Game().Paused = true
	case "unpause", "unpausegame":
		srv.Game().Paused = false
	case "icing":
		switch arg {
		case "off":
			m.Engine.Cfg.Icing = rules.IcingRuleOff
		case "notouch":
			m.Engine.Cfg.Icing = rules.IcingRuleNoTouch
		default:
			m.Engine.Cfg.Icing = rules.IcingRuleTouch
		}
	case "offside":
		switch arg {
		case "off":
			m.Engine.Cfg.Offside = rules.OffsideRuleOff
		case "imm", "immediate":
			m.Engine.Cfg.Offside = rules.OffsideRuleImmediate
		default:
			m.Engine.Cfg.Offside = rules.OffsideRuleDelayed
		}
	}
}

func (m *Match) BeforeSessionExit(srv ServerAPI, sessionSlot int) {}
