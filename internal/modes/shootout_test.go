package modes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

// fakeServer is a minimal in-memory ServerAPI stand-in for exercising a
// mode's hooks without a running gameserver.Server.
type fakeServer struct {
	game     *world.Game
	teams    map[int]world.Team
	inGame   []int
	spawns   map[int]mathutil.Vec3
	messages []string
}

func newFakeServer(g *world.Game) *fakeServer {
	return &fakeServer{game: g, teams: map[int]world.Team{}, spawns: map[int]mathutil.Vec3{}}
}

func (f *fakeServer) Game() *world.Game { return f.game }
func (f *fakeServer) SessionTeam(sl int) (world.Team, bool) {
	t, ok := f.teams[sl]
	return t, ok
}
func (f *fakeServer) SessionInput(sl int) world.PlayerInput       { return world.PlayerInput{} }
func (f *fakeServer) SessionPreferredPosition(sl int) string      { return "C" }
func (f *fakeServer) SessionName(sl int) string                   { return "p" }
func (f *fakeServer) InGameSessions() []int                       { return f.inGame }
func (f *fakeServer) MoveToSpectator(sl int)                      { delete(f.teams, sl) }
func (f *fakeServer) AddChatMessage(sender int, text string)      { f.messages = append(f.messages, text) }
func (f *fakeServer) SpawnSkater(sl int, team world.Team, pos mathutil.Vec3, rot mathutil.Mat3) {
	f.teams[sl] = team
	f.spawns[sl] = pos
}

func TestShootoutStartNextAttemptAlternatesTeamsAcrossRounds(t *testing.T) {
	s := NewShootout(5)
	g := s.CreateGame(1)
	f := newFakeServer(g)
	f.inGame = []int{0, 1}
	f.teams[0] = world.TeamRed
	f.teams[1] = world.TeamBlue

	s.startNextAttempt(f)
	require.Equal(t, world.TeamRed, s.team)
	require.EqualValues(t, 0, s.round)

	s.state = shootoutOver
	s.startNextAttempt(f)
	require.Equal(t, world.TeamBlue, s.team)
	require.EqualValues(t, 0, s.round)

	s.state = shootoutOver
	s.startNextAttempt(f)
	require.Equal(t, world.TeamRed, s.team)
	require.EqualValues(t, 1, s.round)
}

// TestShootoutSideOffsetQuirkAffectsBothAttackersAndDefenders confirms the
// preserved positioning bug: the two skaters sharing a given stand-off
// distance (indices 2 and 3, 4 and 5, ...) get the same X offset instead of
// mirrored ones, because both parity branches in startNextAttempt compute
// an identical side vector regardless of which one of the pair it is.
func TestShootoutSideOffsetQuirkAffectsBothAttackersAndDefenders(t *testing.T) {
	s := NewShootout(5)
	g := s.CreateGame(1)
	f := newFakeServer(g)
	// Four attackers (red) and four defenders (blue) so each side has an
	// index-2/index-3 pair sharing the same stand-off distance.
	f.inGame = []int{0, 1, 2, 3, 4, 5, 6, 7}
	for _, sl := range []int{0, 1, 2, 3} {
		f.teams[sl] = world.TeamRed
	}
	for _, sl := range []int{4, 5, 6, 7} {
		f.teams[sl] = world.TeamBlue
	}

	s.startNextAttempt(f)

	attackerPos2, attackerPos3 := f.spawns[2], f.spawns[3]
	require.Equal(t, attackerPos2.X, attackerPos3.X, "attacking skaters at the same stand-off distance share an X offset instead of mirroring left/right")

	defenderPos2, defenderPos3 := f.spawns[6], f.spawns[7]
	require.Equal(t, defenderPos2.X, defenderPos3.X, "defending skaters at the same stand-off distance share an X offset instead of mirroring left/right")
}

func TestShootoutEndAttemptRecordsGoalAndAdvancesBreak(t *testing.T) {
	s := NewShootout(3)
	g := s.CreateGame(1)
	f := newFakeServer(g)
	s.team = world.TeamRed
	s.round = 0

	s.endAttempt(f, true)

	require.EqualValues(t, 1, g.RedScore)
	require.Equal(t, shootoutOver, s.state)
	require.EqualValues(t, 300, g.BreakTicks)
}

func TestShootoutEndsGameWhenOutcomeDecided(t *testing.T) {
	s := NewShootout(3)
	g := s.CreateGame(1)
	f := newFakeServer(g)
	// Red has scored twice with one attempt left for blue, which cannot
	// catch up: the shootout must end immediately instead of playing it out.
	g.RedScore = 2
	g.BlueScore = 0
	s.team = world.TeamRed
	s.round = 2

	s.endAttempt(f, true)

	require.Equal(t, shootoutPhaseGameOver, s.phase)
}
