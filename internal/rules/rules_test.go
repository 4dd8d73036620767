package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

func newRulesTestGame() *world.Game {
	rink := world.NewStandardRink()
	return world.NewGame(rink, 1, 1)
}

func TestAssignFaceoffPositionsHonorsPreference(t *testing.T) {
	refs := []PlayerRef{
		{SessionIndex: 0, Name: "A", InGame: true, Team: world.TeamRed, PreferredPosition: "LW"},
		{SessionIndex: 1, Name: "B", InGame: true, Team: world.TeamRed, PreferredPosition: "C"},
		{SessionIndex: 2, Name: "C", InGame: true, Team: world.TeamRed, PreferredPosition: ""},
	}
	assignments := assignFaceoffPositions(refs, world.AllowedPositions)

	require.Equal(t, "LW", assignments[0].name)
	require.Equal(t, "C", assignments[1].name)
	require.NotEqual(t, "", assignments[2].name)
	require.NotEqual(t, "LW", assignments[2].name)
	require.NotEqual(t, "C", assignments[2].name)
}

func TestAssignFaceoffPositionsConflictFallsBackToAvailable(t *testing.T) {
	refs := []PlayerRef{
		{SessionIndex: 0, Name: "A", InGame: true, Team: world.TeamRed, PreferredPosition: "C"},
		{SessionIndex: 1, Name: "B", InGame: true, Team: world.TeamRed, PreferredPosition: "C"},
	}
	assignments := assignFaceoffPositions(refs, world.AllowedPositions)

	names := map[string]bool{assignments[0].name: true, assignments[1].name: true}
	require.Len(t, names, 2, "two players with the same preference must not collide on one position")
	require.True(t, names["C"], "one of the two must keep the contested center position")
}

func TestAssignFaceoffPositionsEnsuresACenterWhenAvailable(t *testing.T) {
	refs := []PlayerRef{
		{SessionIndex: 0, Name: "A", InGame: true, Team: world.TeamRed, PreferredPosition: "LW"},
		{SessionIndex: 1, Name: "B", InGame: true, Team: world.TeamRed, PreferredPosition: "RW"},
	}
	assignments := assignFaceoffPositions(refs, world.AllowedPositions)

	hasCenter := false
	for _, a := range assignments {
		if a.name == "C" {
			hasCenter = true
		}
	}
	require.True(t, hasCenter, "a team with no one preferring center still needs one assigned")
}

func TestDoFaceoffPlacesPlayersAndClearsPucks(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.World.CreatePuckObject(mathutil.Vec3{X: 1, Y: 1, Z: 1}, mathutil.Identity3())

	players := []PlayerRef{
		{SessionIndex: 0, Name: "A", InGame: true, Team: world.TeamRed, Hand: world.HandRight, PreferredPosition: "C"},
		{SessionIndex: 1, Name: "B", InGame: true, Team: world.TeamBlue, Hand: world.HandLeft, PreferredPosition: "C"},
	}
	e.DoFaceoff(g, players)

	pucks := g.World.Pucks()
	require.Len(t, pucks, 1, "faceoff must clear old pucks and drop exactly one fresh one")

	skaters := g.World.Skaters()
	require.Len(t, skaters, 2)
	require.Equal(t, world.IcingOff, g.Icing.State)
}

func TestHandleEventsGoalIncrementsScoreAndStartsBreak(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.Period = 1
	g.TimeRemainingTicks = 1000
	puckSlot := g.World.CreatePuckObject(mathutil.Vec3{}, mathutil.Identity3())

	e.HandleEvents(g, []physics.Event{{Kind: physics.EventPuckEnteredNet, Team: world.TeamRed, PuckSlot: puckSlot}})

	require.EqualValues(t, 1, g.RedScore)
	require.EqualValues(t, 0, g.BlueScore)
	require.Greater(t, g.BreakTicks, uint32(0))
	require.True(t, g.IsIntermissionGoal)
}

func TestHandleEventsGoalEndsGameAtMercy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mercy = 3
	e := NewEngine(cfg)
	g := newRulesTestGame()
	g.Period = 1
	g.TimeRemainingTicks = 1000
	g.RedScore = 2
	puckSlot := g.World.CreatePuckObject(mathutil.Vec3{}, mathutil.Identity3())

	e.HandleEvents(g, []physics.Event{{Kind: physics.EventPuckEnteredNet, Team: world.TeamRed, PuckSlot: puckSlot}})

	require.True(t, g.GameOver)
	require.Equal(t, cfg.TimeIntermission, g.BreakTicks)
}

func TestHandleEventsSkipsWhileOnBreak(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.Period = 1
	g.TimeRemainingTicks = 1000
	g.BreakTicks = 50
	puckSlot := g.World.CreatePuckObject(mathutil.Vec3{}, mathutil.Identity3())

	e.HandleEvents(g, []physics.Event{{Kind: physics.EventPuckEnteredNet, Team: world.TeamRed, PuckSlot: puckSlot}})

	require.EqualValues(t, 0, g.RedScore, "events must be ignored entirely while a break is already running")
}

func TestUpdateClockCountsDownAndTriggersFaceoff(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.Period = 1
	g.BreakTicks = 1
	g.TimeRemainingTicks = 100

	res := e.UpdateClock(g)

	require.EqualValues(t, 0, g.BreakTicks)
	require.True(t, res.FaceoffDue)
}

func TestUpdateClockEndsPeriodAndStartsIntermission(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.Period = 1
	g.TimeRemainingTicks = 1

	e.UpdateClock(g)

	require.EqualValues(t, 2, g.Period)
	require.Greater(t, g.BreakTicks, uint32(0))
}

func TestUpdateClockDoesNothingWhilePaused(t *testing.T) {
	e := NewEngine(DefaultConfig())
	g := newRulesTestGame()
	g.Paused = true
	g.Period = 1
	g.TimeRemainingTicks = 100

	e.UpdateClock(g)

	require.EqualValues(t, 100, g.TimeRemainingTicks)
}
