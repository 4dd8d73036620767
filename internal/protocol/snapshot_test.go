package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migomipo/hqmgo/internal/bitio"
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

func newTestGame(t *testing.T) *world.Game {
	t.Helper()
	rink := world.NewStandardRink()
	g := world.NewGame(rink, 1, 1)
	g.World.CreatePuckObject(mathutil.Vec3{X: 15, Y: 1, Z: 30}, mathutil.Identity3())
	g.World.CreatePlayerObject(world.TeamRed, mathutil.Vec3{X: 10, Y: 0, Z: 10}, mathutil.Identity3(), world.HandRight, 0, "C")
	return g
}

func TestBuildSnapshotTagsFilledSlots(t *testing.T) {
	g := newTestGame(t)
	snap := BuildSnapshot(g)

	require.Equal(t, uint8(tagPuck), snap.Objects[0].Kind)
	require.Equal(t, uint8(tagSkater), snap.Objects[1].Kind)
	for i := 2; i < world.TotalObjectSlots; i++ {
		require.Equal(t, uint8(tagNone), snap.Objects[i].Kind)
	}
}

func TestHistoryPushGetRoundTrip(t *testing.T) {
	h := NewHistory()
	g := newTestGame(t)

	g.GameStep = 5
	snap := BuildSnapshot(g)
	h.Push(snap)

	got, ok := h.Get(5)
	require.True(t, ok)
	require.Equal(t, uint32(5), got.GameStep)

	_, ok = h.Get(6)
	require.False(t, ok)
}

func TestHistoryEvictsOnWraparound(t *testing.T) {
	h := NewHistory()
	g := newTestGame(t)

	g.GameStep = 1
	h.Push(BuildSnapshot(g))

	// Same ring slot (step 1 and step 65 share index 1 mod 64), later step
	// must overwrite and the stale lookup by the old step must miss.
	g.GameStep = 65
	h.Push(BuildSnapshot(g))

	_, ok := h.Get(1)
	require.False(t, ok)
	got, ok := h.Get(65)
	require.True(t, ok)
	require.Equal(t, uint32(65), got.GameStep)
}

func TestEncodeGameStateProducesBytesWithoutPanicking(t *testing.T) {
	g := newTestGame(t)
	g.RedScore = 2
	g.BlueScore = 1
	g.Period = 1
	snap := BuildSnapshot(g)

	buf := make([]byte, MaxPacketSize)
	n := EncodeGameState(buf, g, snap, nil, nil)
	require.Greater(t, n, 0)

	r := bitio.NewReader(buf[:n])
	cmd, ok := readHeader(r)
	require.True(t, ok)
	require.Equal(t, CmdGameState, cmd)
}

func TestEncodeGameStateWithMessages(t *testing.T) {
	g := newTestGame(t)
	snap := BuildSnapshot(g)
	msgs := []world.Message{
		{Index: 0, Kind: world.MessageChat, ChatSender: -1, ChatText: "server says hi"},
		{Index: 1, Kind: world.MessageGoal, GoalTeam: world.TeamRed, Scorer: 0, Assist: -1},
	}

	buf := make([]byte, MaxPacketSize)
	n := EncodeGameState(buf, g, snap, nil, msgs)
	require.Greater(t, n, 0)
}

func TestEncodeGameStateDeltaAgainstPrevSmallerThanAbsolute(t *testing.T) {
	g := newTestGame(t)
	prevSnap := BuildSnapshot(g)

	g.GameStep = 1
	curSnap := BuildSnapshot(g)

	bufAbs := make([]byte, MaxPacketSize)
	nAbs := EncodeGameState(bufAbs, g, curSnap, nil, nil)

	bufDelta := make([]byte, MaxPacketSize)
	nDelta := EncodeGameState(bufDelta, g, curSnap, &prevSnap, nil)

	require.LessOrEqual(t, nDelta, nAbs)
}
