package gameserver

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/migomipo/hqmgo/config"
	"github.com/migomipo/hqmgo/internal/ban"
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/modes"
	"github.com/migomipo/hqmgo/internal/world"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cfg := config.DefaultServerConfiguration()
	cfg.PlayerMax = 4
	mode := modes.NewFaceoffPractice()
	return New(cfg, conn, mode, ban.NewInMemory(), nil, zerolog.Nop())
}

func TestModeIDMapping(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]uint32{
		"match":    0,
		"warmup":   1,
		"shootout": 2,
		"russian":  3,
		"practice": 4,
		"unknown":  0,
	}
	for mode, want := range cases {
		s.cfg.ModeParams.Mode = mode
		require.Equal(t, want, s.modeID(), "mode %q", mode)
	}
}

func TestSpawnSkaterAndMoveToSpectatorRoundTrip(t *testing.T) {
	s := newTestServer(t)
	sess := s.sessions.Admit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}, 1, 55, "Tester", 0, false)
	require.NotNil(t, sess)

	s.SpawnSkater(sess.SlotIndex, world.TeamRed, mathutil.Vec3{X: 1, Y: 2, Z: 3}, mathutil.Identity3())

	team, ok := s.SessionTeam(sess.SlotIndex)
	require.True(t, ok)
	require.Equal(t, world.TeamRed, team)
	require.GreaterOrEqual(t, sess.SkaterObjectIndex, 0)

	s.MoveToSpectator(sess.SlotIndex)
	_, ok = s.SessionTeam(sess.SlotIndex)
	require.False(t, ok)
	require.Equal(t, -1, sess.SkaterObjectIndex)
}

func TestSpawnSkaterFallsBackToCenterWithNoPreference(t *testing.T) {
	s := newTestServer(t)
	sess := s.sessions.Admit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5001}, 1, 55, "Tester", 0, false)
	require.NotNil(t, sess)
	require.Equal(t, "", sess.PreferredPosition)

	s.SpawnSkater(sess.SlotIndex, world.TeamRed, mathutil.Vec3{}, mathutil.Identity3())

	slot := s.game.World.Slots[sess.SkaterObjectIndex]
	require.Equal(t, "C", slot.Skater.FaceoffPosition)
}

func TestInGameSessionsIncludesSpectators(t *testing.T) {
	s := newTestServer(t)
	sess := s.sessions.Admit(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5002}, 1, 55, "Tester", 0, false)
	require.NotNil(t, sess)

	slots := s.InGameSessions()
	require.Contains(t, slots, sess.SlotIndex)
}

func TestAddChatMessageAppendsToGame(t *testing.T) {
	s := newTestServer(t)
	before := len(s.game.PersistentMessages)
	s.AddChatMessage(-1, "hello")
	require.Len(t, s.game.PersistentMessages, before+1)
}

func TestIPLimitersAllowsUpToBurstThenBlocks(t *testing.T) {
	l := newIPLimiters(rate.Every(time.Hour), 2)
	ip := net.IPv4(10, 0, 0, 1)

	require.True(t, l.allow(ip))
	require.True(t, l.allow(ip))
	require.False(t, l.allow(ip), "third request within the same burst window must be throttled")
}

func TestIPLimitersTracksPerIPIndependently(t *testing.T) {
	l := newIPLimiters(rate.Every(time.Hour), 1)
	a := net.IPv4(10, 0, 0, 1)
	b := net.IPv4(10, 0, 0, 2)

	require.True(t, l.allow(a))
	require.False(t, l.allow(a))
	require.True(t, l.allow(b), "a different source IP must have its own independent budget")
}
