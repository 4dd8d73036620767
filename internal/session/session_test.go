package session

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func addr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func TestAdmitFillsFirstFreeSlot(t *testing.T) {
	tbl := NewTable(2)

	s1 := tbl.Admit(addr(1000), 1, 55, "Alice", 0, false)
	require.NotNil(t, s1)
	require.Equal(t, 0, s1.SlotIndex)

	s2 := tbl.Admit(addr(1001), 2, 55, "Bob", 0, false)
	require.NotNil(t, s2)
	require.Equal(t, 1, s2.SlotIndex)

	require.Nil(t, tbl.Admit(addr(1002), 3, 55, "Carol", 0, false), "a full table must refuse admission")
}

func TestAdmitReusesSlotAfterRemove(t *testing.T) {
	tbl := NewTable(1)
	s1 := tbl.Admit(addr(1000), 1, 55, "Alice", 0, false)
	require.NotNil(t, s1)

	tbl.Remove(s1.SlotIndex)
	s2 := tbl.Admit(addr(1001), 2, 55, "Bob", 0, false)
	require.NotNil(t, s2)
	require.Equal(t, 0, s2.SlotIndex)
}

func TestFindByAddrMatchesIPAndPort(t *testing.T) {
	tbl := NewTable(4)
	sess := tbl.Admit(addr(1000), 1, 55, "Alice", 0, false)
	require.NotNil(t, sess)

	found := tbl.FindByAddr(addr(1000))
	require.Same(t, sess, found)

	require.Nil(t, tbl.FindByAddr(addr(1001)))
}

func TestExpiredReportsOnlyStaleSessions(t *testing.T) {
	tbl := NewTable(4)
	fresh := tbl.Admit(addr(1000), 1, 55, "Fresh", 1000, false)
	stale := tbl.Admit(addr(1001), 2, 55, "Stale", 0, false)
	require.NotNil(t, fresh)
	require.NotNil(t, stale)

	expired := tbl.Expired(1000 + LivenessTimeoutTicks + 1)
	require.Len(t, expired, 1)
	require.Equal(t, stale.SlotIndex, expired[0].SlotIndex)
}

func TestCountReflectsOccupiedSlots(t *testing.T) {
	tbl := NewTable(4)
	require.Equal(t, 0, tbl.Count())

	sess := tbl.Admit(addr(1000), 1, 55, "Alice", 0, false)
	require.Equal(t, 1, tbl.Count())

	tbl.Remove(sess.SlotIndex)
	require.Equal(t, 0, tbl.Count())
}

func TestGetOutOfRangeReturnsNil(t *testing.T) {
	tbl := NewTable(2)
	require.Nil(t, tbl.Get(-1))
	require.Nil(t, tbl.Get(5))
}
