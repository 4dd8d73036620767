package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migomipo/hqmgo/internal/bitio"
	"github.com/migomipo/hqmgo/internal/world"
)

func TestDecodeJoinRoundTrip(t *testing.T) {
	buf := make([]byte, MaxPacketSize)
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdJoin)
	w.WriteU32Aligned(42)
	w.WriteU32Aligned(999)
	w.WriteBytesAlignedPadded(32, []byte("Gretzky"))
	n := w.BytesWritten()

	msg, ok := DecodeJoin(buf[:n])
	require.True(t, ok)
	require.Equal(t, uint32(42), msg.Version)
	require.Equal(t, uint32(999), msg.ClientToken)
	require.Equal(t, "Gretzky", msg.PlayerName)
}

func TestDecodeJoinRejectsWrongCommand(t *testing.T) {
	buf := make([]byte, 16)
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdExit)
	n := w.BytesWritten()

	_, ok := DecodeJoin(buf[:n])
	require.False(t, ok)
}

func TestDecodeExitRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdExit)
	w.WriteU32Aligned(12345)
	n := w.BytesWritten()

	msg, ok := DecodeExit(buf[:n])
	require.True(t, ok)
	require.Equal(t, uint32(12345), msg.SessionToken)
}

func TestIsRequestInfo(t *testing.T) {
	buf := make([]byte, 8)
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdRequestInfo)
	n := w.BytesWritten()
	require.True(t, IsRequestInfo(buf[:n]))

	buf2 := make([]byte, 8)
	w2 := bitio.NewWriter(buf2)
	writeHeader(w2, CmdJoin)
	n2 := w2.BytesWritten()
	require.False(t, IsRequestInfo(buf2[:n2]))
}

func TestDecodeInputRoundTrip(t *testing.T) {
	buf := make([]byte, MaxPacketSize)
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdInput)
	w.WriteU32Aligned(7)
	w.WriteU32Aligned(1000)
	writeUnit(w, 0.5)
	writeUnit(w, -0.25)
	w.WriteBits(unitFieldBits, 0) // reserved
	writeUnit(w, 1.0)
	writeUnit(w, -1.0)
	w.WriteBits(bitio.YawBits, bitio.QuantizeYaw(0.75))
	w.WriteBits(bitio.YawBits, bitio.QuantizeYaw(-0.75))
	writeUnit(w, 0.0)
	w.WriteBits(inputKeyBits, uint32(world.KeyJump|world.KeyShift))
	w.WriteU32Aligned(500)
	w.WriteU32Aligned(600)
	w.WriteBits(1, 1) // has chat
	w.WriteBits(8, 3) // repeat counter
	chat := []byte("gg")
	w.WriteBits(8, uint32(len(chat)))
	w.WriteBytesAligned(chat)
	n := w.BytesWritten()

	msg, ok := DecodeInput(buf[:n])
	require.True(t, ok)
	require.Equal(t, uint32(7), msg.SessionToken)
	require.Equal(t, uint32(1000), msg.GameStepClient)
	require.InDelta(t, 0.5, msg.Input.Turn, 0.02)
	require.InDelta(t, -0.25, msg.Input.FwBw, 0.02)
	require.InDelta(t, 1.0, msg.Input.StickAzimuth, 0.02)
	require.InDelta(t, -1.0, msg.Input.StickInclination, 0.02)
	require.True(t, msg.Input.Keys.Has(world.KeyJump))
	require.True(t, msg.Input.Keys.Has(world.KeyShift))
	require.False(t, msg.Input.Keys.Has(world.KeyCrouch))
	require.Equal(t, uint32(500), msg.LastAckSnapshot)
	require.Equal(t, uint32(600), msg.LastAckMessage)
	require.True(t, msg.HasChat)
	require.Equal(t, uint8(3), msg.ChatRepeatCounter)
	require.Equal(t, "gg", msg.ChatText)
}

func TestEncodeInfoReplyHasHeaderAndVersion(t *testing.T) {
	buf := make([]byte, 128)
	n := EncodeInfoReply(buf, 4, 5, 0, "Test Rink")
	require.Greater(t, n, 0)

	r := bitio.NewReader(buf[:n])
	cmd, ok := readHeader(r)
	require.True(t, ok)
	require.Equal(t, CmdInfoReply, cmd)
	require.Equal(t, ClientVersion, r.ReadU32Aligned())
	require.Equal(t, uint32(4), r.ReadU32Aligned())
	require.Equal(t, uint32(5), r.ReadU32Aligned())
}

func TestEncodeJoinReplyAccepted(t *testing.T) {
	buf := make([]byte, 32)
	n := EncodeJoinReply(buf, 3)

	r := bitio.NewReader(buf[:n])
	cmd, ok := readHeader(r)
	require.True(t, ok)
	require.Equal(t, CmdJoinReply, cmd)
	require.Equal(t, ClientVersion, r.ReadU32Aligned())
	require.EqualValues(t, 1, r.ReadBits(1))
	require.EqualValues(t, 3, r.ReadU32Aligned())
}

func TestEncodeJoinReplyRejected(t *testing.T) {
	buf := make([]byte, 32)
	n := EncodeJoinReply(buf, -1)

	r := bitio.NewReader(buf[:n])
	_, ok := readHeader(r)
	require.True(t, ok)
	r.ReadU32Aligned() // version
	require.EqualValues(t, 0, r.ReadBits(1))
}
