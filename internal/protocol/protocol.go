// Package protocol encodes and decodes every wire message exchanged with
// the 1990s client: handshake, input, and the per-tick game-state snapshot
// (spec §4.3, §6.1). It depends only on internal/bitio and internal/world —
// no I/O of its own.
package protocol

import (
	"github.com/migomipo/hqmgo/internal/bitio"
)

// Magic is the 4-byte little-endian header every packet, in both
// directions, begins with.
const Magic uint32 = 0x11

// Inbound command bytes (client -> server), named in spec §4.3.
const (
	CmdRequestInfo uint8 = 0x10
	CmdJoin        uint8 = 0x11
	CmdInput       uint8 = 0x04
	CmdExit        uint8 = 0x07
)

// Outbound command bytes. The spec describes the INFO and JOIN replies by
// payload only, not by command byte, so the first two values are an
// implementation choice documented in DESIGN.md; CmdGameState's value (0x05)
// is given directly by the spec.
const (
	CmdInfoReply  uint8 = 0x01
	CmdJoinReply  uint8 = 0x02
	CmdGameState  uint8 = 0x05
)

// ClientVersion is the protocol version this server speaks; REQUEST_INFO
// and JOIN replies echo it so old clients can refuse to connect cleanly.
const ClientVersion uint32 = 55

// MaxPacketSize is the transport MTU ceiling (spec §4.3).
const MaxPacketSize = 1400

// inputKeyBits is the width of world.InputKeys, decoded here rather than imported so the
// protocol package doesn't need to know the bit meanings beyond width.
const inputKeyBits = 6

func writeHeader(w *bitio.Writer, cmd uint8) {
	w.WriteU32Aligned(Magic)
	w.WriteByteAligned(cmd)
}

// readHeader validates the magic and returns the command byte and whether
// the packet should be processed at all (spec §7: bad magic is a silently
// dropped malformed packet).
func readHeader(r *bitio.Reader) (cmd uint8, ok bool) {
	magic := r.ReadU32Aligned()
	if magic != Magic {
		return 0, false
	}
	return r.ReadByteAligned(), true
}
