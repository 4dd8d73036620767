package protocol

import (
	"github.com/migomipo/hqmgo/internal/bitio"
)

// EncodeInfoReply writes the REQUEST_INFO response (spec §4.3): version,
// current player count, team capacity, an implementation-defined mode id,
// and the server's display name.
func EncodeInfoReply(buf []byte, playerCount, teamMax, modeID uint32, serverName string) int {
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdInfoReply)
	w.WriteU32Aligned(ClientVersion)
	w.WriteU32Aligned(playerCount)
	w.WriteU32Aligned(teamMax)
	w.WriteU32Aligned(modeID)
	nameBytes := []byte(serverName)
	w.WriteByteAligned(uint8(len(nameBytes)))
	w.WriteBytesAlignedPadded(32, nameBytes)
	return w.BytesWritten()
}

// EncodeJoinReply writes the JOIN response. slotIndex < 0 signals the
// server-full case (spec §7): the reply then carries an ok bit of 0 and no
// slot index, so a rejection is never read as session 0.
func EncodeJoinReply(buf []byte, slotIndex int) int {
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdJoinReply)
	w.WriteU32Aligned(ClientVersion)
	ok := uint8(0)
	if slotIndex >= 0 {
		ok = 1
	}
	w.WriteBits(1, uint32(ok))
	if ok == 1 {
		w.WriteU32Aligned(uint32(slotIndex))
	}
	return w.BytesWritten()
}
