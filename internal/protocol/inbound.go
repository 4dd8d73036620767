package protocol

import (
	"github.com/migomipo/hqmgo/internal/bitio"
	"github.com/migomipo/hqmgo/internal/world"
)

// unitFieldBits/unitFieldScale quantize a [-1, 1] control axis (turn, fwbw,
// stick azimuth/inclination, stick angle) to an 8-bit field. The spec leaves
// the exact width of these fields unspecified beyond "fixed scales"; 8 bits
// (±1 in steps of ~1/100) is this implementation's choice (see DESIGN.md).
const (
	unitFieldBits  = 8
	unitFieldScale = 100.0
)

func writeUnit(w *bitio.Writer, v float32) {
	q := int32((v+1)*unitFieldScale + 0.5)
	if q < 0 {
		q = 0
	}
	if q > 1<<unitFieldBits-1 {
		q = 1<<unitFieldBits - 1
	}
	w.WriteBits(unitFieldBits, uint32(q))
}

func readUnit(r *bitio.Reader) float32 {
	q := r.ReadBits(unitFieldBits)
	return float32(q)/unitFieldScale - 1
}

// JoinMessage is the decoded 0x11 JOIN packet body.
type JoinMessage struct {
	Version     uint32
	ClientToken uint32
	PlayerName  string
}

func DecodeJoin(buf []byte) (JoinMessage, bool) {
	r := bitio.NewReader(buf)
	cmd, ok := readHeader(r)
	if !ok || cmd != CmdJoin {
		return JoinMessage{}, false
	}
	version := r.ReadU32Aligned()
	token := r.ReadU32Aligned()
	nameBytes := r.ReadBytesAligned(32)
	return JoinMessage{Version: version, ClientToken: token, PlayerName: trimName(nameBytes)}, true
}

func trimName(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// ExitMessage is the decoded 0x07 EXIT packet body.
type ExitMessage struct {
	SessionToken uint32
}

func DecodeExit(buf []byte) (ExitMessage, bool) {
	r := bitio.NewReader(buf)
	cmd, ok := readHeader(r)
	if !ok || cmd != CmdExit {
		return ExitMessage{}, false
	}
	return ExitMessage{SessionToken: r.ReadU32Aligned()}, true
}

// IsRequestInfo reports whether buf is a well-formed 0x10 REQUEST_INFO ping.
func IsRequestInfo(buf []byte) bool {
	r := bitio.NewReader(buf)
	cmd, ok := readHeader(r)
	return ok && cmd == CmdRequestInfo
}

// InputMessage is the decoded 0x04 INPUT packet body, including the
// optional trailing chat line.
type InputMessage struct {
	SessionToken       uint32
	GameStepClient     uint32
	Input              world.PlayerInput
	LastAckSnapshot    uint32
	LastAckMessage     uint32
	HasChat            bool
	ChatRepeatCounter  uint8
	ChatText           string
}

const maxChatBytes = 32

func DecodeInput(buf []byte) (InputMessage, bool) {
	r := bitio.NewReader(buf)
	cmd, ok := readHeader(r)
	if !ok || cmd != CmdInput {
		return InputMessage{}, false
	}
	msg := InputMessage{}
	msg.SessionToken = r.ReadU32Aligned()
	msg.GameStepClient = r.ReadU32Aligned()

	msg.Input.Turn = readUnit(r)
	msg.Input.FwBw = readUnit(r)
	r.ReadBits(unitFieldBits) // reserved/unused field (spec §4.3: "unknown")
	msg.Input.StickAzimuth = readUnit(r)
	msg.Input.StickInclination = readUnit(r)
	msg.Input.HeadRot = bitio.DequantizeYaw(r.ReadBits(bitio.YawBits))
	msg.Input.BodyRot = bitio.DequantizeYaw(r.ReadBits(bitio.YawBits))
	msg.Input.StickAngle = readUnit(r)
	msg.Input.Keys = world.InputKeys(r.ReadBits(inputKeyBits))

	msg.LastAckSnapshot = r.ReadU32Aligned()
	msg.LastAckMessage = r.ReadU32Aligned()

	hasChat := r.ReadBits(1)
	if hasChat != 0 {
		msg.HasChat = true
		msg.ChatRepeatCounter = uint8(r.ReadBits(8))
		chatLen := r.ReadBits(8)
		if chatLen > maxChatBytes {
			chatLen = maxChatBytes
		}
		msg.ChatText = trimName(r.ReadBytesAligned(int(chatLen)))
	}
	return msg, true
}
