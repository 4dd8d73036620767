package world

// PlayerInput is the decoded per-tick input from a client (spec §4.3 INPUT
// command, §4.2 step 1-2). Analog fields are already descaled to their
// natural range; Keys is the raw bitset so individual key tests read the
// same way the wire layout does.
type PlayerInput struct {
	Turn        float32 // -1..1
	FwBw        float32 // -1..1, forward/backward skate input
	StickAzimuth float32
	StickInclination float32
	HeadRot     float32
	BodyRot     float32
	StickAngle  float32 // -1..1, roll around the stick axis
	Keys        InputKeys
}

type InputKeys uint8

const (
	KeyJump InputKeys = 1 << iota
	KeyCrouch
	KeyJoinRed
	KeyJoinBlue
	KeyShift
	KeySpectate
)

func (k InputKeys) Has(bit InputKeys) bool { return k&bit != 0 }
