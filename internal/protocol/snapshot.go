package protocol

import (
	"github.com/migomipo/hqmgo/internal/bitio"
	"github.com/migomipo/hqmgo/internal/world"
)

// Object type tags for the 2-bit slot header (spec §4.3): 01 is reserved/
// unused, matching the source's own tag space.
const (
	tagNone   = 0
	tagPuck   = 2
	tagSkater = 3
)

// puckOrientationBits/stickOrientationBits: the spec names "skater
// orientation 25" and "body orientation 31" (§6.1) for the skater's own
// two rotations; it does not separately name a width for the puck's
// rotation. This implementation reuses the 25-bit ("skater") width for the
// puck and the stick, and reserves the 31-bit width for a skater's body —
// the puck spins fast but doesn't need sub-degree precision, so the
// narrower field suffices (see DESIGN.md).
const (
	puckOrientationBits = bitio.SkaterOrientationBits
	stickOrientationBits = bitio.SkaterOrientationBits
	bodyOrientationBits = bitio.BodyOrientationBits
)

// ObjectFields is one slot's worth of quantized field values: the unit the
// delta encoder actually diffs against, so both the snapshot history and
// the encoder work over integers, not floats.
type ObjectFields struct {
	Kind uint8 // tagNone / tagPuck / tagSkater

	PosX, PosY, PosZ uint32
	RotCol1, RotCol2 uint32

	// Skater-only.
	StickPosX, StickPosY, StickPosZ uint32
	StickRotCol1, StickRotCol2      uint32
	HeadYaw, BodyYaw                uint32
	Team                            uint8
}

// Snapshot is the quantized state of every object slot at one game_step.
type Snapshot struct {
	GameStep uint32
	Objects  [world.TotalObjectSlots]ObjectFields
}

// BuildSnapshot quantizes the current world state (spec §4.1 quantization
// rules) into a Snapshot ready for either absolute or delta encoding.
func BuildSnapshot(g *world.Game) Snapshot {
	snap := Snapshot{GameStep: g.GameStep}
	for i := range g.World.Slots {
		slot := &g.World.Slots[i]
		switch slot.Kind {
		case world.SlotPuck:
			p := slot.Puck
			c1, c2 := bitio.EncodeMatrix(puckOrientationBits, p.Body.Rot)
			snap.Objects[i] = ObjectFields{
				Kind:    tagPuck,
				PosX:    bitio.QuantizePos(p.Body.Pos.X),
				PosY:    bitio.QuantizePos(p.Body.Pos.Y),
				PosZ:    bitio.QuantizePos(p.Body.Pos.Z),
				RotCol1: c1,
				RotCol2: c2,
			}
		case world.SlotSkater:
			s := slot.Skater
			bc1, bc2 := bitio.EncodeMatrix(bodyOrientationBits, s.Body.Rot)
			rel := s.StickPos.Sub(s.Body.Pos)
			sc1, sc2 := bitio.EncodeMatrix(stickOrientationBits, s.StickRot)
			team := uint8(0)
			if s.Team == world.TeamBlue {
				team = 1
			}
			snap.Objects[i] = ObjectFields{
				Kind:         tagSkater,
				PosX:         bitio.QuantizePos(s.Body.Pos.X),
				PosY:         bitio.QuantizePos(s.Body.Pos.Y),
				PosZ:         bitio.QuantizePos(s.Body.Pos.Z),
				RotCol1:      bc1,
				RotCol2:      bc2,
				StickPosX:    bitio.QuantizeStickOffset(rel.X),
				StickPosY:    bitio.QuantizeStickOffset(rel.Y),
				StickPosZ:    bitio.QuantizeStickOffset(rel.Z),
				StickRotCol1: sc1,
				StickRotCol2: sc2,
				HeadYaw:      bitio.QuantizeYaw(s.HeadYaw),
				BodyYaw:      bitio.QuantizeYaw(s.BodyYaw),
				Team:         team,
			}
		default:
			snap.Objects[i] = ObjectFields{Kind: tagNone}
		}
	}
	return snap
}

// History retains the last snapshots indexed by game_step, enough to
// delta-encode against any session whose ack cursor hasn't fallen too far
// behind (spec §4.3: "keeps at least the last 64 snapshots").
type History struct {
	ring [64]Snapshot
	have [64]bool
}

func NewHistory() *History { return &History{} }

func (h *History) Push(snap Snapshot) {
	i := snap.GameStep % uint32(len(h.ring))
	h.ring[i] = snap
	h.have[i] = true
}

// Get returns the snapshot recorded for step, or ok=false if it has since
// been overwritten (or was never recorded) — the caller falls back to an
// absolute encode in that case.
func (h *History) Get(step uint32) (Snapshot, bool) {
	i := step % uint32(len(h.ring))
	if !h.have[i] || h.ring[i].GameStep != step {
		return Snapshot{}, false
	}
	return h.ring[i], true
}

// writeFieldDelta writes one quantized scalar against its previous value,
// or absolute if prev is nil (no baseline).
func writeFieldDelta(w *bitio.Writer, bits uint8, cur uint32, prev *uint32) {
	old := int64(-1)
	if prev != nil {
		old = int64(*prev)
	}
	w.WritePos(bits, cur, old)
}

func encodeObject(w *bitio.Writer, cur ObjectFields, prev *ObjectFields) {
	w.WriteBits(2, uint32(cur.Kind))
	switch cur.Kind {
	case tagNone:
		return
	case tagPuck:
		var p *ObjectFields
		if prev != nil && prev.Kind == tagPuck {
			p = prev
		}
		writePuckFields(w, cur, p)
	case tagSkater:
		var p *ObjectFields
		if prev != nil && prev.Kind == tagSkater {
			p = prev
		}
		writeSkaterFields(w, cur, p)
	}
}

func writePuckFields(w *bitio.Writer, cur ObjectFields, prev *ObjectFields) {
	var px, py, pz, r1, r2 *uint32
	if prev != nil {
		px, py, pz, r1, r2 = &prev.PosX, &prev.PosY, &prev.PosZ, &prev.RotCol1, &prev.RotCol2
	}
	writeFieldDelta(w, bitio.PosBits, cur.PosX, px)
	writeFieldDelta(w, bitio.PosBits, cur.PosY, py)
	writeFieldDelta(w, bitio.PosBits, cur.PosZ, pz)
	writeFieldDelta(w, puckOrientationBits, cur.RotCol1, r1)
	writeFieldDelta(w, puckOrientationBits, cur.RotCol2, r2)
}

func writeSkaterFields(w *bitio.Writer, cur ObjectFields, prev *ObjectFields) {
	var px, py, pz, bc1, bc2, spx, spy, spz, sc1, sc2, hy, by *uint32
	if prev != nil {
		px, py, pz = &prev.PosX, &prev.PosY, &prev.PosZ
		bc1, bc2 = &prev.RotCol1, &prev.RotCol2
		spx, spy, spz = &prev.StickPosX, &prev.StickPosY, &prev.StickPosZ
		sc1, sc2 = &prev.StickRotCol1, &prev.StickRotCol2
		hy, by = &prev.HeadYaw, &prev.BodyYaw
	}
	w.WriteBits(1, uint32(cur.Team))
	writeFieldDelta(w, bitio.PosBits, cur.PosX, px)
	writeFieldDelta(w, bitio.PosBits, cur.PosY, py)
	writeFieldDelta(w, bitio.PosBits, cur.PosZ, pz)
	writeFieldDelta(w, bodyOrientationBits, cur.RotCol1, bc1)
	writeFieldDelta(w, bodyOrientationBits, cur.RotCol2, bc2)
	writeFieldDelta(w, bitio.StickOffsetBits, cur.StickPosX, spx)
	writeFieldDelta(w, bitio.StickOffsetBits, cur.StickPosY, spy)
	writeFieldDelta(w, bitio.StickOffsetBits, cur.StickPosZ, spz)
	writeFieldDelta(w, stickOrientationBits, cur.StickRotCol1, sc1)
	writeFieldDelta(w, stickOrientationBits, cur.StickRotCol2, sc2)
	writeFieldDelta(w, bitio.YawBits, cur.HeadYaw, hy)
	writeFieldDelta(w, bitio.YawBits, cur.BodyYaw, by)
}

// RulesState packs the icing/offside state machines into the header's
// rules_state field (spec §4.3 step 1).
func rulesState(g *world.Game) uint32 {
	var v uint32
	v |= uint32(g.Icing.State) & 0x3
	v |= (uint32(g.Offside.State) & 0x3) << 2
	return v
}

// EncodeGameState writes the full 0x05 GAME_STATE packet for one session.
// prev is the baseline snapshot to delta against (nil forces an absolute
// encode of every field, e.g. when the session's ack cursor has aged out of
// History). messages are the persistent messages still owed to this
// session (index > lastAckMessage), already budget-trimmed by the caller.
func EncodeGameState(buf []byte, g *world.Game, cur Snapshot, prev *Snapshot, messages []world.Message) int {
	w := bitio.NewWriter(buf)
	writeHeader(w, CmdGameState)

	w.WriteU32Aligned(cur.GameStep)
	gameOver := uint32(0)
	if g.GameOver {
		gameOver = 1
	}
	w.WriteBits(1, gameOver)
	w.WriteU32Aligned(g.RedScore)
	w.WriteU32Aligned(g.BlueScore)
	w.WriteU32Aligned(g.Period)
	w.WriteU32Aligned(g.TimeRemainingTicks)
	w.WriteU32Aligned(g.BreakTicks)
	w.WriteBits(4, rulesState(g))

	for i := range cur.Objects {
		var p *ObjectFields
		if prev != nil {
			p = &prev.Objects[i]
		}
		encodeObject(w, cur.Objects[i], p)
	}

	w.WriteU32Aligned(uint32(len(messages)))
	for _, m := range messages {
		encodeMessage(w, m)
	}

	return w.BytesWritten()
}

func encodeMessage(w *bitio.Writer, m world.Message) {
	w.WriteU32Aligned(uint32(m.Index))
	w.WriteByteAligned(uint8(m.Kind))
	switch m.Kind {
	case world.MessagePlayerUpdate:
		nameBytes := []byte(m.PlayerName)
		w.WriteByteAligned(uint8(len(nameBytes)))
		w.WriteBytesAlignedPadded(32, nameBytes)
		hasObject := uint8(0)
		if m.ObjectSlot >= 0 {
			hasObject = 1
		}
		w.WriteBits(1, uint32(hasObject))
		if hasObject == 1 {
			w.WriteBits(6, uint32(m.ObjectSlot))
			w.WriteBits(1, uint32(m.ObjectTeam))
		}
		w.WriteBits(6, uint32(m.SessionSlot))
		inGame := uint8(0)
		if m.PlayerInGame {
			inGame = 1
		}
		w.WriteBits(1, uint32(inGame))
	case world.MessageGoal:
		w.WriteBits(1, uint32(m.GoalTeam))
		hasScorer := uint8(0)
		if m.Scorer >= 0 {
			hasScorer = 1
		}
		w.WriteBits(1, uint32(hasScorer))
		if hasScorer == 1 {
			w.WriteBits(6, uint32(m.Scorer))
		}
		hasAssist := uint8(0)
		if m.Assist >= 0 {
			hasAssist = 1
		}
		w.WriteBits(1, uint32(hasAssist))
		if hasAssist == 1 {
			w.WriteBits(6, uint32(m.Assist))
		}
	case world.MessageChat:
		hasSender := uint8(0)
		if m.ChatSender >= 0 {
			hasSender = 1
		}
		w.WriteBits(1, uint32(hasSender))
		if hasSender == 1 {
			w.WriteBits(6, uint32(m.ChatSender))
		}
		textBytes := []byte(m.ChatText)
		if len(textBytes) > 255 {
			textBytes = textBytes[:255]
		}
		w.WriteByteAligned(uint8(len(textBytes)))
		w.WriteBytesAligned(textBytes)
	}
}
