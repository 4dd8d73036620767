package world

import "github.com/migomipo/hqmgo/internal/mathutil"

// World is the object table plus the static rink it's placed on (spec §3).
// PuckSlotCount pucks occupy slots [0, PuckSlotCount); the rest are
// skater-only, matching find_empty_puck_slot/find_empty_player_slot.
type World struct {
	Rink          *Rink
	Slots         [TotalObjectSlots]Slot
	PuckSlotCount int
}

func NewWorld(rink *Rink, puckSlotCount int) *World {
	return &World{Rink: rink, PuckSlotCount: puckSlotCount}
}

func (w *World) findEmptyPuckSlot() int {
	for i := 0; i < w.PuckSlotCount; i++ {
		if w.Slots[i].Kind == SlotEmpty {
			return i
		}
	}
	return -1
}

func (w *World) findEmptySkaterSlot() int {
	for i := w.PuckSlotCount; i < TotalObjectSlots; i++ {
		if w.Slots[i].Kind == SlotEmpty {
			return i
		}
	}
	return -1
}

// CreatePuckObject places a new puck in the next free puck slot, returning
// -1 if none is free.
func (w *World) CreatePuckObject(pos mathutil.Vec3, rot mathutil.Mat3) int {
	i := w.findEmptyPuckSlot()
	if i < 0 {
		return -1
	}
	w.Slots[i].Kind = SlotPuck
	w.Slots[i].Puck = NewPuck(pos, rot)
	return i
}

// CreatePlayerObject places a new skater in the next free skater slot.
func (w *World) CreatePlayerObject(team Team, pos mathutil.Vec3, rot mathutil.Mat3, hand Hand, owningSession int, faceoffPosition string) int {
	i := w.findEmptySkaterSlot()
	if i < 0 {
		return -1
	}
	w.Slots[i].Kind = SlotSkater
	w.Slots[i].Skater = NewSkater(i, team, pos, rot, hand, owningSession, faceoffPosition)
	return i
}

// RemoveObject empties a slot and bumps its generation counter (spec §9).
// The snapshot encoder does not read Generation.
func (w *World) RemoveObject(i int) {
	w.Slots[i].Generation++
	w.Slots[i].Kind = SlotEmpty
	w.Slots[i].Puck = nil
	w.Slots[i].Skater = nil
}

// ClearPucks empties every puck slot (used at faceoff time).
func (w *World) ClearPucks() {
	for i := 0; i < w.PuckSlotCount; i++ {
		if w.Slots[i].Kind != SlotEmpty {
			w.RemoveObject(i)
		}
	}
}

// ClearSkaters empties every skater slot (used at faceoff time so skaters
// are respawned fresh at their new positions).
func (w *World) ClearSkaters() {
	for i := w.PuckSlotCount; i < TotalObjectSlots; i++ {
		if w.Slots[i].Kind != SlotEmpty {
			w.RemoveObject(i)
		}
	}
}

func (w *World) Skaters() []*Skater {
	var out []*Skater
	for i := range w.Slots {
		if w.Slots[i].Kind == SlotSkater {
			out = append(out, w.Slots[i].Skater)
		}
	}
	return out
}

func (w *World) Pucks() []*Puck {
	var out []*Puck
	for i := range w.Slots {
		if w.Slots[i].Kind == SlotPuck {
			out = append(out, w.Slots[i].Puck)
		}
	}
	return out
}

// IcingStatus mirrors HQMIcingStatus (hqm_game.rs via hqm_rules.rs): the
// state machine driving icing detection (spec §4.5).
type IcingStatus struct {
	State IcingState
	Team  Team
	Pos   mathutil.Vec3
}

type IcingState uint8

const (
	IcingOff IcingState = iota
	IcingNotTouched
	IcingWarning
	IcingCalled
)

// OffsideStatus mirrors HQMOffsideStatus (spec §4.5).
type OffsideStatus struct {
	State        OffsideState
	Team         Team
	EntryPos     mathutil.Vec3
	EntrySession int
}

type OffsideState uint8

const (
	OffsideNeutral OffsideState = iota
	OffsideInOffensiveZone
	OffsideWarning
	OffsideCalled
)

// Message is a persistent, append-only gameplay event (spec §3 Message).
type Message struct {
	Index int
	Kind  MessageKind

	// PlayerUpdate fields
	PlayerName   string
	ObjectSlot   int // -1 if none
	ObjectTeam   Team
	SessionSlot  int
	PlayerInGame bool

	// Goal fields
	GoalTeam   Team
	Scorer     int // session slot, -1 if none
	Assist     int // session slot, -1 if none

	// Chat fields
	ChatSender int // session slot, -1 for server
	ChatText   string
}

type MessageKind uint8

const (
	MessagePlayerUpdate MessageKind = iota
	MessageGoal
	MessageChat
)

// Game is one match's worth of mutable state: the world plus score clock
// and rule-state-machine status (spec §3 Game).
type Game struct {
	World *World

	Period            uint32
	TimeRemainingTicks uint32
	BreakTicks         uint32
	RedScore, BlueScore uint32
	IsIntermissionGoal bool
	GameStep           uint32
	GameOver           bool

	Icing   IcingStatus
	Offside OffsideStatus

	NextFaceoff FaceoffRef

	PersistentMessages []Message

	Paused bool

	GameNumber int
}

// NewGame creates a fresh game on the given rink. puckSlotCount is usually
// 1 but modes that juggle multiple pucks (e.g. warmup) may ask for more.
func NewGame(rink *Rink, puckSlotCount int, gameNumber int) *Game {
	return &Game{
		World:      NewWorld(rink, puckSlotCount),
		GameStep:   0,
		NextFaceoff: FaceoffRef{Kind: FaceoffCenter},
		GameNumber: gameNumber,
	}
}

// AddGlobalMessage appends a persistent message, assigning it the next
// index (spec invariant 4).
func (g *Game) AddGlobalMessage(m Message) {
	m.Index = len(g.PersistentMessages)
	g.PersistentMessages = append(g.PersistentMessages, m)
}

func (g *Game) AddChatMessage(sender int, text string) {
	g.AddGlobalMessage(Message{Kind: MessageChat, ChatSender: sender, ChatText: text})
}
