// Package physics advances the authoritative world by exactly one tick
// (1/100s) given the current input for every skater (spec §4.2). It is
// deterministic: float32 only, no time-based randomness, fixed iteration
// counts — two servers fed the same input history must produce identical
// snapshots (spec §5).
package physics

import "github.com/migomipo/hqmgo/internal/world"

// EventKind enumerates the simulation events emitted by a tick for the
// rules layer to consume (spec §4.2 step 12).
type EventKind uint8

const (
	EventPuckTouch EventKind = iota
	EventPuckEnteredOffensiveZone
	EventPuckLeftOffensiveZone
	EventPuckPassedGoalLine
	EventPuckEnteredOtherHalf
	EventPuckTouchedNet
	EventPuckEnteredNet
)

// Event is a single tagged simulation event. Not every field is populated
// for every Kind: zone, goal-line and net events set only Kind and Team;
// EventPuckTouch also sets PuckSlot and SkaterSlot.
type Event struct {
	Kind         EventKind
	Team         world.Team
	PuckSlot     int
	SkaterSlot   int
}
