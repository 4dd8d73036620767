// Package session owns the fixed-capacity table of connected peers: address
// lookup, liveness timeout, and the per-peer acknowledgement cursors the
// protocol layer's delta encoder needs (spec §4.4).
package session

import (
	"net"

	"github.com/migomipo/hqmgo/internal/world"
)

// Role mirrors spec §3 Session.role.
type Role uint8

const (
	RoleSpectator Role = iota
	RoleSkater
	RoleDualControlDriver
)

// LivenessTimeoutTicks is how long a session may go without a packet before
// it's garbage-collected (spec §4.4: 500 ticks / 5s).
const LivenessTimeoutTicks = 500

// Admission mirrors the ban interface's tri-state result (spec §6.3).
type Admission uint8

const (
	AdmissionAllowed Admission = iota
	AdmissionBanned
	AdmissionPending
)

// Session is one connected peer (spec §3 Session).
type Session struct {
	Addr                 *net.UDPAddr
	Token                uint32
	ClientVersion        uint32
	PlayerName           string
	SlotIndex            int
	LastPacketSeenAtTick uint32
	LastAckSnapshot      uint32
	HasAckSnapshot       bool
	LastAckMessage       uint32
	InputCurrent         world.PlayerInput
	InputPrev            world.PlayerInput
	Admin                bool
	TeamSwitchCooldown   uint32
	SkaterObjectIndex    int // -1 if not controlling a skater
	Role                 Role
	Provisional          bool // set at admission when the ban check answered Pending; not updated afterwards
	PreferredPosition    string // faceoff position code, e.g. "C", "LW"; JOIN carries none, so Admit leaves it empty
}

// Table is the fixed-capacity session array (spec §4.4). Lookup by address
// is a deliberate linear scan: the player_max the spec targets (tens, not
// thousands) makes this cheaper and simpler than a hash map kept in sync
// with slot recycling.
type Table struct {
	slots []*Session
}

func NewTable(capacity int) *Table {
	return &Table{slots: make([]*Session, capacity)}
}

func (t *Table) Capacity() int { return len(t.slots) }

func (t *Table) Get(slot int) *Session {
	if slot < 0 || slot >= len(t.slots) {
		return nil
	}
	return t.slots[slot]
}

func (t *Table) Count() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// FindByAddr does the linear scan by (ip, port) spec §4.4 mandates.
func (t *Table) FindByAddr(addr *net.UDPAddr) *Session {
	for _, s := range t.slots {
		if s != nil && s.Addr.IP.Equal(addr.IP) && s.Addr.Port == addr.Port {
			return s
		}
	}
	return nil
}

// Admit places a new session in the first free slot, or returns nil if the
// table is full (spec §7: "Full server on JOIN").
func (t *Table) Admit(addr *net.UDPAddr, token uint32, version uint32, name string, tick uint32, provisional bool) *Session {
	for i, s := range t.slots {
		if s == nil {
			sess := &Session{
				Addr:                 addr,
				Token:                token,
				ClientVersion:        version,
				PlayerName:           name,
				SlotIndex:            i,
				LastPacketSeenAtTick: tick,
				SkaterObjectIndex:    -1,
				Role:                 RoleSpectator,
				Provisional:          provisional,
			}
			t.slots[i] = sess
			return sess
		}
	}
	return nil
}

func (t *Table) Remove(slot int) {
	if slot < 0 || slot >= len(t.slots) {
		return
	}
	t.slots[slot] = nil
}

// Expired reports sessions that haven't sent a packet within
// LivenessTimeoutTicks of currentTick (spec §4.4, §5 cancellation model).
func (t *Table) Expired(currentTick uint32) []*Session {
	var out []*Session
	for _, s := range t.slots {
		if s != nil && currentTick-s.LastPacketSeenAtTick > LivenessTimeoutTicks {
			out = append(out, s)
		}
	}
	return out
}

func (t *Table) All() []*Session {
	var out []*Session
	for _, s := range t.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
