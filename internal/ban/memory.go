package ban

import (
	"net"
	"sync"
)

// InMemory is a ban list that lives only for the process lifetime —
// ban.rs's InMemoryBanCheck. Guarded by a plain mutex held only across the
// O(|bans|) set operations below, never across I/O (spec §5).
type InMemory struct {
	mu   sync.Mutex
	bans map[string]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{bans: make(map[string]struct{})}
}

func (b *InMemory) Check(ip net.IP) Response {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bans[ip.String()]; ok {
		return Banned
	}
	return Allowed
}

func (b *InMemory) Ban(ip net.IP) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bans[ip.String()] = struct{}{}
}

func (b *InMemory) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bans = make(map[string]struct{})
}
