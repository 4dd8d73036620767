package ban

import (
	"net"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// cacheLifetime matches ban.rs's TimedCache::with_lifespan(10): a Pending
// entry (or a resolved one) expires after 10s and the next check re-issues
// the request (spec §5 cancellation/timeout model).
const cacheLifetime = 10 * time.Second

// Requester performs the actual remote lookup/mutation; External wraps it
// with the cache and Pending-while-in-flight behavior ban.rs's
// ExternalBanCheck implements generically over its own trait.
type Requester interface {
	IsBanned(ip net.IP) bool
	RequestBan(ip net.IP)
	RequestClearAll()
}

// External is a ban list backed by a remote service, answering
// provisionally while a lookup is outstanding (spec §4.4, §6.3 Pending).
type External struct {
	cache *gocache.Cache
	req   Requester
}

func NewExternal(req Requester) *External {
	return &External{
		cache: gocache.New(cacheLifetime, cacheLifetime),
		req:   req,
	}
}

func (e *External) Check(ip net.IP) Response {
	key := ip.String()
	if v, ok := e.cache.Get(key); ok {
		return v.(Response)
	}
	e.cache.SetDefault(key, Pending)

	go func() {
		banned := e.req.IsBanned(ip)
		resp := Allowed
		if banned {
			resp = Banned
		}
		e.cache.SetDefault(key, resp)
	}()

	return Pending
}

func (e *External) Ban(ip net.IP) {
	e.cache.SetDefault(ip.String(), Banned)
	go e.req.RequestBan(ip)
}

func (e *External) ClearAll() {
	e.cache.Flush()
	go e.req.RequestClearAll()
}
