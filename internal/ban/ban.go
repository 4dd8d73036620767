// Package ban implements the pluggable "is this address banned" contract
// (spec §6.3), grounded on ban.rs's BanCheck trait. The core only ever sees
// the Checker interface; which concrete implementation backs it is a
// startup-time choice outside the tick loop's concern (spec §9 trait-object
// plug-in shape).
package ban

import "net"

// Response mirrors BanCheckResponse: Pending means "ask again shortly, do
// not admit yet" (spec §6.3).
type Response uint8

const (
	Allowed Response = iota
	Banned
	Pending
)

// Checker is consulted on every session admission and mutated by admin
// commands (spec §4.4, §5 "Shared mutable resources").
type Checker interface {
	Check(ip net.IP) Response
	Ban(ip net.IP)
	ClearAll()
}
