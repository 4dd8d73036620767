package physics

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

// touchDistance is how close a skater's stick must be to the puck center
// to register a touch.
const touchDistance = world.PuckRadius + 0.1

// Tick advances g by exactly one 1/100s step and returns the simulation
// events produced, in emission order (spec §4.2). The caller (the rules
// layer) is responsible for clearing its own event buffer each tick (spec
// §9 "per-tick events vector").
func Tick(g *world.Game, cfg Config) []Event {
	var events []Event

	skaters := g.World.Skaters()
	pucks := g.World.Pucks()

	for _, s := range skaters {
		tickSkater(s, cfg)
	}
	for i := 0; i < len(skaters); i++ {
		tickSkaterRinkCollision(g.World.Rink, skaters[i])
		for j := i + 1; j < len(skaters); j++ {
			tickSkaterPairCollision(skaters[i], skaters[j])
		}
	}
	for _, p := range pucks {
		prevPos := p.Body.Pos
		tickPuck(p, cfg)
		tickPuckRinkCollision(g.World.Rink, p)
		events = append(events, zoneEvents(g, p, prevPos)...)
		events = append(events, netEvents(g, p)...)
	}

	for _, s := range skaters {
		var puck *world.Puck
		if len(pucks) > 0 {
			puck = pucks[0]
		}
		tickStick(s, puck)
	}

	for _, p := range pucks {
		slotIndex := slotIndexOf(g.World, p)
		for _, s := range skaters {
			if s.StickPos.Sub(p.Body.Pos).Length() < touchDistance {
				events = append(events, Event{Kind: EventPuckTouch, SkaterSlot: s.Index, PuckSlot: slotIndex, Team: s.Team})
			}
		}
	}

	g.GameStep++
	return events
}

func slotIndexOf(w *world.World, p *world.Puck) int {
	for i := range w.Slots {
		if w.Slots[i].Kind == world.SlotPuck && w.Slots[i].Puck == p {
			return i
		}
	}
	return -1
}

// zoneEvents detects offensive-zone entry/exit for both teams by comparing
// the puck's position before and after this tick against each team's
// offensive blue line (spec §4.2 step 12, "zone crossings by sign change").
func zoneEvents(g *world.Game, p *world.Puck, prevPos mathutil.Vec3) []Event {
	var out []Event
	rink := g.World.Rink
	check := func(team world.Team, line world.Line) {
		was := line.PointPastMiddle(prevPos)
		isNow := line.PointPastMiddle(p.Body.Pos)
		if was == isNow {
			return
		}
		if isNow {
			out = append(out, Event{Kind: EventPuckEnteredOffensiveZone, Team: team})
		} else {
			out = append(out, Event{Kind: EventPuckLeftOffensiveZone, Team: team})
		}
	}
	check(world.TeamRed, rink.Red.OffensiveLine)
	check(world.TeamBlue, rink.Blue.OffensiveLine)

	midWas := rink.Red.MidLine.PointPastMiddle(prevPos)
	midIsNow := rink.Red.MidLine.PointPastMiddle(p.Body.Pos)
	if midWas != midIsNow {
		var team world.Team
		if midIsNow {
			team = world.TeamRed
		} else {
			team = world.TeamBlue
		}
		out = append(out, Event{Kind: EventPuckEnteredOtherHalf, Team: team})
	}

	goalLineCheck := func(team world.Team, net world.Net) {
		line := world.Line{Point: net.LeftPost, Normal: net.Normal}
		was := line.PointPastMiddle(prevPos)
		isNow := line.PointPastMiddle(p.Body.Pos)
		if was != isNow && isNow {
			out = append(out, Event{Kind: EventPuckPassedGoalLine, Team: team})
		}
	}
	goalLineCheck(world.TeamRed, rink.Blue.Net)
	goalLineCheck(world.TeamBlue, rink.Red.Net)

	return out
}

// netEvents detects goal-net entry (spec §4.2 step 10). The Team field on
// the resulting event is always the team credited with the goal — i.e. the
// team whose *opponent's* net the puck entered — resolving any ambiguity
// between "whose net" and "who scores".
func netEvents(g *world.Game, p *world.Puck) []Event {
	var out []Event
	rink := g.World.Rink
	if netContainsPuck(rink.Blue.Net, p.Body.Pos, p.Body.LinearVelocity) {
		out = append(out, Event{Kind: EventPuckEnteredNet, Team: world.TeamRed})
	} else if netTouchesPuck(rink.Blue.Net, p.Body.Pos) {
		out = append(out, Event{Kind: EventPuckTouchedNet, Team: world.TeamRed})
	}
	if netContainsPuck(rink.Red.Net, p.Body.Pos, p.Body.LinearVelocity) {
		out = append(out, Event{Kind: EventPuckEnteredNet, Team: world.TeamBlue})
	} else if netTouchesPuck(rink.Red.Net, p.Body.Pos) {
		out = append(out, Event{Kind: EventPuckTouchedNet, Team: world.TeamBlue})
	}
	return out
}
