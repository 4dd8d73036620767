package rules

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

// PlayerRef is everything DoFaceoff needs to know about one connected
// session, decoupled from the session table's own representation so this
// package has no dependency on it (spec §4.5, get_faceoff_positions).
type PlayerRef struct {
	SessionIndex      int
	Name              string
	Hand              world.Hand
	InGame            bool
	Team              world.Team
	PreferredPosition string
}

// DoFaceoff clears the ice, places every in-game player at the next faceoff
// spot's preferred-position slots, drops a fresh puck, and resets the
// icing/offside state machines — hqm_rules.rs's do_faceoff.
func (e *Engine) DoFaceoff(g *world.Game, players []PlayerRef) {
	spot := g.World.Rink.Spot(g.NextFaceoff)
	puckPos := spot.Center.Add(mathutil.Vec3{Y: 1.5})

	g.World.ClearPucks()
	g.World.ClearSkaters()
	g.World.CreatePuckObject(puckPos, mathutil.Identity3())

	assignments := assignFaceoffPositions(players, world.AllowedPositions)

	for _, pr := range players {
		position, ok := assignments[pr.SessionIndex]
		if !ok {
			continue
		}
		placements := spot.RedPlayerPositions
		if position.team == world.TeamBlue {
			placements = spot.BluePlayerPositions
		}
		placed, ok := placements[position.name]
		if !ok {
			continue
		}
		slot := g.World.CreatePlayerObject(position.team, placed.Pos, placed.Rot, pr.Hand, pr.SessionIndex, position.name)
		g.AddGlobalMessage(world.Message{
			Kind:         world.MessagePlayerUpdate,
			PlayerName:   pr.Name,
			ObjectSlot:   slot,
			ObjectTeam:   position.team,
			SessionSlot:  pr.SessionIndex,
			PlayerInGame: true,
		})
	}

	g.Icing = world.IcingStatus{State: world.IcingOff}
	switch {
	case g.World.Rink.Red.OffensiveLine.PointPastMiddle(puckPos):
		g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: world.TeamRed}
	case g.World.Rink.Blue.OffensiveLine.PointPastMiddle(puckPos):
		g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: world.TeamBlue}
	default:
		g.Offside = world.OffsideStatus{State: world.OffsideNeutral}
	}
}

type teamPosition struct {
	team world.Team
	name string
}

// assignFaceoffPositions gives each in-game player its preferred faceoff
// position where possible, falls back to center, then to whatever's left,
// and finally forces a center so every team on the ice has one (spec §4.5
// step-by-step, get_faceoff_positions/setup_position).
func assignFaceoffPositions(players []PlayerRef, allowedPositions []string) map[int]teamPosition {
	var red, blue []PlayerRef
	for _, p := range players {
		if !p.InGame {
			continue
		}
		switch p.Team {
		case world.TeamRed:
			red = append(red, p)
		case world.TeamBlue:
			blue = append(blue, p)
		}
	}

	res := make(map[int]teamPosition)
	assignTeam(res, red, allowedPositions, world.TeamRed)
	assignTeam(res, blue, allowedPositions, world.TeamBlue)
	return res
}

func assignTeam(res map[int]teamPosition, players []PlayerRef, allowedPositions []string, team world.Team) {
	available := append([]string(nil), allowedPositions...)

	remove := func(name string) bool {
		for i, p := range available {
			if p == name {
				available = append(available[:i], available[i+1:]...)
				return true
			}
		}
		return false
	}

	for _, p := range players {
		if p.PreferredPosition == "" {
			continue
		}
		if remove(p.PreferredPosition) {
			res[p.SessionIndex] = teamPosition{team, p.PreferredPosition}
		}
	}

	const center = "C"
	for _, p := range players {
		if _, ok := res[p.SessionIndex]; ok {
			continue
		}
		var name string
		switch {
		case remove(center):
			name = center
		case len(available) > 0:
			name = available[0]
			available = available[1:]
		case p.PreferredPosition != "":
			name = p.PreferredPosition
		default:
			name = center
		}
		res[p.SessionIndex] = teamPosition{team, name}
	}

	stillHasCenter := false
	for _, p := range available {
		if p == center {
			stillHasCenter = true
			break
		}
	}
	if stillHasCenter && len(players) > 0 {
		res[players[0].SessionIndex] = teamPosition{team, center}
	}
}
