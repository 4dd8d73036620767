// Package rules turns per-tick physics events into score changes, stoppages
// and faceoffs: icing, offside, goals, period/intermission bookkeeping and
// faceoff-position assignment (spec §4.5), grounded on hqm_rules.rs's
// impl HQMServer block.
package rules

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/physics"
	"github.com/migomipo/hqmgo/internal/world"
)

type IcingRule uint8

const (
	IcingRuleOff IcingRule = iota
	IcingRuleTouch
	IcingRuleNoTouch
)

type OffsideRule uint8

const (
	OffsideRuleOff OffsideRule = iota
	OffsideRuleDelayed
	OffsideRuleImmediate
)

// Config mirrors HQMServerConfiguration's rule-relevant fields.
type Config struct {
	Icing             IcingRule
	Offside           OffsideRule
	TimeBreakTicks    uint32
	TimePeriodTicks   uint32
	TimeIntermission  uint32
	Mercy             uint32
	FirstTo           uint32
}

func DefaultConfig() Config {
	return Config{
		Icing:            IcingRuleTouch,
		Offside:          OffsideRuleDelayed,
		TimeBreakTicks:   500,
		TimePeriodTicks:  12000,
		TimeIntermission: 1500,
	}
}

// Engine owns no state of its own beyond Config: it mutates the Game it's
// given (spec §5 — one goroutine, no locks needed here).
type Engine struct {
	Cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{Cfg: cfg}
}

func (e *Engine) callGoal(g *world.Game, team world.Team, puckSlot int) {
	var scoring, opponent *uint32
	if team == world.TeamRed {
		g.RedScore++
		scoring, opponent = &g.RedScore, &g.BlueScore
	} else {
		g.BlueScore++
		scoring, opponent = &g.BlueScore, &g.RedScore
	}

	g.BreakTicks = e.Cfg.TimeBreakTicks
	g.IsIntermissionGoal = true
	g.NextFaceoff = world.FaceoffRef{Kind: world.FaceoffCenter}

	gameOver := false
	switch {
	case g.Period > 3 && g.RedScore != g.BlueScore:
		gameOver = true
	case e.Cfg.Mercy > 0 && *scoring-*opponent >= e.Cfg.Mercy:
		gameOver = true
	case e.Cfg.FirstTo > 0 && *scoring >= e.Cfg.FirstTo:
		gameOver = true
	}
	if gameOver {
		g.BreakTicks = e.Cfg.TimeIntermission
		g.GameOver = true
	}

	scorer, assist := -1, -1
	if puckSlot >= 0 {
		if slot := &g.World.Slots[puckSlot]; slot.Kind == world.SlotPuck {
			for _, touch := range slot.Puck.Touches {
				if touch.Team != team {
					continue
				}
				if scorer < 0 {
					scorer = touch.SessionIndex
				} else if assist < 0 && touch.SessionIndex != scorer {
					assist = touch.SessionIndex
					break
				}
			}
		}
	}
	g.AddGlobalMessage(world.Message{Kind: world.MessageGoal, GoalTeam: team, Scorer: scorer, Assist: assist})
}

func (e *Engine) callOffside(g *world.Game, team world.Team, passOrigin mathutil.Vec3) {
	g.NextFaceoff = g.World.Rink.OffsideFaceoffSpot(passOrigin, team)
	g.BreakTicks = e.Cfg.TimeBreakTicks
	g.Offside = world.OffsideStatus{State: world.OffsideCalled, Team: team}
	g.AddChatMessage(-1, "Offside")
}

func (e *Engine) callIcing(g *world.Game, team world.Team, passOrigin mathutil.Vec3) {
	g.NextFaceoff = g.World.Rink.IcingFaceoffSpot(passOrigin, team)
	g.BreakTicks = e.Cfg.TimeBreakTicks
	g.Icing = world.IcingStatus{State: world.IcingCalled, Team: team}
	g.AddChatMessage(-1, "Icing")
}

func hasPlayersInOffensiveZone(w *world.World, team world.Team) bool {
	line := w.Rink.Red.OffensiveLine
	if team == world.TeamBlue {
		line = w.Rink.Blue.OffensiveLine
	}
	for _, s := range w.Skaters() {
		if s.Team != team {
			continue
		}
		feet := s.Body.Pos.Sub(s.Body.Rot.MulVec3(mathutil.Vec3{Y: s.Height}))
		dot := feet.Sub(line.Point).Dot(line.Normal)
		leadingEdge := -(line.Width / 2.0)
		if dot < leadingEdge {
			return true
		}
	}
	return false
}

// HandleEvents consumes one tick's worth of physics events and applies rule
// transitions, exactly mirroring handle_events's early-out and per-event
// match (spec §4.5).
func (e *Engine) HandleEvents(g *world.Game, events []physics.Event) {
	if g.Offside.State == world.OffsideCalled ||
		g.Icing.State == world.IcingCalled ||
		g.Period == 0 ||
		g.TimeRemainingTicks == 0 ||
		g.BreakTicks > 0 ||
		g.Paused {
		return
	}

	for _, ev := range events {
		switch ev.Kind {
		case physics.EventPuckEnteredNet:
			switch {
			case g.Offside.State == world.OffsideWarning && g.Offside.Team == ev.Team:
				e.callOffside(g, ev.Team, g.Offside.EntryPos)
			case g.Offside.State == world.OffsideCalled:
				// no-op: offside already called, goal doesn't count
			default:
				e.callGoal(g, ev.Team, ev.PuckSlot)
			}

		case physics.EventPuckTouch:
			e.handlePuckTouch(g, ev)

		case physics.EventPuckEnteredOtherHalf:
			if slot := puckSlot(g.World, ev.PuckSlot); slot != nil && len(slot.Touches) > 0 {
				front := slot.Touches[0]
				if ev.Team == front.Team && g.Icing.State == world.IcingOff {
					g.Icing = world.IcingStatus{State: world.IcingNotTouched, Team: ev.Team, Pos: front.PosAtTouch}
				}
			}

		case physics.EventPuckPassedGoalLine:
			if g.Icing.State == world.IcingNotTouched && ev.Team == g.Icing.Team {
				switch e.Cfg.Icing {
				case IcingRuleTouch:
					g.Icing.State = world.IcingWarning
					g.AddChatMessage(-1, "Icing warning")
				case IcingRuleNoTouch:
					e.callIcing(g, ev.Team, g.Icing.Pos)
				case IcingRuleOff:
				}
			}

		case physics.EventPuckEnteredOffensiveZone:
			if g.Offside.State == world.OffsideNeutral {
				if slot := puckSlot(g.World, ev.PuckSlot); slot != nil && len(slot.Touches) > 0 {
					front := slot.Touches[0]
					if ev.Team == front.Team && hasPlayersInOffensiveZone(g.World, ev.Team) {
						switch e.Cfg.Offside {
						case OffsideRuleDelayed:
							g.Offside = world.OffsideStatus{State: world.OffsideWarning, Team: ev.Team, EntryPos: front.PosAtTouch, EntrySession: front.SessionIndex}
							g.AddChatMessage(-1, "Offside warning")
						case OffsideRuleImmediate:
							e.callOffside(g, ev.Team, front.PosAtTouch)
						case OffsideRuleOff:
							g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: ev.Team}
						}
					} else {
						g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: ev.Team}
					}
				} else {
					g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: ev.Team}
				}
			}

		case physics.EventPuckLeftOffensiveZone:
			if g.Offside.State == world.OffsideWarning {
				g.AddChatMessage(-1, "Offside waved off")
			}
			g.Offside = world.OffsideStatus{State: world.OffsideNeutral}
		}
	}

	if g.Offside.State == world.OffsideWarning && !hasPlayersInOffensiveZone(g.World, g.Offside.Team) {
		team := g.Offside.Team
		g.Offside = world.OffsideStatus{State: world.OffsideInOffensiveZone, Team: team}
		g.AddChatMessage(-1, "Offside waved off")
	}
}

func (e *Engine) handlePuckTouch(g *world.Game, ev physics.Event) {
	slot := puckSlot(g.World, ev.PuckSlot)
	if slot == nil {
		return
	}
	skaterIdx := ev.SkaterSlot
	skaterSlot := &g.World.Slots[skaterIdx]
	if skaterSlot.Kind != world.SlotSkater {
		return
	}
	skater := skaterSlot.Skater
	touchingTeam := skater.Team
	faceoffPosition := skater.FaceoffPosition
	otherTeam := touchingTeam.Other()

	slot.AddTouch(skater.OwningSession, touchingTeam, g.GameStep, skater.StickPos, skater.StickVelocity.Length())

	if g.Offside.State == world.OffsideWarning && g.Offside.Team == touchingTeam {
		passOrigin := g.Offside.EntryPos
		if skater.OwningSession == g.Offside.EntrySession {
			passOrigin = slot.Body.Pos
		}
		e.callOffside(g, touchingTeam, passOrigin)
		return
	}
	switch {
	case g.Icing.State == world.IcingWarning:
		if touchingTeam != g.Icing.Team {
			if faceoffPosition == "G" {
				g.Icing = world.IcingStatus{State: world.IcingOff}
				g.AddChatMessage(-1, "Icing waved off")
			} else {
				e.callIcing(g, otherTeam, g.Icing.Pos)
			}
		} else {
			g.Icing = world.IcingStatus{State: world.IcingOff}
			g.AddChatMessage(-1, "Icing waved off")
		}
	case g.Icing.State == world.IcingNotTouched:
		g.Icing = world.IcingStatus{State: world.IcingOff}
	}
}

func puckSlot(w *world.World, slotIndex int) *world.Puck {
	if slotIndex < 0 || slotIndex >= len(w.Slots) {
		return nil
	}
	if w.Slots[slotIndex].Kind != world.SlotPuck {
		return nil
	}
	return w.Slots[slotIndex].Puck
}

// ClockResult tells the caller (the server loop / active game mode) what
// happened this tick so it can react outside the rules package: starting a
// new game is a mode-level decision, not a rules one.
type ClockResult struct {
	FaceoffDue bool
	NewGameDue bool
}

// UpdateClock advances the period/break clocks by one tick (spec §4.5,
// update_clock). It does not itself run the faceoff or restart the game;
// the caller does that based on the returned ClockResult.
func (e *Engine) UpdateClock(g *world.Game) ClockResult {
	var res ClockResult
	if g.Paused {
		return res
	}

	if g.Period == 0 && g.TimeRemainingTicks > 2000 {
		hasRed, hasBlue := false, false
		for _, s := range g.World.Skaters() {
			if s.Team == world.TeamRed {
				hasRed = true
			} else {
				hasBlue = true
			}
			if hasRed && hasBlue {
				g.TimeRemainingTicks = 2000
				break
			}
		}
	}

	if g.BreakTicks > 0 {
		g.BreakTicks--
		if g.BreakTicks == 0 {
			g.IsIntermissionGoal = false
			if g.GameOver {
				res.NewGameDue = true
			} else {
				if g.TimeRemainingTicks == 0 {
					g.TimeRemainingTicks = e.Cfg.TimePeriodTicks
				}
				res.FaceoffDue = true
			}
		}
	} else if g.TimeRemainingTicks > 0 {
		g.TimeRemainingTicks--
		if g.TimeRemainingTicks == 0 {
			g.Period++
			if g.Period > 3 && g.RedScore != g.BlueScore {
				g.BreakTicks = e.Cfg.TimeIntermission
				g.GameOver = true
			} else {
				g.BreakTicks = e.Cfg.TimeIntermission
				g.NextFaceoff = world.FaceoffRef{Kind: world.FaceoffCenter}
			}
		}
	}
	return res
}
