// Package world holds the authoritative game state: rink geometry, the
// fixed object-slot table, rigid bodies, skaters and the puck. It owns no
// goroutines and does no I/O — per spec §5 it is mutated exclusively by the
// single server tick loop.
package world

import "github.com/migomipo/hqmgo/internal/mathutil"

type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
)

func (t Team) Other() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

func (t Team) String() string {
	if t == TeamRed {
		return "red"
	}
	return "blue"
}

type Side uint8

const (
	SideLeft Side = iota
	SideRight
)

// Plane is an infinite half-space boundary: points satisfying
// dot(p-Point, Normal) < 0 are outside the rink.
type Plane struct {
	Point  mathutil.Vec3
	Normal mathutil.Vec3
}

// Corner is a quarter-cylinder rounding one corner of the rink.
type Corner struct {
	Center mathutil.Vec3
	Away   mathutil.Vec3 // direction from the cylinder axis toward the square rink corner it rounds
	Radius float32
}

// Line is a plane-like boundary used for blue-line/goal-line/mid-line
// crossing detection; Width lets sphere_reached_line-style tests add a
// tolerance band around the physical line thickness (IIHF rule 17iii/iv).
type Line struct {
	Point  mathutil.Vec3
	Normal mathutil.Vec3
	Width  float32
}

// PointPastMiddle reports whether pos has crossed to the far side of the
// line from the line's normal.
func (l Line) PointPastMiddle(pos mathutil.Vec3) bool {
	return pos.Sub(l.Point).Dot(l.Normal) < 0
}

// Net is the goal net: post capsules (as line segments with a radius) and
// the four back/side quads that describe its frame. The physics tick does
// not collide the puck or skaters against Posts or Surfaces.
type Net struct {
	Posts       []Capsule
	Surfaces    []Quad
	LeftPost    mathutil.Vec3
	RightPost   mathutil.Vec3
	Normal      mathutil.Vec3
}

type Capsule struct {
	A, B   mathutil.Vec3
	Radius float32
}

type Quad struct {
	A, B, C, D mathutil.Vec3
}

func newNet(pos mathutil.Vec3, rot mathutil.Mat3) Net {
	const (
		frontHalfWidth = 1.5
		backHalfWidth  = 1.25
		height         = 1.0
		upperDepth     = 0.75
		lowerDepth     = 1.0
	)
	at := func(x, y, z float32) mathutil.Vec3 {
		return pos.Add(rot.MulVec3(mathutil.Vec3{X: x, Y: y, Z: z}))
	}
	fuL := at(-frontHalfWidth, height, 0)
	fuR := at(frontHalfWidth, height, 0)
	flL := at(-frontHalfWidth, 0, 0)
	flR := at(frontHalfWidth, 0, 0)
	buL := at(-backHalfWidth, height, -upperDepth)
	buR := at(backHalfWidth, height, -upperDepth)
	blL := at(-backHalfWidth, 0, -lowerDepth)
	blR := at(backHalfWidth, 0, -lowerDepth)

	return Net{
		Posts: []Capsule{
			{flR, fuR, 0.1875},
			{flL, fuL, 0.1875},
			{fuR, fuL, 0.125},
			{flL, blL, 0.125},
			{flR, blR, 0.125},
			{fuL, buL, 0.125},
			{buR, fuR, 0.125},
			{blL, buL, 0.125},
			{blR, buR, 0.125},
			{blL, blR, 0.125},
			{buL, buR, 0.125},
		},
		Surfaces: []Quad{
			{buL, buR, blR, blL},
			{fuL, buL, blL, flL},
			{fuR, flR, blR, buR},
			{fuL, fuR, buR, buL},
		},
		LeftPost:  flL,
		RightPost: flR,
		Normal:    rot.MulVec3(mathutil.UnitZ()),
	}
}

// LinesAndNet groups one team's goal and the three lines (offensive blue
// line, defensive blue line, center line) relative to that team's attack
// direction.
type LinesAndNet struct {
	Net            Net
	MidLine        Line
	OffensiveLine  Line
	DefensiveLine  Line
}

// FaceoffSpot names a rink location plus the precomputed per-position
// placement (position + facing rotation) for both teams.
type FaceoffSpot struct {
	Center              mathutil.Vec3
	RedPlayerPositions  map[string]PlacedRotation
	BluePlayerPositions map[string]PlacedRotation
}

type PlacedRotation struct {
	Pos mathutil.Vec3
	Rot mathutil.Mat3
}

// FaceoffSpotKind distinguishes the three faceoff spot families: the
// center dot, a defensive-zone dot (near one team's own net), or a neutral
// ("offside") dot that straddles a blue line.
type FaceoffSpotKind uint8

const (
	FaceoffCenter FaceoffSpotKind = iota
	FaceoffDefensiveZone
	FaceoffNeutralZone
)

type FaceoffRef struct {
	Kind FaceoffSpotKind
	Team Team
	Side Side
}

// AllowedPositions is the fixed position roster a skater may be assigned
// at a faceoff, in the order preferred-position assignment tries to fill
// them (spec §4.5).
var AllowedPositions = []string{
	"C", "LW", "RW", "LD", "RD", "G", "LM", "RM",
	"LLM", "RRM", "LLD", "RRD", "CM", "CD", "LW2", "RW2", "LLW", "RRW",
}

// Rink is static geometry: constructed once and never mutated.
type Rink struct {
	Width, Length float32

	Planes  []Plane
	Corners []Corner

	Red  LinesAndNet
	Blue LinesAndNet

	CenterSpot FaceoffSpot
	// [0]=left, [1]=right, indexed by Side.
	RedZoneSpots, BlueZoneSpots       [2]FaceoffSpot
	RedNeutralSpots, BlueNeutralSpots [2]FaceoffSpot
}

// NewStandardRink builds the IIHF-sized rink used by every game mode
// (30m x 61m, 8.5m corner radius — hqm_game.rs's HQMGame::new).
func NewStandardRink() *Rink {
	return NewRink(30.0, 61.0, 8.5)
}

func NewRink(width, length, cornerRadius float32) *Rink {
	zero := mathutil.Vec3{}
	planes := []Plane{
		{zero, mathutil.UnitY()},
		{mathutil.Vec3{Z: length}, mathutil.UnitZ().Neg()},
		{zero, mathutil.UnitZ()},
		{mathutil.Vec3{X: width}, mathutil.UnitX().Neg()},
		{zero, mathutil.UnitX()},
	}
	r := cornerRadius
	wr := width - cornerRadius
	lr := length - cornerRadius
	corners := []Corner{
		{mathutil.Vec3{X: r, Z: r}, mathutil.Vec3{X: -1, Z: -1}, cornerRadius},
		{mathutil.Vec3{X: wr, Z: r}, mathutil.Vec3{X: 1, Z: -1}, cornerRadius},
		{mathutil.Vec3{X: wr, Z: lr}, mathutil.Vec3{X: 1, Z: 1}, cornerRadius},
		{mathutil.Vec3{X: r, Z: lr}, mathutil.Vec3{X: -1, Z: 1}, cornerRadius},
	}

	const (
		lineWidth               = 0.3  // IIHF rule 17iii/17iv
		goalLineDistance        = 4.0  // IIHF rule 17iv
		blueLineDistNeutralEdge = 22.86
	)
	blueLineDistMid := float32(blueLineDistNeutralEdge - lineWidth/2) // IIHF rule 17v/17vi
	distNeutralFaceoff := float32(blueLineDistNeutralEdge + 1.5)      // IIHF rule 18iv/18vii
	distZoneFaceoff := float32(goalLineDistance + 6.0)                // IIHF rule 18vi/18vii

	centerX := width / 2
	leftFaceoffX := centerX - 7.0
	rightFaceoffX := centerX + 7.0

	redZoneZ := length - distZoneFaceoff
	redZoneBlueZ := length - blueLineDistMid
	redNeutralZ := length - distNeutralFaceoff
	centerZ := length / 2
	blueNeutralZ := distNeutralFaceoff
	blueZoneBlueZ := blueLineDistMid
	blueZoneZ := distZoneFaceoff

	redNormal := mathutil.UnitZ()
	blueNormal := mathutil.UnitZ().Neg()

	redNet := newNet(mathutil.Vec3{X: centerX, Z: goalLineDistance}, mathutil.Identity3())
	blueRot := mathutil.Mat3FromColumns(mathutil.UnitX().Neg(), mathutil.UnitY(), mathutil.UnitZ().Neg())
	blueNet := newNet(mathutil.Vec3{X: centerX, Z: length - goalLineDistance}, blueRot)

	red := LinesAndNet{
		Net:           redNet,
		OffensiveLine: Line{mathutil.Vec3{Z: blueZoneBlueZ}, redNormal, lineWidth},
		DefensiveLine: Line{mathutil.Vec3{Z: redZoneBlueZ}, redNormal, lineWidth},
		MidLine:       Line{mathutil.Vec3{Z: centerZ}, redNormal, lineWidth},
	}
	blue := LinesAndNet{
		Net:           blueNet,
		OffensiveLine: Line{mathutil.Vec3{Z: redZoneBlueZ}, blueNormal, lineWidth},
		DefensiveLine: Line{mathutil.Vec3{Z: blueZoneBlueZ}, blueNormal, lineWidth},
		MidLine:       Line{mathutil.Vec3{Z: centerZ}, blueNormal, lineWidth},
	}

	redRot := mathutil.Identity3()
	blueFaceRot := mathutil.RotateAroundAxis(mathutil.UnitY(), mathPi)
	redGoalie := mathutil.Vec3{X: width / 2, Y: 1.5, Z: length - 5.0}
	blueGoalie := mathutil.Vec3{X: width / 2, Y: 1.5, Z: 5.0}

	makeSpot := func(center mathutil.Vec3) FaceoffSpot {
		redDefensive := center.Z > length-11.0
		blueDefensive := center.Z < 11.0
		redLeft := center.X < 9.0
		redRight := center.X > width-9.0
		blueLeft := redRight
		blueRight := redLeft

		return FaceoffSpot{
			Center:              center,
			RedPlayerPositions:  positionsFor(center, redRot, redGoalie, redDefensive, redLeft, redRight),
			BluePlayerPositions: positionsFor(center, blueFaceRot, blueGoalie, blueDefensive, blueLeft, blueRight),
		}
	}

	return &Rink{
		Width: width, Length: length,
		Planes: planes, Corners: corners,
		Red: red, Blue: blue,
		CenterSpot: makeSpot(mathutil.Vec3{X: centerX, Z: centerZ}),
		BlueZoneSpots: [2]FaceoffSpot{
			makeSpot(mathutil.Vec3{X: leftFaceoffX, Z: blueZoneZ}),
			makeSpot(mathutil.Vec3{X: rightFaceoffX, Z: blueZoneZ}),
		},
		BlueNeutralSpots: [2]FaceoffSpot{
			makeSpot(mathutil.Vec3{X: leftFaceoffX, Z: blueNeutralZ}),
			makeSpot(mathutil.Vec3{X: rightFaceoffX, Z: blueNeutralZ}),
		},
		RedNeutralSpots: [2]FaceoffSpot{
			makeSpot(mathutil.Vec3{X: leftFaceoffX, Z: redNeutralZ}),
			makeSpot(mathutil.Vec3{X: rightFaceoffX, Z: redNeutralZ}),
		},
		RedZoneSpots: [2]FaceoffSpot{
			makeSpot(mathutil.Vec3{X: leftFaceoffX, Z: redZoneZ}),
			makeSpot(mathutil.Vec3{X: rightFaceoffX, Z: redZoneZ}),
		},
	}
}

const mathPi = 3.14159265358979323846

func positionsFor(center mathutil.Vec3, rot mathutil.Mat3, goalie mathutil.Vec3, defensiveZone, closeLeft, closeRight bool) map[string]PlacedRotation {
	const (
		wingerZ = 4.0
		mZ      = 7.25
	)
	dZ := float32(10.0)
	if defensiveZone {
		dZ = 8.25
	}
	farLeftX, farLeftZ := float32(-10.0), float32(wingerZ)
	if closeLeft {
		farLeftX, farLeftZ = -6.5, 3.0
	}
	farRightX, farRightZ := float32(10.0), float32(wingerZ)
	if closeRight {
		farRightX, farRightZ = 6.5, 3.0
	}
	llmX := float32(-5.0)
	if closeLeft && defensiveZone {
		llmX = -3.0
	}
	rrmX := float32(5.0)
	if closeRight && defensiveZone {
		rrmX = 3.0
	}

	offsets := map[string]mathutil.Vec3{
		"C":    {X: 0, Y: 1.5, Z: 2.75},
		"LM":   {X: -2.0, Y: 1.5, Z: mZ},
		"RM":   {X: 2.0, Y: 1.5, Z: mZ},
		"LW":   {X: -5.0, Y: 1.5, Z: wingerZ},
		"RW":   {X: 5.0, Y: 1.5, Z: wingerZ},
		"LD":   {X: -2.0, Y: 1.5, Z: dZ},
		"RD":   {X: 2.0, Y: 1.5, Z: dZ},
		"LLM":  {X: llmX, Y: 1.5, Z: mZ},
		"RRM":  {X: rrmX, Y: 1.5, Z: mZ},
		"LLD":  {X: llmX, Y: 1.5, Z: dZ},
		"RRD":  {X: rrmX, Y: 1.5, Z: dZ},
		"CM":   {X: 0, Y: 1.5, Z: mZ},
		"CD":   {X: 0, Y: 1.5, Z: dZ},
		"LW2":  {X: -6.0, Y: 1.5, Z: wingerZ},
		"RW2":  {X: 6.0, Y: 1.5, Z: wingerZ},
		"LLW":  {X: farLeftX, Y: 1.5, Z: farLeftZ},
		"RRW":  {X: farRightX, Y: 1.5, Z: farRightZ},
	}

	out := make(map[string]PlacedRotation, len(offsets)+1)
	for name, off := range offsets {
		out[name] = PlacedRotation{Pos: center.Add(rot.MulVec3(off)), Rot: rot}
	}
	out["G"] = PlacedRotation{Pos: goalie, Rot: rot}
	return out
}

func sideOf(rink *Rink, pos mathutil.Vec3) Side {
	if pos.X <= rink.Width/2 {
		return SideLeft
	}
	return SideRight
}

// Spot resolves a FaceoffRef to the concrete spot data.
func (rk *Rink) Spot(ref FaceoffRef) *FaceoffSpot {
	idx := 0
	if ref.Side == SideRight {
		idx = 1
	}
	switch ref.Kind {
	case FaceoffCenter:
		return &rk.CenterSpot
	case FaceoffDefensiveZone:
		if ref.Team == TeamRed {
			return &rk.RedZoneSpots[idx]
		}
		return &rk.BlueZoneSpots[idx]
	default:
		if ref.Team == TeamRed {
			return &rk.RedNeutralSpots[idx]
		}
		return &rk.BlueNeutralSpots[idx]
	}
}

// OffsideFaceoffSpot mirrors get_offside_faceoff_spot: where the ensuing
// offside faceoff happens depends on which zone the puck's last legal
// touch occurred in relative to the offending team's attacking lines.
func (rk *Rink) OffsideFaceoffSpot(pos mathutil.Vec3, team Team) FaceoffRef {
	side := sideOf(rk, pos)
	ln := rk.Red
	if team == TeamBlue {
		ln = rk.Blue
	}
	switch {
	case ln.OffensiveLine.PointPastMiddle(pos):
		return FaceoffRef{Kind: FaceoffNeutralZone, Team: team.Other(), Side: side}
	case ln.MidLine.PointPastMiddle(pos):
		return FaceoffRef{Kind: FaceoffCenter}
	case ln.DefensiveLine.PointPastMiddle(pos):
		return FaceoffRef{Kind: FaceoffNeutralZone, Team: team, Side: side}
	default:
		return FaceoffRef{Kind: FaceoffDefensiveZone, Team: team, Side: side}
	}
}

// IcingFaceoffSpot mirrors get_icing_faceoff_spot: an icing call always
// sends play back to the offending team's own defensive-zone dot.
func (rk *Rink) IcingFaceoffSpot(pos mathutil.Vec3, team Team) FaceoffRef {
	return FaceoffRef{Kind: FaceoffDefensiveZone, Team: team, Side: sideOf(rk, pos)}
}
