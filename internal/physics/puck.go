package physics

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

func tickPuck(p *world.Puck, cfg Config) {
	p.Body.Pos = p.Body.Pos.Add(p.Body.LinearVelocity)
	p.Body.LinearVelocity.Y += cfg.Gravity

	onIce := p.Body.Pos.Y-p.HalfHeight < 0
	if onIce {
		p.Body.LinearVelocity = mathutil.LimitFriction(p.Body.LinearVelocity, mathutil.UnitY(), cfg.PuckRinkFriction)
	}

	angle := p.Body.AngularVelocity.Length()
	if angle > 1e-9 {
		axis := p.Body.AngularVelocity.Normalize()
		p.Body.Rot = mathutil.RotateAroundAxis(axis, angle).Mul(p.Body.Rot)
	}
}

// tickPuckRinkCollision approximates the puck as its 48-vertex cylinder and
// resolves each vertex against the rink boundary (spec §4.2 step 9). The
// net frame is not collided against here or anywhere else; net entry and
// net touches are only detected, by netEvents in tick.go.
func tickPuckRinkCollision(rink *world.Rink, p *world.Puck) {
	verts := p.PuckVertices()
	var correction mathutil.Vec3
	hits := 0
	for _, v := range verts {
		newPos, _ := collideSphereWithRink(rink, v, p.Body.LinearVelocity, 0, 0.05)
		if d := newPos.Sub(v); d.LengthSq() > 0 {
			correction = correction.Add(d)
			hits++
		}
	}
	if hits > 0 {
		avg := correction.Scale(1.0 / float32(hits))
		p.Body.Pos = p.Body.Pos.Add(avg)
		p.Body.LinearVelocity = mathutil.LimitRejection(p.Body.LinearVelocity, avg.Normalize(), 1.2)
	}
}

// netContainsPuck reports whether the puck center has crossed the goal
// line between the posts, below the crossbar, moving inward — the
// PuckEnteredNet condition (spec §4.2 step 10).
func netContainsPuck(net world.Net, pos mathutil.Vec3, vel mathutil.Vec3) bool {
	if vel.Dot(net.Normal) <= 0 {
		return false
	}
	// Between the posts laterally, and below the crossbar (1.0m, see
	// newNet's height constant) vertically.
	width := net.RightPost.Sub(net.LeftPost)
	widthLen := width.Length()
	if widthLen == 0 {
		return false
	}
	axis := width.Scale(1 / widthLen)
	rel := pos.Sub(net.LeftPost)
	lateral := rel.Dot(axis)
	if lateral < 0 || lateral > widthLen {
		return false
	}
	return pos.Y >= 0 && pos.Y <= 1.0
}

// netTouchesPuck reports whether the puck is brushing the net's frame (post
// or crossbar) without satisfying netContainsPuck's stricter entry condition
// — the PuckTouchedNet case a shootout attempt uses to tell "still live" from
// "deflected off the iron" (spec §4.2 step 10). It relaxes netContainsPuck's
// lateral bounds and drops the inward-velocity requirement, since a puck can
// rattle the post while moving sideways or even drifting back out.
func netTouchesPuck(net world.Net, pos mathutil.Vec3) bool {
	width := net.RightPost.Sub(net.LeftPost)
	widthLen := width.Length()
	if widthLen == 0 {
		return false
	}
	axis := width.Scale(1 / widthLen)
	rel := pos.Sub(net.LeftPost)
	lateral := rel.Dot(axis)
	const postSlack = 0.3
	if lateral < -postSlack || lateral > widthLen+postSlack {
		return false
	}
	return pos.Y >= -postSlack && pos.Y <= 1.0+postSlack
}
