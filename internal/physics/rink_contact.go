package physics

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

// collideSphereWithRink resolves a sphere (pos, radius) against the five
// bounding planes and four corner quarter-cylinders, returning the
// corrected position and a velocity with the ice-contact friction/rejection
// rule applied (spec §4.2 step 8). It is a no-op if the sphere touches
// nothing.
func collideSphereWithRink(rink *world.Rink, pos mathutil.Vec3, vel mathutil.Vec3, radius, friction float32) (mathutil.Vec3, mathutil.Vec3) {
	for _, pl := range rink.Planes {
		dot := pos.Sub(pl.Point).Dot(pl.Normal)
		if pen := radius - dot; pen > 0 {
			pos = pos.Add(pl.Normal.Scale(pen))
			vel = mathutil.LimitFriction(vel, pl.Normal, friction)
			vel = mathutil.LimitRejection(vel, pl.Normal, 1.2)
		}
	}
	for _, c := range rink.Corners {
		// Only the quadrant described by Away is relevant: a point is
		// inside the corner's rounding region only if it is beyond the
		// corner's straight-wall intersection in both axes.
		rel := pos.Sub(c.Center)
		inQuadrant := rel.X*c.Away.X >= 0 && rel.Z*c.Away.Z >= 0
		if !inQuadrant {
			continue
		}
		planarDist := mathutil.Vec3{X: rel.X, Z: rel.Z}.Length()
		if pen := radius - (c.Radius - planarDist); planarDist > 0 && c.Radius-planarDist < radius {
			normal := mathutil.Vec3{X: rel.X, Z: rel.Z}.Normalize()
			if pen > 0 {
				pos = pos.Add(normal.Scale(pen))
				vel = mathutil.LimitFriction(vel, normal, friction)
				vel = mathutil.LimitRejection(vel, normal, 1.2)
			}
		}
	}
	return pos, vel
}

// pointInsideRink reports whether pos is within the rink footprint,
// ignoring corner rounding (a cheap bounding check used for puck-vertex
// contact before the more expensive per-plane/corner test).
func pointInsideRink(rink *world.Rink, pos mathutil.Vec3) bool {
	return pos.X >= 0 && pos.X <= rink.Width && pos.Z >= 0 && pos.Z <= rink.Length && pos.Y >= 0
}
