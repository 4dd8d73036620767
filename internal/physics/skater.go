package physics

import (
	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

const yawStep = 0.0667 // radians/tick head/body yaw follows input by (spec §4.2 step 4)

func approach(current, target, step float32) float32 {
	if current < target {
		return mathutil.Clamp(current+step, current, target)
	}
	return mathutil.Clamp(current-step, target, current)
}

func tickSkater(s *world.Skater, cfg Config) {
	in := s.Input

	// Step 1: gravity + skate acceleration. The gravity term is added to
	// pos_delta (the per-tick displacement) only *after* pos has already
	// been advanced by the previous tick's pos_delta — see the two lines
	// after onIce below, preserved from the source (spec §9 open question 2).
	feetY := s.Body.Pos.Y - s.Body.Rot.MulVec3(mathutil.Vec3{Y: s.Height}).Y
	onIce := feetY < 0

	s.Body.Pos = s.Body.Pos.Add(s.Body.LinearVelocity)
	s.Body.LinearVelocity.Y += cfg.Gravity

	if onIce {
		accel := cfg.PlayerAcceleration
		maxSpeed := cfg.MaxPlayerSpeed
		if in.Keys.Has(world.KeyShift) {
			accel = cfg.PlayerShiftAcceleration
			maxSpeed = cfg.MaxPlayerShiftSpeed
		}
		forward := s.Body.Rot.MulVec3(mathutil.UnitZ())
		curFwdSpeed := s.Body.LinearVelocity.Dot(forward)
		desired := in.FwBw
		var limit float32
		if desired != 0 && sameSign(desired, curFwdSpeed) || curFwdSpeed == 0 {
			limit = accel
		} else {
			limit = cfg.PlayerDeceleration
		}
		s.Body.LinearVelocity = s.Body.LinearVelocity.Add(forward.Scale(desired * limit))
		s.Body.LinearVelocity = mathutil.LimitVectorLength(s.Body.LinearVelocity, maxSpeed)

		if in.Keys.Has(world.KeyJump) && !s.JumpedLastFrame {
			s.Body.LinearVelocity.Y += 0.025
		}
	}
	s.JumpedLastFrame = in.Keys.Has(world.KeyJump)

	// Step 2-3: turn torque, then rotate the body.
	turn := mathutil.Clamp(in.Turn, -1, 1)
	turning := cfg.PlayerTurning
	if in.Keys.Has(world.KeyShift) {
		turning = cfg.PlayerShiftTurning
	}
	s.Body.AngularVelocity.Y += turn * turning
	angle := s.Body.AngularVelocity.Length()
	if angle > 1e-9 {
		axis := s.Body.AngularVelocity.Normalize()
		s.Body.Rot = mathutil.RotateAroundAxis(axis, angle).Mul(s.Body.Rot)
	}

	// Step 4: smooth head/body yaw.
	s.HeadYaw = approach(s.HeadYaw, in.HeadRot, yawStep)
	s.BodyYaw = approach(s.BodyYaw, in.BodyRot, yawStep)

	// Step 5: height.
	if in.Keys.Has(world.KeyCrouch) {
		s.Height = mathutil.Clamp(s.Height-0.015625, world.SkaterMinHeight, world.SkaterMaxHeight)
	} else {
		s.Height = mathutil.Clamp(s.Height+0.125, world.SkaterMinHeight, world.SkaterMaxHeight)
	}

	// Step 6: ice contact response.
	feetY = s.Body.Pos.Y - s.Body.Rot.MulVec3(mathutil.Vec3{Y: s.Height}).Y
	if feetY < 0 {
		penetration := -feetY
		s.Body.Pos.Y += penetration
		s.Body.LinearVelocity = mathutil.LimitRejection(s.Body.LinearVelocity, mathutil.UnitY(), 1.2)
		if s.Body.LinearVelocity.Y < 0 {
			s.Body.LinearVelocity.Y = 0
		}
	}

	// Step 7: leaning.
	if onIce {
		s.Body.AngularVelocity = s.Body.AngularVelocity.Scale(0.975)
		forward := s.Body.Rot.MulVec3(mathutil.UnitZ())
		speed := s.Body.LinearVelocity.Dot(forward)
		leanTorque := turn * speed
		leanAxis := s.Body.Rot.MulVec3(mathutil.UnitZ())
		leanAccel := mathutil.Clamp(leanTorque, -0.000347, 0.000347)
		s.Body.AngularVelocity = s.Body.AngularVelocity.Add(leanAxis.Scale(leanAccel))
	}

	// Step 8: collision balls follow the body for now; rink and pairwise
	// contact are resolved afterwards in Tick (tickSkaterRinkCollision,
	// tickSkaterPairCollision) once every skater's body has moved this tick.
	for i, o := range s.CollisionBalls {
		s.CollisionBalls[i].Pos = s.Body.Pos.Add(s.Body.Rot.MulVec3(o.Offset))
		s.CollisionBalls[i].Velocity = s.Body.LinearVelocity
	}
}

func sameSign(a, b float32) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// tickSkaterRinkCollision resolves a skater's six collision balls against
// the rink boundary, feeding any correction back into the body position so
// the skater doesn't skate through the boards (spec §4.2 step 8).
func tickSkaterRinkCollision(rink *world.Rink, s *world.Skater) {
	var totalCorrection mathutil.Vec3
	for i, b := range s.CollisionBalls {
		newPos, newVel := collideSphereWithRink(rink, b.Pos, b.Velocity, b.Radius, 0.1)
		correction := newPos.Sub(b.Pos)
		totalCorrection = totalCorrection.Add(correction)
		s.CollisionBalls[i].Pos = newPos
		s.CollisionBalls[i].Velocity = newVel
	}
	if totalCorrection.LengthSq() > 0 {
		avg := totalCorrection.Scale(1.0 / 6.0)
		s.Body.Pos = s.Body.Pos.Add(avg)
		s.Body.LinearVelocity = mathutil.LimitRejection(s.Body.LinearVelocity, avg.Normalize(), 1.2)
	}
}

// tickSkaterPairCollision resolves a spring-like separation between two
// skaters' ball sets, weighted by inverse mass (both skaters have equal
// mass in this model, so the split is even).
func tickSkaterPairCollision(a, b *world.Skater) {
	for i := range a.CollisionBalls {
		for j := range b.CollisionBalls {
			ba := &a.CollisionBalls[i]
			bb := &b.CollisionBalls[j]
			delta := ba.Pos.Sub(bb.Pos)
			dist := delta.Length()
			minDist := ba.Radius + bb.Radius
			if dist > 0 && dist < minDist {
				normal := delta.Scale(1 / dist)
				overlap := minDist - dist
				ba.Pos = ba.Pos.Add(normal.Scale(overlap / 2))
				bb.Pos = bb.Pos.Sub(normal.Scale(overlap / 2))
				relVel := ba.Velocity.Sub(bb.Velocity).Dot(normal)
				if relVel < 0 {
					impulse := normal.Scale(-relVel / 2)
					ba.Velocity = ba.Velocity.Add(impulse)
					bb.Velocity = bb.Velocity.Sub(impulse)
				}
			}
		}
	}
}
