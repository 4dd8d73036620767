package physics

import (
	"math"

	"github.com/migomipo/hqmgo/internal/mathutil"
	"github.com/migomipo/hqmgo/internal/world"
)

const (
	stickSubsteps    = 10
	stickGain        = 0.0625
	stickDamping     = 0.5
	stickAccelCap    = 0.00889
)

// tickStick advances the stick's second-order follower toward the input
// target over stickSubsteps sub-steps per tick, to avoid tunnelling past a
// fast-moving puck (spec §4.2 step 11). A fraction of the stick's final
// velocity is recoiled back into the owning skater's body, matching the
// source's "stick exerts force back on the skater" behavior.
func tickStick(s *world.Skater, puck *world.Puck) {
	s.StickPlacementDelta[0] = approach(s.StickPlacementDelta[0], s.Input.StickAzimuth, 0)
	s.StickPlacementDelta[1] = approach(s.StickPlacementDelta[1], s.Input.StickInclination, 0)

	targetAzimuth := s.Input.StickAzimuth
	targetInclination := s.Input.StickInclination

	for step := 0; step < stickSubsteps; step++ {
		azErr := targetAzimuth - s.StickPlacement[0]
		inErr := targetInclination - s.StickPlacement[1]

		accelAz := mathutil.Clamp(azErr*stickGain-s.StickPlacementDelta[0]*stickDamping, -stickAccelCap, stickAccelCap)
		accelIn := mathutil.Clamp(inErr*stickGain-s.StickPlacementDelta[1]*stickDamping, -stickAccelCap, stickAccelCap)

		s.StickPlacementDelta[0] += accelAz
		s.StickPlacementDelta[1] += accelIn
		s.StickPlacement[0] += s.StickPlacementDelta[0]
		s.StickPlacement[1] += s.StickPlacementDelta[1]
	}

	roll := s.Input.StickAngle
	local := mathutil.Vec3{
		X: sin32(s.StickPlacement[0]) * 0.5,
		Y: sin32(s.StickPlacement[1]) * 0.5,
		Z: cos32(s.StickPlacement[0]) * 0.5,
	}
	newStickPos := s.Body.Pos.Add(s.Body.Rot.MulVec3(local))
	newVel := newStickPos.Sub(s.StickPos)

	s.StickVelocity = newVel
	s.StickPos = newStickPos
	s.StickRot = mathutil.RotateAroundAxis(mathutil.UnitZ(), roll*0.3).Mul(s.Body.Rot)

	if puck != nil {
		dist := s.StickPos.Sub(puck.Body.Pos).Length()
		if dist < puck.Radius+0.05 {
			recoil := newVel.Scale(-0.05)
			s.Body.LinearVelocity = s.Body.LinearVelocity.Add(recoil)
		}
	}
}

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }
func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }
