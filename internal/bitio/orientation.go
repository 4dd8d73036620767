package bitio

import "github.com/migomipo/hqmgo/internal/mathutil"

// octahedralBasis is the 8-triple table indexed by the sign pattern of a
// target column vector's (x, z, y) components. Grounded on
// convert_rot_column_to/from_network in the source (hqm_parse.rs).
var octahedralBasis = [8][3]mathutil.Vec3{
	{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}},
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: -1, Y: 0, Z: 0}},
	{{X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: -1}, {X: 1, Y: 0, Z: 0}},
	{{X: 0, Y: 1, Z: 0}, {X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}},
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}},
	{{X: -1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: -1, Z: 0}},
	{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: -1}, {X: 0, Y: -1, Z: 0}},
	{{X: 0, Y: 0, Z: -1}, {X: -1, Y: 0, Z: 0}, {X: 0, Y: -1, Z: 0}},
}

// EncodeRotColumn compresses one orthonormal column vector to b bits by
// walking the octahedral subdivision toward v, refining two bits at a time
// starting at bit position 3. The decoder (DecodeRotColumn) must be an exact
// inverse for any v this function can emit.
func EncodeRotColumn(b uint8, v mathutil.Vec3) uint32 {
	var res uint32
	if v.X < 0 {
		res |= 1
	}
	if v.Z < 0 {
		res |= 2
	}
	if v.Y < 0 {
		res |= 4
	}
	t := octahedralBasis[res]
	temp1, temp2, temp3 := t[0], t[1], t[2]

	for i := uint8(3); i < b; i += 2 {
		temp4 := temp1.Add(temp2).Normalize()
		temp5 := temp2.Add(temp3).Normalize()
		temp6 := temp1.Add(temp3).Normalize()

		a1 := temp4.Sub(temp6).Cross(v.Sub(temp6))
		if a1.Dot(v) < 0 {
			a2 := temp5.Sub(temp4).Cross(v.Sub(temp4))
			if a2.Dot(v) < 0 {
				a3 := temp6.Sub(temp5).Cross(v.Sub(temp5))
				if a3.Dot(v) < 0 {
					res |= 3 << i
					temp1, temp2, temp3 = temp4, temp5, temp6
				} else {
					res |= 2 << i
					temp1, temp2 = temp6, temp5
				}
			} else {
				res |= 1 << i
				temp1, temp3 = temp4, temp5
			}
		} else {
			temp2, temp3 = temp4, temp6
		}
	}
	return res
}

// DecodeRotColumn is the inverse of EncodeRotColumn. This intentionally uses
// (temp1+temp3) for the third midpoint rather than the source's
// (temp1+temp2) — see DESIGN.md open question #1: the source's decoder
// duplicates temp1's partner instead of computing the third edge midpoint,
// which breaks round-tripping against its own encoder. The encoder already
// computes the midpoint correctly as temp6=(temp1+temp3); the decoder here
// mirrors that.
func DecodeRotColumn(b uint8, v uint32) mathutil.Vec3 {
	start := v & 7
	t := octahedralBasis[start]
	temp1, temp2, temp3 := t[0], t[1], t[2]

	pos := uint8(3)
	for pos < b {
		step := (v >> pos) & 3
		c1 := temp1.Add(temp2).Normalize()
		c2 := temp2.Add(temp3).Normalize()
		c3 := temp1.Add(temp3).Normalize()
		switch step {
		case 0:
			temp2, temp3 = c1, c3
		case 1:
			temp1, temp3 = c1, c2
		case 2:
			temp1, temp2 = c3, c2
		case 3:
			temp1, temp2, temp3 = c1, c2, c3
		}
		pos += 2
	}
	return temp1.Add(temp2).Add(temp3).Normalize()
}

// EncodeMatrix compresses columns 1 and 2 of a rotation matrix (column 0 is
// reconstructed on decode as their cross product).
func EncodeMatrix(b uint8, m mathutil.Mat3) (uint32, uint32) {
	return EncodeRotColumn(b, m.Col[1]), EncodeRotColumn(b, m.Col[2])
}

// DecodeMatrix is the inverse of EncodeMatrix.
func DecodeMatrix(b uint8, v1, v2 uint32) mathutil.Mat3 {
	c1 := DecodeRotColumn(b, v1)
	c2 := DecodeRotColumn(b, v2)
	c0 := c1.Cross(c2)
	return mathutil.Mat3FromColumns(c0, c1, c2)
}

// Quantization scale/bias constants (spec §4.1).
const (
	PosBits        = 17
	StickOffsetBits = 13
	YawBits        = 16
	SkaterOrientationBits = 25
	BodyOrientationBits   = 31

	posScale    = 1024.0
	stickBias   = 4.0
	stickScale  = 1024.0
	yawBias     = 2.0
	yawScale    = 8192.0
)

func clampU32(v int64, bits uint8) uint32 {
	max := int64(1)<<bits - 1
	if v < 0 {
		return 0
	}
	if v > max {
		return uint32(max)
	}
	return uint32(v)
}

// QuantizePos maps a world coordinate (meters) to the 17-bit position field.
func QuantizePos(v float32) uint32 {
	return clampU32(int64(v*posScale+0.5), PosBits)
}

func DequantizePos(v uint32) float32 {
	return float32(v) / posScale
}

// QuantizeStickOffset maps a stick-relative offset (meters, biased by +4m)
// to the 13-bit field.
func QuantizeStickOffset(v float32) uint32 {
	return clampU32(int64((v+stickBias)*stickScale+0.5), StickOffsetBits)
}

func DequantizeStickOffset(v uint32) float32 {
	return float32(v)/stickScale - stickBias
}

// QuantizeYaw maps a yaw angle (radians, biased by +2rad) to the 16-bit field.
func QuantizeYaw(v float32) uint32 {
	return clampU32(int64((v+yawBias)*yawScale+0.5), YawBits)
}

func DequantizeYaw(v uint32) float32 {
	return float32(v)/yawScale - yawBias
}
