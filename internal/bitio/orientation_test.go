package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/migomipo/hqmgo/internal/mathutil"
)

func TestEncodeDecodeRotColumnRoundTrip(t *testing.T) {
	vectors := []mathutil.Vec3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: -1, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 0, Z: -1},
		mathutil.Vec3{X: 1, Y: 1, Z: 1}.Normalize(),
		mathutil.Vec3{X: -1, Y: 1, Z: -1}.Normalize(),
	}
	for _, v := range vectors {
		encoded := EncodeRotColumn(SkaterOrientationBits, v)
		decoded := DecodeRotColumn(SkaterOrientationBits, encoded)
		require.InDelta(t, v.X, decoded.X, 0.01)
		require.InDelta(t, v.Y, decoded.Y, 0.01)
		require.InDelta(t, v.Z, decoded.Z, 0.01)
	}
}

func TestEncodeMatrixDecodeMatrixRoundTripIsOrthonormal(t *testing.T) {
	m := mathutil.RotateAroundAxis(mathutil.Vec3{X: 0.5, Y: 0.5, Z: 0.7071}.Normalize(), 0.9)

	c1, c2 := EncodeMatrix(BodyOrientationBits, m)
	decoded := DecodeMatrix(BodyOrientationBits, c1, c2)

	require.InDelta(t, m.Col[1].X, decoded.Col[1].X, 0.005)
	require.InDelta(t, m.Col[1].Y, decoded.Col[1].Y, 0.005)
	require.InDelta(t, m.Col[1].Z, decoded.Col[1].Z, 0.005)
	require.InDelta(t, m.Col[2].X, decoded.Col[2].X, 0.005)
	require.InDelta(t, m.Col[2].Y, decoded.Col[2].Y, 0.005)
	require.InDelta(t, m.Col[2].Z, decoded.Col[2].Z, 0.005)

	// Column 0 is reconstructed as the cross product of the decoded 1/2
	// columns, which must stay unit length for an orthonormal input matrix.
	require.InDelta(t, 1.0, decoded.Col[0].Length(), 0.02)
}

func TestQuantizePosRoundTripWithinResolution(t *testing.T) {
	cases := []float32{0, 1.5, 15.999, 30.0, 60.5}
	for _, v := range cases {
		q := QuantizePos(v)
		got := DequantizePos(q)
		require.InDelta(t, v, got, 1.0/1024.0+0.001)
	}
}

func TestQuantizeStickOffsetRoundTripWithinResolution(t *testing.T) {
	cases := []float32{-3.5, -1.0, 0.0, 1.0, 3.5}
	for _, v := range cases {
		q := QuantizeStickOffset(v)
		got := DequantizeStickOffset(q)
		require.InDelta(t, v, got, 1.0/1024.0+0.001)
	}
}

func TestQuantizeYawRoundTripWithinResolution(t *testing.T) {
	cases := []float32{-1.9, -0.5, 0, 0.5, 1.9}
	for _, v := range cases {
		q := QuantizeYaw(v)
		got := DequantizeYaw(q)
		require.InDelta(t, v, got, 1.0/8192.0+0.0005)
	}
}

func TestQuantizePosClampsNegativeToZero(t *testing.T) {
	require.EqualValues(t, 0, QuantizePos(-5.0))
}

func TestQuantizePosClampsAboveMaxToFieldCeiling(t *testing.T) {
	q := QuantizePos(1_000_000)
	require.EqualValues(t, (uint32(1)<<PosBits)-1, q)
}
