package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadBitsRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	w := NewWriter(buf)
	w.WriteBits(3, 5)
	w.WriteBits(6, 41)
	w.WriteBits(12, 3000)
	w.WriteBits(1, 1)
	w.WriteByteAligned(0xAB)
	w.WriteU32Aligned(123456789)
	w.WriteF32Aligned(3.5)

	r := NewReader(buf)
	require.EqualValues(t, 5, r.ReadBits(3))
	require.EqualValues(t, 41, r.ReadBits(6))
	require.EqualValues(t, 3000, r.ReadBits(12))
	require.EqualValues(t, 1, r.ReadBits(1))
	require.EqualValues(t, 0xAB, r.ReadByteAligned())
	require.EqualValues(t, 123456789, r.ReadU32Aligned())
	require.Equal(t, float32(3.5), r.ReadF32Aligned())
}

func TestWriteBytesAlignedPaddedZeroFills(t *testing.T) {
	buf := make([]byte, 40)
	w := NewWriter(buf)
	w.WriteBytesAlignedPadded(32, []byte("Player1"))

	r := NewReader(buf)
	got := r.ReadBytesAligned(32)
	require.Equal(t, "Player1", string(got[:7]))
	for _, b := range got[7:] {
		require.EqualValues(t, 0, b)
	}
}

func TestPosDeltaRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		oldV     int64
		v        uint32
		wantBits uint8
	}{
		{"small positive delta", 1000, 1002, 17},
		{"small negative delta", 1000, 998, 17},
		{"medium delta", 1000, 1020, 17},
		{"large delta forces absolute", 1000, 50000, 17},
		{"no previous value forces absolute", -1, 12345, 17},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, 16)
			w := NewWriter(buf)
			w.WritePos(tc.wantBits, tc.v, tc.oldV)

			r := NewReader(buf)
			got := r.ReadPos(tc.wantBits, tc.oldV)
			require.Equal(t, tc.v, got)
		})
	}
}

func TestReaderPastEndReturnsZero(t *testing.T) {
	r := NewReader([]byte{0x01})
	r.ReadByteAligned()
	// Reading beyond the one-byte buffer must degrade to zero, not panic.
	require.EqualValues(t, 0, r.ReadByteAligned())
	require.EqualValues(t, 0, r.ReadU32Aligned())
}

func TestBytesWrittenRoundsUpPartialByte(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	require.Equal(t, 0, w.BytesWritten())
	w.WriteBits(3, 1)
	require.Equal(t, 1, w.BytesWritten())
	w.WriteByteAligned(1)
	require.Equal(t, 2, w.BytesWritten())
}
