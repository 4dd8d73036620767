package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	meta Metadata
	data []byte
	n    int
}

func (f *fakeSink) Save(meta Metadata, data []byte) {
	f.meta = meta
	f.data = data
	f.n++
}

func TestRecorderAccumulatesAcrossAppends(t *testing.T) {
	r := NewRecorder("Test Rink", 3, time.Unix(0, 0))
	require.Equal(t, 0, r.Len())

	r.Append([]byte{1, 2, 3})
	r.Append([]byte{4, 5})

	require.Equal(t, 5, r.Len())
}

func TestRecorderFinishHandsBufferToSinkAndResets(t *testing.T) {
	r := NewRecorder("Test Rink", 3, time.Unix(0, 0))
	r.Append([]byte{1, 2, 3})

	sink := &fakeSink{}
	r.Finish(sink)

	require.Equal(t, 1, sink.n)
	require.Equal(t, []byte{1, 2, 3}, sink.data)
	require.Equal(t, "Test Rink", sink.meta.ServerName)
	require.Equal(t, 3, sink.meta.GameNumber)
	require.Equal(t, 0, r.Len())
}

func TestRecorderFinishWithNoDataDoesNotCallSink(t *testing.T) {
	r := NewRecorder("Test Rink", 1, time.Unix(0, 0))
	sink := &fakeSink{}

	r.Finish(sink)

	require.Equal(t, 0, sink.n)
}

func TestRecorderFinishWithNilSinkIsSafe(t *testing.T) {
	r := NewRecorder("Test Rink", 1, time.Unix(0, 0))
	r.Append([]byte{9})

	require.NotPanics(t, func() { r.Finish(nil) })
	require.Equal(t, 0, r.Len())
}
