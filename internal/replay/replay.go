// Package replay accumulates one game's worth of replay bytes and hands the
// finished buffer off to a pluggable Sink, grounded on record.rs's
// ReplaySaving trait (spec §4.6).
package replay

import "time"

// Sink is the asynchronous, fire-and-forget replay destination (spec §6.4).
// A Sink must not block the caller: Save should return quickly, doing any
// real I/O on its own goroutine.
type Sink interface {
	Save(meta Metadata, data []byte)
}

// Metadata travels with the replay bytes (spec §4.6, §6.4).
type Metadata struct {
	ServerName string
	StartTime  time.Time
	GameNumber int
}

// Recorder buffers one game's append-only stream: an absolute snapshot plus
// any persistent messages emitted since the previous append, every tick
// (spec §4.6). It holds no reference to World/Game beyond what's passed to
// Append, so it shares no mutable state with the tick loop (spec §5).
type Recorder struct {
	buf       []byte
	startTime time.Time
	meta      Metadata
}

func NewRecorder(serverName string, gameNumber int, startTime time.Time) *Recorder {
	return &Recorder{
		startTime: startTime,
		meta: Metadata{
			ServerName: serverName,
			StartTime:  startTime,
			GameNumber: gameNumber,
		},
	}
}

// Append adds one tick's worth of absolute snapshot bytes and any newly
// emitted persistent-message bytes. The caller is responsible for encoding
// both (protocol.EncodeGameState with prev=nil gives an absolute snapshot).
func (r *Recorder) Append(snapshotBytes []byte) {
	r.buf = append(r.buf, snapshotBytes...)
}

// Finish hands the accumulated buffer to sink and resets the recorder —
// called at game-over, reset, or server shutdown (spec §4.6).
func (r *Recorder) Finish(sink Sink) {
	if sink == nil || len(r.buf) == 0 {
		r.buf = nil
		return
	}
	data := r.buf
	r.buf = nil
	sink.Save(r.meta, data)
}

func (r *Recorder) Len() int { return len(r.buf) }
