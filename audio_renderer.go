// audio_renderer.go - Looping per-note playback with a single audible voice

package main

import (
	"encoding/binary"
	"sync/atomic"
)

// playback is one started note. note and pcm are fixed at creation; pos and
// age are advanced only by the reader goroutine once published.
type playback struct {
	note int
	pcm  []byte
	pos  int
	age  int
}

func (pb *playback) nextFrame() (int16, int16) {
	l := int16(binary.LittleEndian.Uint16(pb.pcm[pb.pos:]))
	r := int16(binary.LittleEndian.Uint16(pb.pcm[pb.pos+2:]))
	pb.pos += BYTES_PER_FRAME
	if pb.pos >= len(pb.pcm) {
		pb.pos = 0
	}
	return l, r
}

// AudioRenderer turns Start/Stop calls into a continuous S16LE stereo
// stream. At most one note is published at a time; publishing a new one
// replaces the old atomically, so Start never leaves two notes playing.
// Read fills silence explicitly and never returns short.
type AudioRenderer struct {
	table   *WaveformTable
	current atomic.Pointer[playback]
	bridge  *VisBridge

	// reader goroutine state
	last     *playback
	fading   *playback
	fadeLeft int
	visBuf   []float32
}

func NewAudioRenderer(table *WaveformTable, bridge *VisBridge) *AudioRenderer {
	return &AudioRenderer{
		table:  table,
		bridge: bridge,
	}
}

// Start makes note the audible note. Starting the note that is already
// playing has no effect; any other playing note is stopped.
func (r *AudioRenderer) Start(note int) {
	pcm := r.table.Buffer(note)
	if pcm == nil {
		return
	}
	if cur := r.current.Load(); cur != nil && cur.note == note {
		return
	}
	r.current.Store(&playback{note: note, pcm: pcm})
}

// Stop silences note if it is the one playing.
func (r *AudioRenderer) Stop(note int) {
	cur := r.current.Load()
	if cur == nil || cur.note != note {
		return
	}
	r.current.CompareAndSwap(cur, nil)
}

// StopAll silences whatever is playing.
func (r *AudioRenderer) StopAll() {
	r.current.Store(nil)
}

func (r *AudioRenderer) Playing() (int, bool) {
	cur := r.current.Load()
	if cur == nil {
		return -1, false
	}
	return cur.note, true
}

func (r *AudioRenderer) IsPlaying(note int) bool {
	cur := r.current.Load()
	return cur != nil && cur.note == note
}

// Read implements io.Reader for the audio backend. A change of note fades
// the outgoing note to zero over DECLICK_FRAMES before the incoming note
// ramps up, so the two are never heard together.
func (r *AudioRenderer) Read(p []byte) (int, error) {
	cur := r.current.Load()
	if cur != r.last {
		// A note that never reached the output has nothing to fade; an
		// unfinished fade of the note before it keeps running.
		if r.last != nil && r.last.age > 0 {
			r.fading = r.last
			r.fadeLeft = min(r.last.age, DECLICK_FRAMES)
		}
		r.last = cur
	}

	frames := len(p) / BYTES_PER_FRAME
	publish := r.bridge != nil
	if publish {
		r.visBuf = r.visBuf[:0]
	}

	for i := range frames {
		var l, rt int16
		switch {
		case r.fadeLeft > 0:
			l, rt = r.fading.nextFrame()
			l, rt = scaleFrame(l, rt, r.fadeLeft)
			r.fadeLeft--
			if r.fadeLeft == 0 {
				r.fading = nil
			}
		case cur != nil:
			l, rt = cur.nextFrame()
			if cur.age < DECLICK_FRAMES {
				cur.age++
				l, rt = scaleFrame(l, rt, cur.age)
			}
		}
		off := i * BYTES_PER_FRAME
		binary.LittleEndian.PutUint16(p[off:], uint16(l))
		binary.LittleEndian.PutUint16(p[off+2:], uint16(rt))
		if publish {
			r.visBuf = append(r.visBuf, float32(l)/PCM_MAX)
		}
	}
	clear(p[frames*BYTES_PER_FRAME:])

	if publish {
		snap := Snapshot{Sounding: cur != nil, Note: -1}
		if cur != nil {
			snap.Note = cur.note
		}
		snap.Samples = make([]float32, len(r.visBuf))
		copy(snap.Samples, r.visBuf)
		r.bridge.Publish(snap)
	}
	return len(p), nil
}

func scaleFrame(l, r int16, step int) (int16, int16) {
	g := float32(step) / DECLICK_FRAMES
	return int16(float32(l) * g), int16(float32(r) * g)
}
