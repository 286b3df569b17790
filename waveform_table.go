// waveform_table.go - Precomputed one-second stereo loops, one per note

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type WaveShape int

const (
	WAVE_SINE WaveShape = iota
	WAVE_SQUARE
	WAVE_TRIANGLE
	WAVE_SAWTOOTH
)

var waveShapeNames = map[WaveShape]string{
	WAVE_SINE:     "sine",
	WAVE_SQUARE:   "square",
	WAVE_TRIANGLE: "triangle",
	WAVE_SAWTOOTH: "sawtooth",
}

func (w WaveShape) String() string {
	if name, ok := waveShapeNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WaveShape(%d)", int(w))
}

func ParseWaveShape(name string) (WaveShape, error) {
	for shape, n := range waveShapeNames {
		if n == name {
			return shape, nil
		}
	}
	return WAVE_SINE, fmt.Errorf("unknown wave shape %q", name)
}

// NoteFrequency returns f0 * 2^(index/12).
func NoteFrequency(index int) float64 {
	return STARTING_NOTE_HZ * math.Pow(2, float64(index)/12)
}

// WaveformTable holds one immutable S16LE stereo loop of LOOP_FRAMES frames
// per note. The loop length does not depend on the note's period, so notes
// whose frequency is not a whole number of Hz wrap with a phase jump once a
// second. That click is accepted; no resampling is done.
type WaveformTable struct {
	shape   WaveShape
	buffers [][]byte
}

// NewWaveformTable renders count notes in parallel. count is clamped to
// [1, MAX_NOTES].
func NewWaveformTable(ctx context.Context, count int, shape WaveShape) (*WaveformTable, error) {
	if count < 1 {
		count = 1
	}
	if count > MAX_NOTES {
		count = MAX_NOTES
	}
	if _, ok := waveShapeNames[shape]; !ok {
		return nil, fmt.Errorf("waveform table: %v", shape)
	}

	table := &WaveformTable{
		shape:   shape,
		buffers: make([][]byte, count),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range count {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table.buffers[i] = renderNoteLoop(NoteFrequency(i), shape)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("waveform table: %w", err)
	}
	return table, nil
}

func (t *WaveformTable) Len() int {
	return len(t.buffers)
}

func (t *WaveformTable) Shape() WaveShape {
	return t.shape
}

// Buffer returns the PCM loop for a note, or nil when out of range. Callers
// must not modify it.
func (t *WaveformTable) Buffer(index int) []byte {
	if index < 0 || index >= len(t.buffers) {
		return nil
	}
	return t.buffers[index]
}

func renderNoteLoop(freq float64, shape WaveShape) []byte {
	buf := make([]byte, LOOP_BYTES)
	dt := freq / SAMPLE_RATE
	for i := range LOOP_FRAMES {
		phase := math.Mod(float64(i)*dt, 1.0)
		v := int16(waveValue(shape, phase, dt) * PCM_MAX)
		off := i * BYTES_PER_FRAME
		binary.LittleEndian.PutUint16(buf[off:], uint16(v))
		binary.LittleEndian.PutUint16(buf[off+2:], uint16(-v))
	}
	return buf
}

// waveValue returns the shape's value in [-1, 1] at normalized phase t.
func waveValue(shape WaveShape, t, dt float64) float64 {
	switch shape {
	case WAVE_SQUARE:
		v := 1.0
		if t >= 0.5 {
			v = -1.0
		}
		if dt < 0.5 {
			v += polyBLEP(t, dt)
			v -= polyBLEP(math.Mod(t+0.5, 1.0), dt)
		}
		return clampUnit(v)
	case WAVE_TRIANGLE:
		return 1 - 4*math.Abs(t-0.5)
	case WAVE_SAWTOOTH:
		v := 2*t - 1
		if dt < 0.5 {
			v -= polyBLEP(t, dt)
		}
		return clampUnit(v)
	default:
		return math.Sin(2 * math.Pi * t)
	}
}

// polyBLEP is the polynomial band-limited step correction for a
// discontinuity at t=0. dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1.0
	} else if t > 1.0-dt {
		t = (t - 1.0) / dt
		return t*t + t + t + 1.0
	}
	return 0.0
}

func clampUnit(v float64) float64 {
	return max(-1.0, min(1.0, v))
}
