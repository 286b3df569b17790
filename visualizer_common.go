// visualizer_common.go - Waveform history shared by the visualizer backends

package main

import (
	"errors"
	"fmt"
)

var ErrVisualizerUnavailable = errors.New("visualizer not available in this build")

// Visualizer runs a window on the calling goroutine until it is closed or
// shutdown is triggered.
type Visualizer interface {
	Run() error
}

// waveHistory keeps the most recent VIS_BUFFER_SIZE samples received over
// the bridge and the sounding state of the newest snapshot.
type waveHistory struct {
	samples  []float32
	sounding bool
	note     int
}

func newWaveHistory() *waveHistory {
	return &waveHistory{
		samples: make([]float32, 0, VIS_BUFFER_SIZE),
		note:    -1,
	}
}

func (h *waveHistory) push(s Snapshot) {
	h.sounding = s.Sounding
	h.note = s.Note
	in := s.Samples
	if len(in) > VIS_BUFFER_SIZE {
		in = in[len(in)-VIS_BUFFER_SIZE:]
	}
	if over := len(h.samples) + len(in) - VIS_BUFFER_SIZE; over > 0 {
		n := copy(h.samples, h.samples[over:])
		h.samples = h.samples[:n]
	}
	h.samples = append(h.samples, in...)
}

func (h *waveHistory) label() string {
	if !h.sounding || h.note < 0 {
		return "silent"
	}
	return fmt.Sprintf("%s  %.2f Hz", NoteName(h.note), NoteFrequency(h.note))
}

// points downsamples the history to at most width samples for drawing.
func (h *waveHistory) points(width int) []float32 {
	if width <= 0 || len(h.samples) == 0 {
		return nil
	}
	if len(h.samples) <= width {
		return h.samples
	}
	out := make([]float32, width)
	step := float64(len(h.samples)) / float64(width)
	for i := range out {
		out[i] = h.samples[int(float64(i)*step)]
	}
	return out
}
