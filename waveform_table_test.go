package main

import (
	"context"
	"encoding/binary"
	"math"
	"testing"
)

func frameAt(buf []byte, frame int) (int16, int16) {
	off := frame * BYTES_PER_FRAME
	return int16(binary.LittleEndian.Uint16(buf[off:])), int16(binary.LittleEndian.Uint16(buf[off+2:]))
}

func TestNoteFrequency_EqualTemperament(t *testing.T) {
	if got := NoteFrequency(0); got != STARTING_NOTE_HZ {
		t.Fatalf("note 0: expected %v Hz, got %v", STARTING_NOTE_HZ, got)
	}
	for i := range MAX_NOTES - 12 {
		want := STARTING_NOTE_HZ * math.Pow(2, float64(i)/12)
		if got := NoteFrequency(i); math.Abs(got-want)/want > 1e-9 {
			t.Fatalf("note %d: expected %v, got %v", i, want, got)
		}
		ratio := NoteFrequency(i+12) / NoteFrequency(i)
		if math.Abs(ratio-2) > 2e-6 {
			t.Fatalf("note %d: octave ratio %v, expected 2", i, ratio)
		}
	}
}

func TestNoteFrequency_SemitoneRatio(t *testing.T) {
	ratio := NoteFrequency(1) / NoteFrequency(0)
	if math.Abs(ratio-SEMITONE_RATIO) > 1e-12 {
		t.Fatalf("semitone ratio %v, expected %v", ratio, SEMITONE_RATIO)
	}
}

func TestWaveformTable_LoopLengthAndAntiphase(t *testing.T) {
	for _, shape := range []WaveShape{WAVE_SINE, WAVE_SQUARE, WAVE_TRIANGLE, WAVE_SAWTOOTH} {
		table, err := NewWaveformTable(context.Background(), 3, shape)
		if err != nil {
			t.Fatalf("%v: %v", shape, err)
		}
		if table.Len() != 3 {
			t.Fatalf("%v: expected 3 notes, got %d", shape, table.Len())
		}
		for n := range table.Len() {
			buf := table.Buffer(n)
			if len(buf) != LOOP_BYTES {
				t.Fatalf("%v note %d: expected %d bytes, got %d", shape, n, LOOP_BYTES, len(buf))
			}
			for i := 0; i < LOOP_FRAMES; i += 97 {
				l, r := frameAt(buf, i)
				if r != -l {
					t.Fatalf("%v note %d frame %d: right %d is not -left %d", shape, n, i, r, l)
				}
			}
		}
	}
}

func TestWaveformTable_SineMatchesFormula(t *testing.T) {
	table, err := NewWaveformTable(context.Background(), 13, WAVE_SINE)
	if err != nil {
		t.Fatal(err)
	}
	note := 12 // 220 Hz
	buf := table.Buffer(note)
	peak := 0
	for i := range LOOP_FRAMES {
		l, _ := frameAt(buf, i)
		want := math.Sin(2*math.Pi*NoteFrequency(note)*float64(i)/SAMPLE_RATE) * PCM_MAX
		if math.Abs(float64(l)-want) > 1.5 {
			t.Fatalf("frame %d: expected ~%.1f, got %d", i, want, l)
		}
		peak = max(peak, int(l))
	}
	if peak < PCM_MAX-2 {
		t.Fatalf("expected full-scale peak, got %d", peak)
	}
}

func TestWaveformTable_Bounds(t *testing.T) {
	table, err := NewWaveformTable(context.Background(), 0, WAVE_SINE)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 {
		t.Fatalf("expected count clamped to 1, got %d", table.Len())
	}
	if table.Buffer(-1) != nil || table.Buffer(1) != nil {
		t.Fatal("expected nil buffer out of range")
	}
	if _, err := NewWaveformTable(context.Background(), 1, WaveShape(42)); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestWaveformTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewWaveformTable(ctx, 4, WAVE_SINE); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestWaveValue_StaysInRange(t *testing.T) {
	shapes := []WaveShape{WAVE_SINE, WAVE_SQUARE, WAVE_TRIANGLE, WAVE_SAWTOOTH}
	for _, shape := range shapes {
		for _, dt := range []float64{0.001, 0.05, 0.3, 0.9} {
			for i := range 1000 {
				v := waveValue(shape, float64(i)/1000, dt)
				if v < -1 || v > 1 {
					t.Fatalf("%v dt=%v t=%v: value %v out of range", shape, dt, float64(i)/1000, v)
				}
			}
		}
	}
}

func TestParseWaveShape(t *testing.T) {
	tests := []struct {
		name    string
		want    WaveShape
		wantErr bool
	}{
		{"sine", WAVE_SINE, false},
		{"square", WAVE_SQUARE, false},
		{"triangle", WAVE_TRIANGLE, false},
		{"sawtooth", WAVE_SAWTOOTH, false},
		{"noise", WAVE_SINE, true},
	}
	for _, tt := range tests {
		got, err := ParseWaveShape(tt.name)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: unexpected error state %v", tt.name, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("%q: expected %v, got %v", tt.name, tt.want, got)
		}
		if !tt.wantErr && got.String() != tt.name {
			t.Fatalf("%q: String() returned %q", tt.name, got.String())
		}
	}
}
