package main

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
)

func newTestRenderer(t *testing.T, notes int, bridge *VisBridge) (*AudioRenderer, *WaveformTable) {
	t.Helper()
	table, err := NewWaveformTable(context.Background(), notes, WAVE_SINE)
	if err != nil {
		t.Fatal(err)
	}
	return NewAudioRenderer(table, bridge), table
}

func readFrames(r *AudioRenderer, frames int) []byte {
	buf := make([]byte, frames*BYTES_PER_FRAME)
	r.Read(buf)
	return buf
}

func TestAudioRenderer_SilenceIsZero(t *testing.T) {
	r, _ := newTestRenderer(t, 1, nil)
	buf := make([]byte, 4*BYTES_PER_FRAME+3)
	for i := range buf {
		buf[i] = 0xAA
	}
	n, err := r.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("expected full read, got n=%d err=%v", n, err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d: expected silence, got %#x", i, b)
		}
	}
}

func TestAudioRenderer_StartIsIdempotent(t *testing.T) {
	r, _ := newTestRenderer(t, 2, nil)
	r.Start(1)
	first := r.current.Load()
	r.Start(1)
	if r.current.Load() != first {
		t.Fatal("starting the playing note restarted it")
	}
	if !r.IsPlaying(1) || r.IsPlaying(0) {
		t.Fatal("expected only note 1 playing")
	}
	r.Start(0)
	if note, ok := r.Playing(); !ok || note != 0 {
		t.Fatalf("expected note 0 to replace note 1, got %d %v", note, ok)
	}
}

func TestAudioRenderer_StopOnlyAffectsPlayingNote(t *testing.T) {
	r, _ := newTestRenderer(t, 2, nil)
	r.Start(0)
	r.Stop(1)
	if !r.IsPlaying(0) {
		t.Fatal("stopping another note silenced the playing one")
	}
	r.Stop(0)
	r.Stop(0)
	if _, ok := r.Playing(); ok {
		t.Fatal("expected silence after stop")
	}
}

func TestAudioRenderer_StartOutOfRangeIgnored(t *testing.T) {
	r, _ := newTestRenderer(t, 2, nil)
	r.Start(2)
	r.Start(-1)
	if _, ok := r.Playing(); ok {
		t.Fatal("expected out-of-range start to be ignored")
	}
}

func TestAudioRenderer_RampIn(t *testing.T) {
	r, table := newTestRenderer(t, 1, nil)
	raw := table.Buffer(0)
	r.Start(0)
	out := readFrames(r, 3*DECLICK_FRAMES)
	for i := range 3 * DECLICK_FRAMES {
		wantL, wantR := frameAt(raw, i)
		if i < DECLICK_FRAMES {
			wantL, wantR = scaleFrame(wantL, wantR, i+1)
		}
		l, rt := frameAt(out, i)
		if l != wantL || rt != wantR {
			t.Fatalf("frame %d: expected (%d,%d), got (%d,%d)", i, wantL, wantR, l, rt)
		}
	}
}

func TestAudioRenderer_NoteChangeFadesThenRamps(t *testing.T) {
	r, table := newTestRenderer(t, 2, nil)
	raw0, raw1 := table.Buffer(0), table.Buffer(1)
	const lead = 100

	r.Start(0)
	readFrames(r, lead)
	r.Start(1)
	out := readFrames(r, 3*DECLICK_FRAMES)

	for i := range 3 * DECLICK_FRAMES {
		var wantL, wantR int16
		if i < DECLICK_FRAMES {
			wantL, wantR = frameAt(raw0, lead+i)
			wantL, wantR = scaleFrame(wantL, wantR, DECLICK_FRAMES-i)
		} else {
			j := i - DECLICK_FRAMES
			wantL, wantR = frameAt(raw1, j)
			if j < DECLICK_FRAMES {
				wantL, wantR = scaleFrame(wantL, wantR, j+1)
			}
		}
		l, rt := frameAt(out, i)
		if l != wantL || rt != wantR {
			t.Fatalf("frame %d: expected (%d,%d), got (%d,%d)", i, wantL, wantR, l, rt)
		}
	}
}

func TestAudioRenderer_QuickChangeKeepsFadeRunning(t *testing.T) {
	r, table := newTestRenderer(t, 3, nil)
	raw0, raw2 := table.Buffer(0), table.Buffer(2)
	const lead, partial = 100, 10

	r.Start(0)
	readFrames(r, lead)
	r.Start(1)
	readFrames(r, partial)
	// Note 1 is replaced before a single frame of it was rendered.
	r.Start(2)
	out := readFrames(r, 3*DECLICK_FRAMES)

	remaining := DECLICK_FRAMES - partial
	for i := range 3 * DECLICK_FRAMES {
		var wantL, wantR int16
		if i < remaining {
			wantL, wantR = frameAt(raw0, lead+partial+i)
			wantL, wantR = scaleFrame(wantL, wantR, remaining-i)
		} else {
			j := i - remaining
			wantL, wantR = frameAt(raw2, j)
			if j < DECLICK_FRAMES {
				wantL, wantR = scaleFrame(wantL, wantR, j+1)
			}
		}
		l, rt := frameAt(out, i)
		if l != wantL || rt != wantR {
			t.Fatalf("frame %d: expected (%d,%d), got (%d,%d)", i, wantL, wantR, l, rt)
		}
	}
}

func TestAudioRenderer_StopFadesToSilence(t *testing.T) {
	r, _ := newTestRenderer(t, 1, nil)
	r.Start(0)
	readFrames(r, 2*DECLICK_FRAMES)
	r.Stop(0)
	out := readFrames(r, 2*DECLICK_FRAMES)
	for i := DECLICK_FRAMES; i < 2*DECLICK_FRAMES; i++ {
		if l, rt := frameAt(out, i); l != 0 || rt != 0 {
			t.Fatalf("frame %d: expected silence after fade, got (%d,%d)", i, l, rt)
		}
	}
}

func TestAudioRenderer_LoopWraps(t *testing.T) {
	r, table := newTestRenderer(t, 1, nil)
	raw := table.Buffer(0)
	r.Start(0)
	readFrames(r, LOOP_FRAMES)
	out := readFrames(r, 8)
	for i := range 8 {
		wantL, wantR := frameAt(raw, i)
		if l, rt := frameAt(out, i); l != wantL || rt != wantR {
			t.Fatalf("frame %d after wrap: expected (%d,%d), got (%d,%d)", i, wantL, wantR, l, rt)
		}
	}
}

func TestAudioRenderer_PublishesSnapshots(t *testing.T) {
	bridge := NewVisBridge()
	r, _ := newTestRenderer(t, 1, bridge)

	readFrames(r, 8)
	snap, ok := bridge.Latest()
	if !ok || snap.Sounding || snap.Note != -1 {
		t.Fatalf("expected silent snapshot, got %+v ok=%v", snap, ok)
	}

	r.Start(0)
	out := readFrames(r, 16)
	snap, ok = bridge.Latest()
	if !ok || !snap.Sounding || snap.Note != 0 {
		t.Fatalf("expected sounding note 0, got %+v ok=%v", snap, ok)
	}
	if len(snap.Samples) != 16 {
		t.Fatalf("expected 16 samples, got %d", len(snap.Samples))
	}
	for i, s := range snap.Samples {
		l := int16(binary.LittleEndian.Uint16(out[i*BYTES_PER_FRAME:]))
		if s != float32(l)/PCM_MAX {
			t.Fatalf("sample %d: expected %v, got %v", i, float32(l)/PCM_MAX, s)
		}
	}

	// Later reads must not alias an earlier snapshot's samples.
	kept := snap.Samples[0]
	readFrames(r, 16)
	if snap.Samples[0] != kept {
		t.Fatal("snapshot samples were overwritten by a later read")
	}
}

func TestAudioRenderer_ConcurrentStartStop(t *testing.T) {
	r, _ := newTestRenderer(t, 4, nil)
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Go(func() {
		buf := make([]byte, 256*BYTES_PER_FRAME)
		for {
			select {
			case <-stop:
				return
			default:
			}
			r.Read(buf)
		}
	})
	for i := range 2000 {
		r.Start(i % 4)
		if i%3 == 0 {
			r.Stop(i % 4)
		}
	}
	close(stop)
	wg.Wait()

	r.StopAll()
	out := readFrames(r, 2*DECLICK_FRAMES)
	for i := DECLICK_FRAMES; i < 2*DECLICK_FRAMES; i++ {
		if l, rt := frameAt(out, i); l != 0 || rt != 0 {
			t.Fatalf("frame %d: expected silence after StopAll, got (%d,%d)", i, l, rt)
		}
	}
}
