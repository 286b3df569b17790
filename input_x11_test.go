package main

import (
	"slices"
	"testing"

	"github.com/jezek/xgb/xproto"
)

func setKey(bitmap *[32]byte, xkeycode int) {
	bitmap[xkeycode/8] |= 1 << (xkeycode % 8)
}

func collect(events *[]InputEvent) func(InputEvent) {
	return func(ev InputEvent) {
		*events = append(*events, ev)
	}
}

func TestDiffKeyBitmap_PressAndRelease(t *testing.T) {
	var prev, cur [32]byte
	setKey(&prev, 24) // Q held
	setKey(&cur, 25)  // W pressed, Q lifted
	setKey(&cur, 9)   // Escape pressed

	var got []InputEvent
	diffKeyBitmap(prev, cur, collect(&got))
	want := []InputEvent{Release(16), Press(1), Press(17)}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDiffKeyBitmap_HeldKeysDoNotRepeat(t *testing.T) {
	var state [32]byte
	setKey(&state, 38)
	var got []InputEvent
	for range 10 {
		diffKeyBitmap(state, state, collect(&got))
	}
	if len(got) != 0 {
		t.Fatalf("expected no events for unchanged state, got %v", got)
	}
}

func TestDiffKeyBitmap_SkipsInvalidKeycodes(t *testing.T) {
	var cur [32]byte
	cur[0] = 0xFF
	var got []InputEvent
	diffKeyBitmap([32]byte{}, cur, collect(&got))
	if len(got) != 0 {
		t.Fatalf("expected keycodes below 8 ignored, got %v", got)
	}
}

func TestDiffButtonMask(t *testing.T) {
	var got []InputEvent
	diffButtonMask(0, xproto.KeyButMaskButton1|xproto.KeyButMaskButton2, collect(&got))
	diffButtonMask(xproto.KeyButMaskButton1, xproto.KeyButMaskButton3, collect(&got))
	want := []InputEvent{Press(CODE_MOUSE_LEFT), Release(CODE_MOUSE_LEFT), Press(CODE_MOUSE_RIGHT)}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEventQueue_DropsWhenFull(t *testing.T) {
	q := NewEventQueue(2)
	for i := range 5 {
		q.Offer(Press(KeyCode(i)))
	}
	if q.Dropped() != 3 {
		t.Fatalf("expected 3 dropped, got %d", q.Dropped())
	}
	if ev := <-q.Events(); ev != Press(0) {
		t.Fatalf("expected oldest event kept, got %v", ev)
	}
}
