// constants.go - Audio, input and shutdown constants

package main

import "time"

const (
	SAMPLE_RATE     = 44100
	CHANNEL_COUNT   = 2 // stereo, channel 2 in antiphase
	BYTES_PER_VALUE = 2 // signed 16-bit little-endian
	BYTES_PER_FRAME = CHANNEL_COUNT * BYTES_PER_VALUE

	LOOP_FRAMES = SAMPLE_RATE // one-second loop per note
	LOOP_BYTES  = LOOP_FRAMES * BYTES_PER_FRAME

	PCM_MAX = 32767
)

const (
	STARTING_NOTE_HZ = 110.0 // note index 0 (A2)
	SEMITONE_RATIO   = 1.0594630943592953
	MIDI_BASE_NOTE   = 45 // MIDI number of STARTING_NOTE_HZ
	MAX_NOTES        = 255
)

const (
	MAX_KEY_CODES    = 256
	CODE_QUIT        = 1    // Escape
	CODE_MOUSE_LEFT  = 0xFE // X button 1
	CODE_MOUSE_RIGHT = 0xFF // X button 3
	X11_KEYCODE_BASE = 8    // X keycode - 8 = evdev scan code
)

const (
	STACK_CAPACITY   = 256
	EVENT_QUEUE_SIZE = 64
	DECLICK_FRAMES   = 64 // ~1.5ms linear ramp at note boundaries
)

const (
	KEYPRESS_INTERVAL = 10 * time.Millisecond
	SHUTDOWN_GRACE    = 2 * time.Second
)

const (
	VIS_BUFFER_SIZE   = 10_000
	VIS_WINDOW_TITLE  = "keytone"
	VIS_WINDOW_WIDTH  = 1600
	VIS_WINDOW_HEIGHT = 300
	VIS_WINDOW_X      = 635
	VIS_WINDOW_Y      = 50
)
