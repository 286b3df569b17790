// note_names.go - Pitch names for note indices

package main

import (
	"strconv"

	"gitlab.com/gomidi/midi/v2"
)

// NoteName returns the pitch name of a note index. Indices that fall
// outside the MIDI range keep their numeric form.
func NoteName(index int) string {
	m := index + MIDI_BASE_NOTE
	if index < 0 || m > 127 {
		return "n" + strconv.Itoa(index)
	}
	return midi.Note(uint8(m)).String()
}
