// keymap.go - KeyCode to note lookup and the built-in layouts

package main

import (
	"fmt"
	"sort"
)

const DEFAULT_EXTRA_MIDI = 69 // A4, 440 Hz, shared by both mouse buttons

// Keymap maps key codes to note indices. Unmapped codes are ignored by the
// arbiter.
type Keymap struct {
	Name  string
	notes [MAX_KEY_CODES]int16
}

func NewKeymap(name string) *Keymap {
	k := &Keymap{Name: name}
	for i := range k.notes {
		k.notes[i] = -1
	}
	return k
}

// Set maps code to a note index in [0, MAX_NOTES).
func (k *Keymap) Set(code KeyCode, note int) error {
	if note < 0 || note >= MAX_NOTES {
		return fmt.Errorf("keymap %s: note index %d out of range for code %d", k.Name, note, code)
	}
	k.notes[code] = int16(note)
	return nil
}

// SetMIDI maps code to a MIDI note number, relative to MIDI_BASE_NOTE.
func (k *Keymap) SetMIDI(code KeyCode, midi int) error {
	return k.Set(code, midi-MIDI_BASE_NOTE)
}

// SetExtra maps both mouse buttons to one note index.
func (k *Keymap) SetExtra(note int) error {
	if err := k.Set(CODE_MOUSE_LEFT, note); err != nil {
		return err
	}
	return k.Set(CODE_MOUSE_RIGHT, note)
}

func (k *Keymap) Unset(code KeyCode) {
	k.notes[code] = -1
}

func (k *Keymap) Note(code KeyCode) (int, bool) {
	n := k.notes[code]
	if n < 0 {
		return 0, false
	}
	return int(n), true
}

// NoteCount is the size of the waveform table this keymap needs.
func (k *Keymap) NoteCount() int {
	count := 0
	for _, n := range k.notes {
		if int(n)+1 > count {
			count = int(n) + 1
		}
	}
	return count
}

func (k *Keymap) Mapped() int {
	mapped := 0
	for _, n := range k.notes {
		if n >= 0 {
			mapped++
		}
	}
	return mapped
}

// Linux evdev scan codes (X keycode - 8) by name.
var keyCodeNames = map[string]KeyCode{
	"Escape": 1, "Key1": 2, "Key2": 3, "Key3": 4, "Key4": 5, "Key5": 6,
	"Key6": 7, "Key7": 8, "Key8": 9, "Key9": 10, "Key0": 11, "Minus": 12,
	"Equal": 13, "Backspace": 14, "Tab": 15, "Q": 16, "W": 17, "E": 18,
	"R": 19, "T": 20, "Y": 21, "U": 22, "I": 23, "O": 24, "P": 25,
	"LeftBracket": 26, "RightBracket": 27, "Enter": 28, "LControl": 29,
	"A": 30, "S": 31, "D": 32, "F": 33, "G": 34, "H": 35, "J": 36, "K": 37,
	"L": 38, "Semicolon": 39, "Apostrophe": 40, "Grave": 41, "LShift": 42,
	"BackSlash": 43, "Z": 44, "X": 45, "C": 46, "V": 47, "B": 48, "N": 49,
	"M": 50, "Comma": 51, "Dot": 52, "Slash": 53, "RShift": 54, "LAlt": 56,
	"Space": 57, "CapsLock": 58, "F1": 59, "F2": 60, "F3": 61, "F4": 62,
	"F5": 63, "F6": 64, "F7": 65, "F8": 66, "F9": 67, "F10": 68, "F11": 87,
	"F12": 88, "RControl": 97, "RAlt": 100, "Up": 103, "Left": 105,
	"Right": 106, "Down": 108, "Insert": 110, "Delete": 111, "Meta": 125,
	"MouseLeft": CODE_MOUSE_LEFT, "MouseRight": CODE_MOUSE_RIGHT,
}

func KeyCodeByName(name string) (KeyCode, bool) {
	code, ok := keyCodeNames[name]
	return code, ok
}

// KeyName returns the layout name of code, or its number.
func KeyName(code KeyCode) string {
	for name, c := range keyCodeNames {
		if c == code {
			return name
		}
	}
	return fmt.Sprintf("#%d", code)
}

// Built-in layouts in MIDI note numbers. Escape is the quit key and never
// reaches the keymap, so "us" starts at F1.
var builtinLayouts = map[string]map[string]int{
	"us": {
		"F1": 46, "F2": 47, "F3": 48, "F4": 49, "F5": 50, "F6": 51, "F7": 52,
		"F8": 53, "F9": 54, "F10": 55, "F11": 56, "F12": 57, "Insert": 58,
		"Delete": 59, "Grave": 60, "Key1": 61, "Key2": 62, "Key3": 63,
		"Key4": 64, "Key5": 65, "Key6": 66, "Key7": 67, "Key8": 68, "Key9": 69,
		"Key0": 70, "Minus": 71, "Equal": 72, "Backspace": 73, "Tab": 74,
		"Q": 75, "W": 76, "E": 77, "R": 78, "T": 79, "Y": 80, "U": 81, "I": 82,
		"O": 83, "P": 84, "LeftBracket": 85, "RightBracket": 86,
		"BackSlash": 87, "CapsLock": 88, "A": 89, "S": 90, "D": 91, "F": 92,
		"G": 93, "H": 94, "J": 95, "K": 96, "L": 97, "Semicolon": 98,
		"Apostrophe": 99, "Enter": 100, "LShift": 101, "Z": 102, "X": 103,
		"C": 104, "V": 105, "B": 106, "N": 107, "M": 108, "Comma": 109,
		"Dot": 110, "Slash": 111, "RShift": 112, "LControl": 113, "Meta": 114,
		"LAlt": 115, "Space": 116, "RAlt": 117, "RControl": 118, "Left": 119,
		"Up": 120, "Down": 121, "Right": 122,
	},
	"piano": {
		"Q": 48, "Key2": 49, "W": 50, "Key3": 51, "E": 52, "R": 53, "Key5": 54,
		"T": 55, "Key6": 56, "Y": 57, "Key7": 58, "U": 59, "I": 60, "Key9": 61,
		"O": 62, "Key0": 63, "P": 64, "Z": 60, "S": 61, "X": 62, "D": 63,
		"C": 64, "V": 65, "G": 66, "B": 67, "H": 68, "N": 69, "J": 70, "M": 71,
		"Comma": 72, "L": 73, "Dot": 74, "Semicolon": 75, "Slash": 76,
	},
}

// BuiltinKeymapNames lists the -keymap choices.
func BuiltinKeymapNames() []string {
	names := []string{"raw"}
	for name := range builtinLayouts {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// BuiltinKeymap returns a fresh copy of a named layout. "raw" maps every
// scan code below MAX_NOTES to the note with the same index.
func BuiltinKeymap(name string) (*Keymap, error) {
	k := NewKeymap(name)
	if name == "raw" {
		for code := range MAX_NOTES {
			k.notes[code] = int16(code)
		}
	} else {
		layout, ok := builtinLayouts[name]
		if !ok {
			return nil, fmt.Errorf("unknown keymap %q", name)
		}
		for keyName, midi := range layout {
			code, ok := KeyCodeByName(keyName)
			if !ok {
				return nil, fmt.Errorf("keymap %s: unknown key %q", name, keyName)
			}
			if err := k.SetMIDI(code, midi); err != nil {
				return nil, err
			}
		}
	}
	if err := k.SetExtra(DEFAULT_EXTRA_MIDI - MIDI_BASE_NOTE); err != nil {
		return nil, err
	}
	return k, nil
}
