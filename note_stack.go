// note_stack.go - Bounded press-ordered set of held key codes

package main

import "errors"

var ErrStackFull = errors.New("note stack full")

// NoteStack keeps held key codes in press order, newest last. A code is
// present at most once. It is owned by a single goroutine and not
// synchronized.
type NoteStack struct {
	codes []KeyCode
}

func NewNoteStack(capacity int) *NoteStack {
	if capacity < 1 {
		capacity = 1
	}
	return &NoteStack{codes: make([]KeyCode, 0, capacity)}
}

func (s *NoteStack) Len() int {
	return len(s.codes)
}

func (s *NoteStack) Cap() int {
	return cap(s.codes)
}

// Top returns the most recently pressed code still held.
func (s *NoteStack) Top() (KeyCode, bool) {
	if len(s.codes) == 0 {
		return 0, false
	}
	return s.codes[len(s.codes)-1], true
}

func (s *NoteStack) Contains(code KeyCode) bool {
	return s.index(code) >= 0
}

// Push appends code. It returns false without changing the stack when code
// is already held, and ErrStackFull when at capacity.
func (s *NoteStack) Push(code KeyCode) (bool, error) {
	if s.Contains(code) {
		return false, nil
	}
	if len(s.codes) == cap(s.codes) {
		return false, ErrStackFull
	}
	s.codes = append(s.codes, code)
	return true, nil
}

// Remove deletes code wherever it sits, keeping the order of the rest.
// wasTop reports whether code was the top before removal.
func (s *NoteStack) Remove(code KeyCode) (found, wasTop bool) {
	i := s.index(code)
	if i < 0 {
		return false, false
	}
	wasTop = i == len(s.codes)-1
	copy(s.codes[i:], s.codes[i+1:])
	s.codes = s.codes[:len(s.codes)-1]
	return true, wasTop
}

// Pop removes and returns the top.
func (s *NoteStack) Pop() (KeyCode, bool) {
	code, ok := s.Top()
	if !ok {
		return 0, false
	}
	s.codes = s.codes[:len(s.codes)-1]
	return code, true
}

func (s *NoteStack) Reset() {
	s.codes = s.codes[:0]
}

// Codes returns a copy, oldest first.
func (s *NoteStack) Codes() []KeyCode {
	out := make([]KeyCode, len(s.codes))
	copy(out, s.codes)
	return out
}

func (s *NoteStack) index(code KeyCode) int {
	for i := len(s.codes) - 1; i >= 0; i-- {
		if s.codes[i] == code {
			return i
		}
	}
	return -1
}
