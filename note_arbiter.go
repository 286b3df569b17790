// note_arbiter.go - Monophonic last-pressed-wins note selection

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// NoteOutput is driven by the arbiter. Start and Stop must be idempotent.
type NoteOutput interface {
	Start(note int)
	Stop(note int)
}

type ReleaseMode int

const (
	// RELEASE_PROMOTE removes the released key wherever it is held. Only
	// releasing the top changes what is heard.
	RELEASE_PROMOTE ReleaseMode = iota
	// RELEASE_TOP_ONLY treats every release as a release of the top key,
	// whichever key was actually lifted. Overlapping key sequences leave
	// stale entries behind; kept for compatibility only.
	RELEASE_TOP_ONLY
)

func (m ReleaseMode) String() string {
	switch m {
	case RELEASE_PROMOTE:
		return "promote"
	case RELEASE_TOP_ONLY:
		return "top-only"
	}
	return fmt.Sprintf("ReleaseMode(%d)", int(m))
}

func ParseReleaseMode(name string) (ReleaseMode, error) {
	switch name {
	case "promote", "":
		return RELEASE_PROMOTE, nil
	case "top-only":
		return RELEASE_TOP_ONLY, nil
	}
	return RELEASE_PROMOTE, fmt.Errorf("unknown release mode %q", name)
}

// Arbiter owns the stack of held keys and keeps exactly the top key's note
// started on its output. All methods must be called from one goroutine.
type Arbiter struct {
	keymap  *Keymap
	stack   *NoteStack
	out     NoteOutput
	mode    ReleaseMode
	logger  *slog.Logger
	audible int // -1 when silent
}

func NewArbiter(keymap *Keymap, out NoteOutput, mode ReleaseMode, logger *slog.Logger) *Arbiter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Arbiter{
		keymap:  keymap,
		stack:   NewNoteStack(STACK_CAPACITY),
		out:     out,
		mode:    mode,
		logger:  logger,
		audible: -1,
	}
}

// Audible returns the note currently started, if any.
func (a *Arbiter) Audible() (int, bool) {
	return a.audible, a.audible >= 0
}

// Stack returns the held codes, oldest first.
func (a *Arbiter) Stack() []KeyCode {
	return a.stack.Codes()
}

func (a *Arbiter) Mode() ReleaseMode {
	return a.mode
}

func (a *Arbiter) HandleEvent(ev InputEvent) {
	switch ev.Kind {
	case EventPress:
		a.OnPress(ev.Code)
	case EventRelease:
		a.OnRelease(ev.Code)
	}
}

func (a *Arbiter) OnPress(code KeyCode) {
	note, ok := a.keymap.Note(code)
	if !ok || a.stack.Contains(code) {
		return
	}
	if a.stack.Len() == a.stack.Cap() {
		a.logger.Warn("press dropped", "code", code, "err", ErrStackFull)
		return
	}

	a.silence()
	if _, err := a.stack.Push(code); err != nil {
		a.logger.Warn("press dropped", "code", code, "err", err)
		a.soundTop()
		return
	}
	a.sound(note)
}

func (a *Arbiter) OnRelease(code KeyCode) {
	if _, ok := a.keymap.Note(code); !ok {
		return
	}

	switch a.mode {
	case RELEASE_TOP_ONLY:
		if a.stack.Len() == 0 {
			return
		}
		a.silence()
		a.stack.Pop()
		a.soundTop()
	default:
		found, wasTop := a.stack.Remove(code)
		if !found || !wasTop {
			return
		}
		a.silence()
		a.soundTop()
	}
}

// Reset stops any audible note and forgets all held keys.
func (a *Arbiter) Reset() {
	a.silence()
	a.stack.Reset()
}

// Run applies events until ctx is cancelled or events is closed, then
// resets.
func (a *Arbiter) Run(ctx context.Context, events <-chan InputEvent) error {
	defer a.Reset()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			a.HandleEvent(ev)
		}
	}
}

func (a *Arbiter) silence() {
	if a.audible < 0 {
		return
	}
	a.out.Stop(a.audible)
	a.logger.Debug("note off", "note", NoteName(a.audible))
	a.audible = -1
}

func (a *Arbiter) soundTop() {
	top, ok := a.stack.Top()
	if !ok {
		return
	}
	if note, ok := a.keymap.Note(top); ok {
		a.sound(note)
	}
}

func (a *Arbiter) sound(note int) {
	a.out.Start(note)
	a.audible = note
	a.logger.Debug("note on", "note", NoteName(note), "held", a.stack.Len())
}
