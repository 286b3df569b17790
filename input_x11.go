// input_x11.go - Global key and mouse button capture by polling the X server

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// X11InputSource polls the server-wide key bitmap and pointer button mask
// and emits the differences as events. Polling sees state, not key events,
// so auto-repeat never shows up as a second press.
type X11InputSource struct {
	conn     *xgb.Conn
	root     xproto.Window
	interval time.Duration
	onQuit   func()
	logger   *slog.Logger

	keys    [32]byte
	buttons uint16
	primed  bool

	closeOnce sync.Once
}

// NewX11InputSource connects to $DISPLAY. onQuit is called from the
// listening goroutine when CODE_QUIT is pressed.
func NewX11InputSource(onQuit func(), logger *slog.Logger) (*X11InputSource, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11 display: %w", err)
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &X11InputSource{
		conn:     conn,
		root:     screen.Root,
		interval: KEYPRESS_INTERVAL,
		onQuit:   onQuit,
		logger:   logger,
	}, nil
}

func (s *X11InputSource) Listen(ctx context.Context, queue *EventQueue) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	emit := func(ev InputEvent) {
		if ev.Code == CODE_QUIT {
			if ev.Kind == EventPress && s.onQuit != nil {
				s.onQuit()
			}
			return
		}
		if !queue.Offer(ev) {
			s.logger.Warn("input queue full, event dropped", "code", ev.Code, "kind", ev.Kind)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := s.poll(emit); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (s *X11InputSource) poll(emit func(InputEvent)) error {
	km, err := xproto.QueryKeymap(s.conn).Reply()
	if err != nil {
		return fmt.Errorf("x11 query keymap: %w", err)
	}
	ptr, err := xproto.QueryPointer(s.conn, s.root).Reply()
	if err != nil {
		return fmt.Errorf("x11 query pointer: %w", err)
	}

	var keys [32]byte
	copy(keys[:], km.Keys)

	// Keys already down when capture starts are not reported.
	if !s.primed {
		s.keys, s.buttons, s.primed = keys, ptr.Mask, true
		return nil
	}

	diffKeyBitmap(s.keys, keys, emit)
	diffButtonMask(s.buttons, ptr.Mask, emit)
	s.keys, s.buttons = keys, ptr.Mask
	return nil
}

func (s *X11InputSource) Close() error {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
	return nil
}

// diffKeyBitmap emits releases, then presses, for every X keycode whose bit
// changed. X keycodes below X11_KEYCODE_BASE do not exist.
func diffKeyBitmap(prev, cur [32]byte, emit func(InputEvent)) {
	for _, kind := range [...]EventKind{EventRelease, EventPress} {
		for i := range cur {
			changed := prev[i] ^ cur[i]
			if changed == 0 {
				continue
			}
			for bit := range 8 {
				mask := byte(1) << bit
				if changed&mask == 0 {
					continue
				}
				down := cur[i]&mask != 0
				if down != (kind == EventPress) {
					continue
				}
				keycode := i*8 + bit
				if keycode < X11_KEYCODE_BASE {
					continue
				}
				emit(InputEvent{Code: KeyCode(keycode - X11_KEYCODE_BASE), Kind: kind})
			}
		}
	}
}

var pointerButtons = [...]struct {
	mask uint16
	code KeyCode
}{
	{xproto.KeyButMaskButton1, CODE_MOUSE_LEFT},
	{xproto.KeyButMaskButton3, CODE_MOUSE_RIGHT},
}

func diffButtonMask(prev, cur uint16, emit func(InputEvent)) {
	for _, b := range pointerButtons {
		was, is := prev&b.mask != 0, cur&b.mask != 0
		switch {
		case was && !is:
			emit(Release(b.code))
		case !was && is:
			emit(Press(b.code))
		}
	}
}
