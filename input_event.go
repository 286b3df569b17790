// input_event.go - Decoded key/button events and the source interface

package main

import (
	"context"
	"fmt"
	"sync/atomic"
)

// KeyCode is a normalized scan code in [0, MAX_KEY_CODES). Mouse buttons
// occupy CODE_MOUSE_LEFT and CODE_MOUSE_RIGHT.
type KeyCode uint8

type EventKind int

const (
	EventPress EventKind = iota
	EventRelease
)

func (k EventKind) String() string {
	switch k {
	case EventPress:
		return "press"
	case EventRelease:
		return "release"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

type InputEvent struct {
	Code KeyCode
	Kind EventKind
}

func Press(code KeyCode) InputEvent   { return InputEvent{Code: code, Kind: EventPress} }
func Release(code KeyCode) InputEvent { return InputEvent{Code: code, Kind: EventRelease} }

// InputSource delivers decoded, repeat-free press/release events into
// queue. Listen blocks until ctx is cancelled or the source fails. The quit
// code never reaches the queue; it is reported through the source's quit
// callback.
type InputSource interface {
	Listen(ctx context.Context, queue *EventQueue) error
	Close() error
}

// EventQueue is the bounded hand-off between an input source and the
// arbiter. Offer never blocks the delivering goroutine.
type EventQueue struct {
	ch      chan InputEvent
	dropped atomic.Uint64
}

func NewEventQueue(size int) *EventQueue {
	if size < 1 {
		size = 1
	}
	return &EventQueue{ch: make(chan InputEvent, size)}
}

// Offer enqueues ev, or drops and counts it when the queue is full.
func (q *EventQueue) Offer(ev InputEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

func (q *EventQueue) Events() <-chan InputEvent {
	return q.ch
}

func (q *EventQueue) Dropped() uint64 {
	return q.dropped.Load()
}
