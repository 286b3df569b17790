// vis_bridge.go - Latest-value snapshot hand-off and the shutdown one-shot

package main

import "sync"

// Snapshot is what the visualizer sees of one rendered audio buffer.
type Snapshot struct {
	Sounding bool
	Note     int // -1 when silent
	Samples  []float32
}

// VisBridge carries snapshots from the audio goroutine to the visualizer.
// Publish never blocks; an unread snapshot is replaced by the newer one.
type VisBridge struct {
	ch chan Snapshot
}

func NewVisBridge() *VisBridge {
	return &VisBridge{ch: make(chan Snapshot, 1)}
}

func (b *VisBridge) Publish(s Snapshot) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		// Slot taken: discard the stale value and retry. If the consumer
		// took it first the next send succeeds.
		select {
		case <-b.ch:
		default:
		}
	}
}

func (b *VisBridge) Snapshots() <-chan Snapshot {
	return b.ch
}

// Latest returns the pending snapshot without blocking.
func (b *VisBridge) Latest() (Snapshot, bool) {
	select {
	case s := <-b.ch:
		return s, true
	default:
		return Snapshot{}, false
	}
}

// Shutdown is a one-shot signal shared by the visualizer window, the quit
// key, the terminal and OS signals.
type Shutdown struct {
	once   sync.Once
	done   chan struct{}
	mu     sync.Mutex
	reason string
}

func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Trigger records the first reason and closes Done. Later calls are no-ops.
func (s *Shutdown) Trigger(reason string) {
	s.once.Do(func() {
		s.mu.Lock()
		s.reason = reason
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}

func (s *Shutdown) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}
