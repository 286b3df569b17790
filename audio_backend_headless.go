//go:build headless

package main

import (
	"io"
	"sync"
	"time"
)

// OtoPlayer without an audio device: Start pulls from the source at the
// real-time rate and discards the PCM, so the renderer and visualizer still
// run.
type OtoPlayer struct {
	mutex   sync.Mutex
	source  io.Reader
	started bool
	stop    chan struct{}
	done    chan struct{}
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(source io.Reader) {
	op.mutex.Lock()
	op.source = source
	op.mutex.Unlock()
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	op.mutex.Lock()
	src := op.source
	op.mutex.Unlock()
	if src == nil {
		clear(p)
		return len(p), nil
	}
	return src.Read(p)
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	if op.started {
		return
	}
	op.started = true
	op.stop = make(chan struct{})
	op.done = make(chan struct{})
	go op.drain(op.stop, op.done)
}

func (op *OtoPlayer) drain(stop, done chan struct{}) {
	defer close(done)
	buf := make([]byte, SAMPLE_RATE/100*BYTES_PER_FRAME)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_, _ = op.Read(buf)
		}
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	if !op.started {
		op.mutex.Unlock()
		return
	}
	op.started = false
	stop, done := op.stop, op.done
	op.mutex.Unlock()
	close(stop)
	<-done
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	op.source = nil
	op.mutex.Unlock()
}
