//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

/*
██╗  ██╗███████╗██╗   ██╗████████╗ ██████╗ ███╗   ██╗███████╗
██║ ██╔╝██╔════╝╚██╗ ██╔╝╚══██╔══╝██╔═══██╗████╗  ██║██╔════╝
█████╔╝ █████╗   ╚████╔╝    ██║   ██║   ██║██╔██╗ ██║█████╗
██╔═██╗ ██╔══╝    ╚██╔╝     ██║   ██║   ██║██║╚██╗██║██╔══╝
██║  ██╗███████╗   ██║      ██║   ╚██████╔╝██║ ╚████║███████╗
╚═╝  ╚═╝╚══════╝   ╚═╝      ╚═╝    ╚═════╝ ╚═╝  ╚═══╝╚══════╝

(c) 2026 KeyTone contributors
https://github.com/intuitionamiga/KeyTone
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

type OtoPlayer struct {
	ctx     *oto.Context
	player  *oto.Player
	source  atomic.Pointer[io.Reader] // Atomic for lock-free Read()
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

// NewOtoPlayer opens the default output device for 16-bit stereo PCM.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: CHANNEL_COUNT,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   20 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio device: %w", err)
	}
	<-ready

	return &OtoPlayer{
		ctx: ctx,
	}, nil
}

func (op *OtoPlayer) SetupPlayer(source io.Reader) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.source.Store(&source)
	op.player = op.ctx.NewPlayer(op)
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	// Load source pointer atomically - no lock needed for the hot path
	src := op.source.Load()
	if src == nil {
		clear(p)
		return len(p), nil
	}
	return (*src).Read(p)
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		_ = op.player.Close()
		op.player = nil
	}
	op.source.Store(nil)
}
