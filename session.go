// session.go - Owns the instrument's resources and runs it until shutdown

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

var ErrShutdownTimeout = errors.New("input source did not stop in time")

// AudioSink is the audio backend: it pulls PCM from the source it is given.
type AudioSink interface {
	SetupPlayer(source io.Reader)
	Start()
	Close()
}

type SessionConfig struct {
	Keymap    *Keymap
	Wave      WaveShape
	Release   ReleaseMode
	Visualize bool
}

// SessionDeps opens the platform collaborators. Tests replace them.
type SessionDeps struct {
	OpenAudio  func() (AudioSink, error)
	OpenInput  func(onQuit func()) (InputSource, error)
	ForceExit  func(code int)
	// BeforeExit runs ahead of ForceExit, which skips deferred cleanup.
	BeforeExit func()
	Grace      time.Duration
}

func DefaultSessionDeps(logger *slog.Logger) SessionDeps {
	return SessionDeps{
		OpenAudio: func() (AudioSink, error) {
			player, err := NewOtoPlayer(SAMPLE_RATE)
			if err != nil {
				return nil, err
			}
			return player, nil
		},
		OpenInput: func(onQuit func()) (InputSource, error) {
			src, err := NewX11InputSource(onQuit, logger)
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		ForceExit: os.Exit,
		Grace:     SHUTDOWN_GRACE,
	}
}

type Session struct {
	cfg    SessionConfig
	deps   SessionDeps
	logger *slog.Logger

	table    *WaveformTable
	renderer *AudioRenderer
	bridge   *VisBridge
	audio    AudioSink
	input    InputSource
	queue    *EventQueue
	arbiter  *Arbiter
	shutdown *Shutdown
}

// OpenSession builds the waveform table and acquires the audio device and
// input source. Any failure releases what was already acquired.
func OpenSession(ctx context.Context, cfg SessionConfig, deps SessionDeps, logger *slog.Logger) (*Session, error) {
	if cfg.Keymap == nil {
		return nil, errors.New("session: no keymap")
	}
	if deps.Grace <= 0 {
		deps.Grace = SHUTDOWN_GRACE
	}
	if deps.ForceExit == nil {
		deps.ForceExit = os.Exit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Session{
		cfg:      cfg,
		deps:     deps,
		logger:   logger,
		queue:    NewEventQueue(EVENT_QUEUE_SIZE),
		shutdown: NewShutdown(),
	}
	if cfg.Visualize {
		s.bridge = NewVisBridge()
	}

	start := time.Now()
	table, err := NewWaveformTable(ctx, cfg.Keymap.NoteCount(), cfg.Wave)
	if err != nil {
		return nil, err
	}
	s.table = table
	logger.Info("waveform table ready", "notes", table.Len(), "wave", table.Shape(), "elapsed", time.Since(start).Round(time.Millisecond))

	s.renderer = NewAudioRenderer(table, s.bridge)
	s.arbiter = NewArbiter(cfg.Keymap, s.renderer, cfg.Release, logger)

	s.audio, err = deps.OpenAudio()
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s.audio.SetupPlayer(s.renderer)

	s.input, err = deps.OpenInput(func() { s.shutdown.Trigger("quit key") })
	if err != nil {
		s.audio.Close()
		return nil, fmt.Errorf("session: %w", err)
	}
	return s, nil
}

func (s *Session) Shutdown() *Shutdown {
	return s.shutdown
}

func (s *Session) Bridge() *VisBridge {
	return s.bridge
}

func (s *Session) Renderer() *AudioRenderer {
	return s.renderer
}

// Run plays until shutdown is triggered, ctx is cancelled or the input
// source fails. Stopping the input source is bounded by the grace period;
// past it the process is terminated through ForceExit.
func (s *Session) Run(ctx context.Context) error {
	s.audio.Start()

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	arbCtx, cancelArb := context.WithCancel(context.Background())
	defer cancelArb()

	listenDone := make(chan error, 1)
	go func() {
		listenDone <- s.input.Listen(inputCtx, s.queue)
	}()
	arbDone := make(chan error, 1)
	go func() {
		arbDone <- s.arbiter.Run(arbCtx, s.queue.Events())
	}()

	s.logger.Info("listening", "keymap", s.cfg.Keymap.Name, "keys", s.cfg.Keymap.Mapped(), "release", s.arbiter.Mode())

	var listenErr error
	listenReturned := false
	select {
	case <-s.shutdown.Done():
	case <-ctx.Done():
		s.shutdown.Trigger("context cancelled")
	case listenErr = <-listenDone:
		listenReturned = true
		s.shutdown.Trigger("input source stopped")
	}
	s.logger.Info("shutting down", "reason", s.shutdown.Reason())

	cancelInput()
	if !listenReturned {
		stopped := make(chan error, 1)
		go func() {
			err := <-listenDone
			if cerr := s.input.Close(); err == nil {
				err = cerr
			}
			stopped <- err
		}()
		select {
		case listenErr = <-stopped:
		case <-time.After(s.deps.Grace):
			s.logger.Error("forcing exit", "err", ErrShutdownTimeout, "grace", s.deps.Grace)
			if s.deps.BeforeExit != nil {
				s.deps.BeforeExit()
			}
			s.deps.ForceExit(1)
			return ErrShutdownTimeout
		}
	}

	cancelArb()
	<-arbDone
	if dropped := s.queue.Dropped(); dropped > 0 {
		s.logger.Warn("input events dropped", "count", dropped)
	}
	return listenErr
}

// Close releases the audio device and input connection. Safe after Run.
func (s *Session) Close() {
	s.renderer.StopAll()
	if s.audio != nil {
		s.audio.Close()
	}
	if s.input != nil {
		_ = s.input.Close()
	}
}
