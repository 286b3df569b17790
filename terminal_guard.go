//go:build unix

// terminal_guard.go - Keep played keys out of the controlling terminal

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalGuard puts stdin in raw mode so that keys played on the global
// keyboard are not echoed or line-buffered into the shell, and discards
// whatever arrives. Ctrl+C no longer raises SIGINT in raw mode, so the 0x03
// byte is turned into a call to onInterrupt instead.
type TerminalGuard struct {
	onInterrupt  func()
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

func NewTerminalGuard(onInterrupt func()) *TerminalGuard {
	return &TerminalGuard{
		onInterrupt: onInterrupt,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start is a no-op returning false when stdin is not a terminal.
func (g *TerminalGuard) Start() (bool, error) {
	g.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(g.fd) {
		close(g.done)
		return false, nil
	}

	oldState, err := term.MakeRaw(g.fd)
	if err != nil {
		close(g.done)
		return false, fmt.Errorf("terminal raw mode: %w", err)
	}
	g.oldTermState = oldState

	if err := syscall.SetNonblock(g.fd, true); err != nil {
		_ = term.Restore(g.fd, g.oldTermState)
		g.oldTermState = nil
		close(g.done)
		return false, fmt.Errorf("terminal nonblocking stdin: %w", err)
	}
	g.nonblockSet = true

	go func() {
		defer close(g.done)
		buf := make([]byte, 64)

		for {
			select {
			case <-g.stopCh:
				return
			default:
			}

			n, err := syscall.Read(g.fd, buf)
			for _, b := range buf[:max(n, 0)] {
				if b == 0x03 && g.onInterrupt != nil {
					g.onInterrupt()
				}
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || n == 0 {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
		}
	}()
	return true, nil
}

// Stop ends the reader and restores the terminal.
func (g *TerminalGuard) Stop() {
	g.stopped.Do(func() {
		close(g.stopCh)
	})
	<-g.done
	if g.nonblockSet {
		_ = syscall.SetNonblock(g.fd, false)
		g.nonblockSet = false
	}
	if g.oldTermState != nil {
		_ = term.Restore(g.fd, g.oldTermState)
		g.oldTermState = nil
	}
}
