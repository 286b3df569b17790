//go:build !unix

package main

type TerminalGuard struct{}

func NewTerminalGuard(onInterrupt func()) *TerminalGuard {
	return &TerminalGuard{}
}

func (g *TerminalGuard) Start() (bool, error) {
	return false, nil
}

func (g *TerminalGuard) Stop() {}
