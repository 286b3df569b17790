//go:build headless

package main

import "log/slog"

type HeadlessVisualizer struct{}

func NewVisualizer(bridge *VisBridge, shutdown *Shutdown, logger *slog.Logger) Visualizer {
	return HeadlessVisualizer{}
}

func (HeadlessVisualizer) Run() error {
	return ErrVisualizerUnavailable
}
