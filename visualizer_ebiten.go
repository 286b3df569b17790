//go:build !headless

// visualizer_ebiten.go - Ebiten waveform window

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
	"image/color"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

type EbitenVisualizer struct {
	bridge   *VisBridge
	shutdown *Shutdown
	logger   *slog.Logger
	history  *waveHistory

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewVisualizer(bridge *VisBridge, shutdown *Shutdown, logger *slog.Logger) Visualizer {
	return &EbitenVisualizer{
		bridge:   bridge,
		shutdown: shutdown,
		logger:   logger,
		history:  newWaveHistory(),
	}
}

func (v *EbitenVisualizer) Run() error {
	ebiten.SetWindowSize(VIS_WINDOW_WIDTH, VIS_WINDOW_HEIGHT)
	ebiten.SetWindowPosition(VIS_WINDOW_X, VIS_WINDOW_Y)
	ebiten.SetWindowTitle(VIS_WINDOW_TITLE)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(true)

	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("visualizer: %w", err)
	}
	return nil
}

func (v *EbitenVisualizer) Update() error {
	if ebiten.IsWindowBeingClosed() {
		v.shutdown.Trigger("visualizer window closed")
		return ebiten.Termination
	}
	select {
	case <-v.shutdown.Done():
		return ebiten.Termination
	default:
	}

	if s, ok := v.bridge.Latest(); ok {
		v.history.push(s)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		v.copyLabel()
	}
	return nil
}

// copyLabel puts the audible note name on the clipboard.
func (v *EbitenVisualizer) copyLabel() {
	v.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			v.logger.Warn("clipboard unavailable", "err", err)
			return
		}
		v.clipboardOK = true
	})
	if !v.clipboardOK {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(v.history.label()))
}

func (v *EbitenVisualizer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{10, 10, 16, 255})

	w, h := VIS_WINDOW_WIDTH, VIS_WINDOW_HEIGHT
	mid := float32(h) / 2
	amp := float32(h) * 0.45

	waveColor := color.RGBA{120, 120, 120, 255}
	if v.history.sounding {
		waveColor = color.RGBA{0, 220, 90, 255}
	}
	vector.StrokeLine(screen, 0, mid, float32(w), mid, 1, color.RGBA{40, 40, 50, 255}, false)

	pts := v.history.points(w)
	if len(pts) > 1 {
		dx := float32(w) / float32(len(pts)-1)
		for i := 1; i < len(pts); i++ {
			x0, x1 := dx*float32(i-1), dx*float32(i)
			vector.StrokeLine(screen, x0, mid-pts[i-1]*amp, x1, mid-pts[i]*amp, 1.5, waveColor, true)
		}
	}

	text.Draw(screen, v.history.label(), basicfont.Face7x13, 6, 16, color.RGBA{190, 190, 190, 255})
	legend := "middle click: copy note"
	legendX := max(w-text.BoundString(basicfont.Face7x13, legend).Dx()-6, 6)
	text.Draw(screen, legend, basicfont.Face7x13, legendX, 16, color.RGBA{120, 120, 120, 255})
}

func (v *EbitenVisualizer) Layout(_, _ int) (int, int) {
	return VIS_WINDOW_WIDTH, VIS_WINDOW_HEIGHT
}
