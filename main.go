// main.go - Command line entry point

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
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/denizsincar29/goerror"
)

var bannerLines = []string{
	`██╗  ██╗███████╗██╗   ██╗████████╗ ██████╗ ███╗   ██╗███████╗`,
	`██║ ██╔╝██╔════╝╚██╗ ██╔╝╚══██╔══╝██╔═══██╗████╗  ██║██╔════╝`,
	`█████╔╝ █████╗   ╚████╔╝    ██║   ██║   ██║██╔██╗ ██║█████╗  `,
	`██╔═██╗ ██╔══╝    ╚██╔╝     ██║   ██║   ██║██║╚██╗██║██╔══╝  `,
	`██║  ██╗███████╗   ██║      ██║   ╚██████╔╝██║ ╚████║███████╗`,
	`╚═╝  ╚═╝╚══════╝   ╚═╝      ╚═╝    ╚═════╝ ╚═╝  ╚═══╝╚══════╝`,
}

func boilerPlate() {
	fmt.Println()
	for i, line := range bannerLines {
		g := 20 + i*45
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#FF%02X93", g)))
		fmt.Println(style.Render(line))
	}
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	fmt.Println("\nYour keyboard is a monophonic synthesizer. Hold keys to play, Esc to quit.")
	fmt.Println(dim.Render("(c) 2026 KeyTone contributors"))
	fmt.Println(dim.Render("License: GPLv3 or later"))
	fmt.Println()
}

func main() {
	boilerPlate()

	var (
		visualize   bool
		debug       bool
		keymapName  string
		keymapFile  string
		waveName    string
		releaseName string
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&visualize, "vis", false, "Show the waveform visualizer")
	flagSet.BoolVar(&debug, "debug", false, "Log every note change")
	flagSet.StringVar(&keymapName, "keymap", "raw", "Built-in keymap: "+strings.Join(BuiltinKeymapNames(), ", "))
	flagSet.StringVar(&keymapFile, "keymap-file", "", "Lua keymap script (overrides -keymap)")
	flagSet.StringVar(&waveName, "wave", "sine", "Wave shape: sine, square, triangle, sawtooth")
	flagSet.StringVar(&releaseName, "release", "promote", "Release handling: promote, top-only")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./keytone [-vis] [-keymap raw|us|piano] [-keymap-file map.lua] [-wave sine] [-release promote] [-debug]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	wave, err := ParseWaveShape(waveName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	release, err := ParseReleaseMode(releaseName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger := NewLogger(os.Stderr, debug)
	e := goerror.NewError(logger)

	var keymap *Keymap
	if keymapFile != "" {
		keymap, err = LoadKeymapScript(keymapFile)
	} else {
		keymap, err = BuiltinKeymap(keymapName)
	}
	e.Must(err, "Failed to load keymap")
	if release == RELEASE_TOP_ONLY {
		logger.Warn("top-only release mode: releasing any key releases the newest one")
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	var session *Session
	guard := NewTerminalGuard(func() {
		session.Shutdown().Trigger("ctrl+c")
	})
	deps := DefaultSessionDeps(logger)
	deps.BeforeExit = guard.Stop

	session, err = OpenSession(ctx, SessionConfig{
		Keymap:    keymap,
		Wave:      wave,
		Release:   release,
		Visualize: visualize,
	}, deps, logger)
	e.Must(err, "Failed to initialize")

	if _, err := guard.Start(); err != nil {
		logger.Warn("terminal left in cooked mode", "err", err)
	}

	runDone := make(chan error, 1)
	go func() {
		runDone <- session.Run(ctx)
	}()

	// The window must own the main goroutine. A failing visualizer only
	// disables itself; the instrument keeps running until shutdown.
	if visualize {
		vis := NewVisualizer(session.Bridge(), session.Shutdown(), logger)
		if err := vis.Run(); err != nil {
			logger.Warn("visualizer disabled", "err", err)
		}
	}

	err = <-runDone
	guard.Stop()
	session.Close()
	if err != nil {
		logger.Error("stopped with error", "err", err)
		stopSignals()
		os.Exit(1)
	}
}
