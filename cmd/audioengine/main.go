/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/audioengine/internal/config"
	"github.com/friendsincode/audioengine/internal/logging"
	"github.com/rs/zerolog"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "audioengine",
	Short: "Browser audio playback engine backend",
	Long: `audioengine hosts the playback/queue/effects façade behind an
authenticated HTTP and WebSocket surface so a thin browser client can
attach, observe state, and drive transport, queue, effects, and visualizer
operations.`,
}

// loadConfig reads environment configuration once per process invocation
// and sets up logging against it, mirroring grimnirradio's cmd_import.go
// pattern of a shared package-level cfg/logger populated by each
// subcommand's RunE before doing any work.
func loadConfig() error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	logger = logging.Setup(cfg.Environment)
	for _, warning := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warning)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
