/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/audioengine/internal/db"
	"github.com/friendsincode/audioengine/internal/settings"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the settings database schema migration",
	Long: `migrate applies the settings store's schema (the temp-queue
snapshot table) to the configured relational database. It is a no-op when
AUDIOENGINE_OBJECT_STORAGE_URL selects the S3-backed structured store
instead, since that backend requires no schema.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return err
	}

	if cfg.ObjectStorageURL != "" {
		logger.Info().Msg("object storage backend selected, no schema migration needed")
		return nil
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close(gormDB)

	if err := gormDB.AutoMigrate(&settings.TempQueueRecord{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	logger.Info().Str("backend", string(cfg.DBBackend)).Msg("settings database migrated")
	return nil
}
