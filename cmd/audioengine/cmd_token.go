/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/friendsincode/audioengine/internal/auth"
)

var tokenSessionID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a session, for local testing",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSessionID, "session", "", "session id the token is scoped to (required)")
	tokenCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return err
	}

	claims := auth.Claims{SessionID: tokenSessionID, Scopes: []string{"session"}}
	token, err := auth.Issue([]byte(cfg.JWTSigningKey), claims, cfg.AttachTokenTTL)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
