// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/compliance-engine/internal/api"
	"github.com/pdiddy/compliance-engine/internal/blob"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis service",
	Long: `Serve starts the document API. Uploaded documents are acknowledged with a
document id and analyzed in the background; results are persisted to the
configured store and polled through /api/documents/status/{id}.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newEngineApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer records.Close()

	blobs, err := blob.New(ctx, cfg.Upload)
	if err != nil {
		return err
	}

	srv := api.New(api.Options{
		Analyzer:    a.engine,
		Records:     records,
		Blobs:       blobs,
		Config:      cfg.Server,
		MaxFileSize: cfg.Upload.MaxFileSize,
		Version:     version,
		Log:         logger,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
