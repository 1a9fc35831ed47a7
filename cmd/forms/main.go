// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command forms starts the AleutianForms studio API server.
//
// The studio service exposes the questionnaire authoring core over HTTP:
// draft CRUD, tree mutations at any branch depth, aggregation, the
// pre-publish validator, envelope import/export, and the validation-gated
// publish flow.
//
// Usage:
//
//	go run ./cmd/forms serve
//	go run ./cmd/forms serve --config forms.yaml
//	go run ./cmd/forms export questionnaire.json > envelope.json
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/studio/health
//
//	# Create a draft
//	curl -X POST http://localhost:8080/v1/studio/questionnaires \
//	  -H "Content-Type: application/json" \
//	  -d '{"name": "Onboarding Survey"}'
//
//	# Validate before publish
//	curl -X POST http://localhost:8080/v1/studio/questionnaires/<id>/validate
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForms/pkg/logging"
	"github.com/AleutianAI/AleutianForms/services/studio"
	"github.com/AleutianAI/AleutianForms/services/studio/config"
	"github.com/AleutianAI/AleutianForms/services/studio/records"
	badgerstore "github.com/AleutianAI/AleutianForms/services/studio/storage/badger"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "forms",
		Short:         "AleutianForms questionnaire studio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the studio API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg config.Config) error {
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "studio",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()

	dbCfg := badgerstore.DefaultConfig(cfg.Storage.DataDir)
	if cfg.Storage.InMemory {
		dbCfg = badgerstore.InMemoryConfig()
	}
	dbCfg.Logger = logger.Slog()
	db, err := badgerstore.Open(dbCfg)
	if err != nil {
		return fmt.Errorf("open draft store: %w", err)
	}
	defer db.Close()

	store := badgerstore.NewStore(db, logger.Slog())

	var recordClient studio.RecordClient
	if cfg.Records.BaseURL != "" {
		recordClient = records.NewClient(
			cfg.Records.BaseURL,
			time.Duration(cfg.Records.TimeoutSeconds)*time.Second,
			logger.Slog(),
		)
		logger.Info("record service configured", "base_url", cfg.Records.BaseURL)
	} else {
		logger.Warn("no record service configured; publish will be unavailable")
	}

	svc := studio.NewService(studio.DefaultServiceConfig(), store, recordClient, logger.Slog())
	handlers := studio.NewHandlers(svc)

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	studio.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down studio server")
		os.Exit(0)
	}()

	logger.Info("starting studio server", "address", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <questionnaire.json>",
		Short: "Wrap a questionnaire file in the versioned export envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var q studio.Questionnaire
			if err := json.Unmarshal(data, &q); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			payload, err := studio.Export(q, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return nil
		},
	}
}
