// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config provides configuration loading for the studio service.
//
// Configuration comes from a YAML file with environment overrides for the
// two values deployments most often need to change (listen address and
// data directory). Loaded configs are validated before use.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize is the maximum allowed config file size (1MB).
// Prevents memory issues from a mistyped path pointing at a large file.
const MaxConfigFileSize = 1024 * 1024

// Environment overrides applied after file load.
const (
	EnvAddr    = "FORMS_ADDR"
	EnvDataDir = "FORMS_DATA_DIR"
)

// Config is the full studio service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Records RecordsConfig `yaml:"records"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr" validate:"required,hostname_port"`

	// Debug enables gin debug mode and request logging.
	Debug bool `yaml:"debug"`
}

// StorageConfig configures the draft store.
type StorageConfig struct {
	// DataDir is the BadgerDB directory. Required unless InMemory is set.
	DataDir string `yaml:"data_dir" validate:"required_without=InMemory"`

	// InMemory switches the store to in-memory mode (testing only).
	InMemory bool `yaml:"in_memory"`
}

// RecordsConfig configures the remote record collaborator. An empty
// BaseURL disables publishing to a remote service.
type RecordsConfig struct {
	BaseURL        string `yaml:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"omitempty,min=1"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables file logging when set.
	Dir string `yaml:"dir"`

	// JSON switches stderr output to JSON format.
	JSON bool `yaml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: "localhost:8080"},
		Storage: StorageConfig{DataDir: "~/.aleutianforms/data"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads, overrides, and validates a configuration.
//
// Inputs:
//
//	path - YAML file path. Empty means start from Default().
//
// Outputs:
//
//	Config - The effective configuration.
//	error - Non-nil on unreadable file, invalid YAML, or failed validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return Config{}, fmt.Errorf("stat config %s: %w", path, err)
		}
		if info.Size() > MaxConfigFileSize {
			return Config{}, fmt.Errorf("config %s exceeds %d bytes", path, int64(MaxConfigFileSize))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if addr := os.Getenv(EnvAddr); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.Storage.DataDir = dir
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
