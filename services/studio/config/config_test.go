// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forms.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "localhost:8080" {
		t.Errorf("default addr: %q", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level: %q", cfg.Logging.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("default data dir is empty")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "0.0.0.0:9090"
  debug: true
storage:
  data_dir: "/var/lib/forms"
records:
  base_url: "https://records.example.com"
  timeout_seconds: 30
logging:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9090" || !cfg.Server.Debug {
		t.Errorf("server config: %+v", cfg.Server)
	}
	if cfg.Storage.DataDir != "/var/lib/forms" {
		t.Errorf("data dir: %q", cfg.Storage.DataDir)
	}
	if cfg.Records.BaseURL != "https://records.example.com" || cfg.Records.TimeoutSeconds != 30 {
		t.Errorf("records config: %+v", cfg.Records)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Errorf("logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "localhost:9090"
storage:
  data_dir: "/var/lib/forms"
`)
	t.Setenv(EnvAddr, "localhost:7070")
	t.Setenv(EnvDataDir, "/tmp/forms-data")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "localhost:7070" {
		t.Errorf("env addr override lost: %q", cfg.Server.Addr)
	}
	if cfg.Storage.DataDir != "/tmp/forms-data" {
		t.Errorf("env data dir override lost: %q", cfg.Storage.DataDir)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoad_ValidationRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad addr", "server:\n  addr: \"not-an-address\"\n"},
		{"bad log level", "logging:\n  level: verbose\n"},
		{"bad records url", "records:\n  base_url: \"::notaurl\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			if _, err := Load(path); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoad_InMemoryNeedsNoDataDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  data_dir: ""
  in_memory: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Storage.InMemory {
		t.Error("in-memory flag lost")
	}
}
