package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/go-xpbd/pkg/config"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", nil, false},
		{"terminal", []string{"-renderer", "terminal", "-cols", "80", "-rows", "24"}, false},
		{"engo", []string{"-renderer", "engo", "-width", "800", "-height", "600"}, false},
		{"unknown renderer", []string{"-renderer", "vulkan"}, true},
		{"zero fps", []string{"-fps", "0"}, true},
		{"negative frames", []string{"-frames", "-1"}, true},
		{"bad flag", []string{"-nope"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestRun_Headless(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.json")
	args := []string{"-config", missing, "-frames", "30"}

	if err := run(context.Background(), args, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRun_Terminal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	args := []string{
		"-config", missing,
		"-renderer", "terminal",
		"-frames", "2",
		"-fps", "1000",
		"-cols", "20",
		"-rows", "10",
	}

	var out bytes.Buffer
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	border := "+" + strings.Repeat("-", 20) + "+"
	if got := strings.Count(out.String(), border); got != 4 {
		t.Errorf("found %d frame borders, want 4 for two frames", got)
	}
	if !strings.Contains(out.String(), "#") {
		t.Error("terminal frames do not show the static ground")
	}
}

func TestRun_CreateDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")

	if err := run(context.Background(), []string{"-default", "-config", path}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run(-default) error = %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("written config differs from the defaults: %+v", *cfg)
	}

	if err := run(context.Background(), []string{"-config", path, "-frames", "5"}, &bytes.Buffer{}); err != nil {
		t.Errorf("run() with the written config error = %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"zero substeps", `{"physics": {"substeps": 0}}`, "physics.substeps"},
		{"malformed", `{"physics": `, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "world.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			err := run(context.Background(), []string{"-config", path, "-frames", "1"}, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	missing := filepath.Join(t.TempDir(), "missing.json")
	if err := run(ctx, []string{"-config", missing, "-frames", "0"}, &bytes.Buffer{}); err != nil {
		t.Errorf("run() error = %v", err)
	}
}
