package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bake.log")

	// lumberjack's smallest MaxSize is 1MB.
	log := New(Options{Level: "debug", File: FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2}})
	padding := strings.Repeat("x", 200)
	for i := 0; i < 6000; i++ {
		log.Info("texel row", zap.Int("row", i), zap.String("padding", padding))
	}
	_ = log.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	var rotated int
	for _, e := range entries {
		name := e.Name()
		if name == "bake.log" {
			continue
		}
		if strings.HasPrefix(name, "bake-") && strings.HasSuffix(name, ".log") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files in %v", entries)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("current log file missing: %v", err)
	}
}

func TestFileEntriesAreJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.log")
	log := New(Options{Level: "info", File: DefaultFileConfig(path)})
	log.Named("brushtool").Info("map loaded", zap.Int("solids", 4))
	_ = log.Sync()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatal("log file is empty")
	}
	var entry map[string]any
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v (%s)", err, sc.Text())
	}
	if entry["msg"] != "map loaded" || entry["logger"] != "brushtool" || entry["level"] != "INFO" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["solids"] != float64(4) {
		t.Errorf("solids field = %v, want 4", entry["solids"])
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Options{Level: tt.level, Console: &buf})
			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")
			log.Error("error message")
			_ = log.Sync()

			out := buf.String()
			for _, exp := range tt.expected {
				if !strings.Contains(out, exp) {
					t.Errorf("expected %s in output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(out, exc) {
					t.Errorf("unexpected %s in output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Console: &buf})
	log.Named("lightmap").Warn("bake failed", zap.Int("faces", 3))
	_ = log.Sync()

	out := buf.String()
	for _, want := range []string{"bake failed", "lightmap", "faces"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNewWithoutOutputs(t *testing.T) {
	log := New(Options{Level: "debug"})
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should discard everything")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInitReplacesGlobal(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	// Usable before Init.
	Named("picking").Info("ignored")

	var buf bytes.Buffer
	Init(Options{Level: "info", Console: &buf})
	Named("picking").Info("scene indexed")
	Sync()
	if !strings.Contains(buf.String(), "scene indexed") {
		t.Errorf("global logger did not write: %q", buf.String())
	}
}
