package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	// Nil receiver is a no-op.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.WriteLevelResult(LevelResult{}); err != nil {
		t.Errorf("WriteLevelResult on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 2; i++ {
		if err := om.WriteLevelResult(LevelResult{Level: "meadow", Attempt: i, Outcome: "game_over", Reason: "out_of_time"}); err != nil {
			t.Fatalf("WriteLevelResult: %v", err)
		}
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 300, Level: "meadow", Tamed: 3}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "levels.csv"))
	if err != nil {
		t.Fatalf("reading levels.csv: %v", err)
	}
	if n := strings.Count(string(raw), "level,attempt"); n != 1 {
		t.Errorf("header written %d times, want 1", n)
	}

	var results []LevelResult
	if err := gocsv.UnmarshalBytes(raw, &results); err != nil {
		t.Fatalf("unmarshal levels.csv: %v", err)
	}
	if len(results) != 2 || results[1].Attempt != 2 {
		t.Errorf("results = %+v", results)
	}

	var windows []WindowStats
	f, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("open telemetry.csv: %v", err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &windows); err != nil {
		t.Fatalf("unmarshal telemetry.csv: %v", err)
	}
	if len(windows) != 1 || windows[0].Tamed != 3 || windows[0].Level != "meadow" {
		t.Errorf("windows = %+v", windows)
	}
}
