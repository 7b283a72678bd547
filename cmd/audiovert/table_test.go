package main

import (
	"strings"
	"testing"

	"audiovert/internal/execute"
)

func TestRenderSummary(t *testing.T) {
	out := renderSummary(execute.Summary{Planned: 4, Completed: 3, Failed: 1, Trashed: 2})
	for _, want := range []string{"Tasks", "Planned", "Completed", "Failed", "Trashed", "╭"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if renderTable(nil, [][]string{{"x"}}, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestConditionsFlagKeepsOrder(t *testing.T) {
	var f conditionsFlag
	if err := f.Set("flac=ogg"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("lossless=mp3,same"); err != nil {
		t.Fatal(err)
	}
	if len(f.values) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(f.values))
	}
	if f.String() != "flac=ogg,lossless=mp3,same" {
		t.Fatalf("unexpected rendering %q", f.String())
	}
	if err := f.Set("bogus=mp3"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBitratesFlag(t *testing.T) {
	var f bitratesFlag
	if err := f.Set("mp3=256,lossy=0"); err != nil {
		t.Fatal(err)
	}
	if len(f.values) != 2 || f.values[0].Kbps != 256 {
		t.Fatalf("unexpected rules %v", f.values)
	}
}
