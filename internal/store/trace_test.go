package store

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestTraceWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	entries := []TraceEntry{
		{Evals: 10, BestSum: 0.5, Phase: "init", Timestamp: time.Now()},
		{Evals: 100, BestSum: 1.2, Phase: "anneal", Timestamp: time.Now()},
		{Evals: 500, BestSum: 1.4, Phase: "relax", Timestamp: time.Now()},
	}
	for _, e := range entries {
		if err := tw.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()

	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("read %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i].Evals != entries[i].Evals || got[i].BestSum != entries[i].BestSum || got[i].Phase != entries[i].Phase {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestTraceAppendMode(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewTraceWriter(dir, "job-1", false)
	if err != nil {
		t.Fatalf("NewTraceWriter failed: %v", err)
	}
	tw.Write(TraceEntry{Evals: 1, BestSum: 0.1, Timestamp: time.Now()})
	tw.Close()

	tw, err = NewTraceWriter(dir, "job-1", true)
	if err != nil {
		t.Fatalf("NewTraceWriter append failed: %v", err)
	}
	tw.Write(TraceEntry{Evals: 2, BestSum: 0.2, Timestamp: time.Now()})
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()
	got, err := tr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
}

func TestTraceTruncateMode(t *testing.T) {
	dir := t.TempDir()

	tw, _ := NewTraceWriter(dir, "job-1", false)
	tw.Write(TraceEntry{Evals: 1, BestSum: 0.1, Timestamp: time.Now()})
	tw.Close()

	tw, _ = NewTraceWriter(dir, "job-1", false)
	tw.Write(TraceEntry{Evals: 2, BestSum: 0.2, Timestamp: time.Now()})
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()
	got, _ := tr.ReadAll()
	if len(got) != 1 || got[0].Evals != 2 {
		t.Errorf("expected only the second entry, got %+v", got)
	}
}

func TestTraceReaderMissing(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTraceReadEOF(t *testing.T) {
	dir := t.TempDir()
	tw, _ := NewTraceWriter(dir, "job-1", false)
	tw.Close()

	tr, err := NewTraceReader(dir, "job-1")
	if err != nil {
		t.Fatalf("NewTraceReader failed: %v", err)
	}
	defer tr.Close()
	if _, err := tr.Read(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
