package diag

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStopwatchPhaseRecordsElapsedTime(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStopwatch(&buf)

	if err := sw.Phase("parsing", func() error { return nil }); err != nil {
		t.Fatalf("Phase returned error: %v", err)
	}

	sw.Report()
	out := buf.String()
	if !strings.Contains(out, "parsing") {
		t.Errorf("Report output %q does not mention phase name", out)
	}
}

func TestStopwatchPhasePropagatesError(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStopwatch(&buf)

	wantErr := errors.New("boom")
	err := sw.Phase("closure", func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}

	sw.Report()
	if !strings.Contains(buf.String(), "closure") {
		t.Error("failed phase should still be recorded and reported")
	}
}

func TestStopwatchReportsMultiplePhasesInOrder(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStopwatch(&buf)

	_ = sw.Phase("parsing", func() error { return nil })
	_ = sw.Phase("axioms", func() error { return nil })
	_ = sw.Phase("closure", func() error { return nil })

	sw.Report()
	out := buf.String()

	parsingIdx := strings.Index(out, "parsing")
	axiomsIdx := strings.Index(out, "axioms")
	closureIdx := strings.Index(out, "closure")

	if parsingIdx == -1 || axiomsIdx == -1 || closureIdx == -1 {
		t.Fatalf("expected all three phases in output, got %q", out)
	}
	if !(parsingIdx < axiomsIdx && axiomsIdx < closureIdx) {
		t.Errorf("expected phases reported in recorded order, got %q", out)
	}
}

func TestStopwatchReportWithNoPhasesWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStopwatch(&buf)

	sw.Report()
	if buf.Len() != 0 {
		t.Errorf("expected empty output with no recorded phases, got %q", buf.String())
	}
}

func TestNewLoggerWritesWithGrdfsPrefix(t *testing.T) {
	l := New()
	if l == nil || l.Logger == nil {
		t.Fatal("New returned a nil logger")
	}
	if got := l.Prefix(); got != "grdfs: " {
		t.Fatalf("Prefix() = %q, want %q", got, "grdfs: ")
	}
}
