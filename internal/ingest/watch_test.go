package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JohnReedLOL/killrweather/pkg/log"
)

func TestWatchFeeder_FeedsFilesCreatedAfterInitialLoad(t *testing.T) {
	dir := t.TempDir()
	initial := writeSource(t, dir, "initial.csv", "i1\n")

	target := &collectingTarget{}
	feeder := NewFeeder([]string{initial}, "raw", "grp", target, log.NewNoopLogger())
	w := NewWatchFeeder(feeder, dir, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()

	// Wait for the initial feed before dropping a new file in.
	waitForRecords(t, target, 1)
	writeSource(t, dir, "late.csv", "l1\nl2\n")
	waitForRecords(t, target, 3)

	got := target.payloads()
	want := []string{"i1", "l1", "l2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	cancel()
	select {
	case err := <-runDone:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatchFeeder_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()

	target := &collectingTarget{}
	feeder := NewFeeder(nil, "raw", "grp", target, log.NewNoopLogger())
	w := NewWatchFeeder(feeder, dir, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- w.Run(ctx) }()

	// Give the watcher a moment to register before the writes.
	time.Sleep(200 * time.Millisecond)
	writeSource(t, dir, ".hidden.csv", "h1\n")
	writeSource(t, dir, "visible.csv", "v1\n")

	waitForRecords(t, target, 1)
	if got := target.payloads(); got[0] != "v1" {
		t.Errorf("payloads = %v, want [v1]", got)
	}

	cancel()
	<-runDone
}

func waitForRecords(t *testing.T, target *collectingTarget, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(target.payloads()) >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d records, have %v", n, target.payloads())
}
