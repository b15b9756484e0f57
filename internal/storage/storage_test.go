package storage

import (
	"testing"
	"time"
)

func TestPreferencesRoundTrip(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	defer store.Close()

	// First load returns defaults
	prefs, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences failed: %v", err)
	}
	if prefs.DefaultDepth != 5 {
		t.Errorf("default depth = %d, want 5", prefs.DefaultDepth)
	}

	prefs.DefaultDepth = 7
	if err := store.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}

	loaded, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences failed: %v", err)
	}
	if loaded.DefaultDepth != 7 {
		t.Errorf("loaded depth = %d, want 7", loaded.DefaultDepth)
	}
}

func TestRecordSearchAccumulates(t *testing.T) {
	store, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	defer store.Close()

	if err := store.RecordSearch(5, 1000, 100*time.Millisecond); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}
	if err := store.RecordSearch(7, 5000, 400*time.Millisecond); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}

	stats, err := store.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}

	if stats.Searches != 2 {
		t.Errorf("searches = %d, want 2", stats.Searches)
	}
	if stats.Nodes != 6000 {
		t.Errorf("nodes = %d, want 6000", stats.Nodes)
	}
	if stats.DeepestDepth != 7 {
		t.Errorf("deepest depth = %d, want 7", stats.DeepestDepth)
	}
	if stats.TotalTime != 500*time.Millisecond {
		t.Errorf("total time = %v, want 500ms", stats.TotalTime)
	}
	if nps := stats.NodesPerSecond(); nps != 12000 {
		t.Errorf("nodes per second = %.0f, want 12000", nps)
	}
	if stats.LastSearch.IsZero() {
		t.Error("last search time not recorded")
	}
}

func TestStatsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenAt(dir)
	if err != nil {
		t.Fatalf("OpenAt failed: %v", err)
	}
	if err := store.RecordSearch(4, 250, 50*time.Millisecond); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenAt(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	stats, err := reopened.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if stats.Searches != 1 || stats.Nodes != 250 {
		t.Errorf("stats after reopen = %+v, want 1 search with 250 nodes", stats)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store

	if err := store.SavePreferences(DefaultPreferences()); err != nil {
		t.Errorf("nil store SavePreferences: %v", err)
	}
	if err := store.RecordSearch(3, 10, time.Millisecond); err != nil {
		t.Errorf("nil store RecordSearch: %v", err)
	}
	prefs, err := store.LoadPreferences()
	if err != nil || prefs.DefaultDepth != 5 {
		t.Errorf("nil store LoadPreferences = %+v, %v", prefs, err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("nil store Close: %v", err)
	}
}
