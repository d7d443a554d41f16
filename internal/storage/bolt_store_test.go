package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestBoltStoreTracksDigestChanges(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "snapshots.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	changed, err := store.Changed("versions", "d1")
	if err != nil || !changed {
		t.Fatalf("expected unknown watch to be changed, changed=%v err=%v", changed, err)
	}

	if err := store.Record("versions", "d1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	changed, err = store.Changed("versions", "d1")
	if err != nil || changed {
		t.Fatalf("expected same digest to be unchanged, changed=%v err=%v", changed, err)
	}

	changed, err = store.Changed("versions", "d2")
	if err != nil || !changed {
		t.Fatalf("expected new digest to be changed, changed=%v err=%v", changed, err)
	}
}

func TestBoltStoreExpiresRecords(t *testing.T) {
	opts := Options{
		SnapshotTTL:     1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "cache.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.Record("ids", "d1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	changed, err := store.Changed("ids", "d1")
	if err != nil {
		t.Fatalf("Changed after expiry: %v", err)
	}
	if !changed {
		t.Fatalf("expected record to expire and be removed")
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	first, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := first.Record("v2", "abc"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	changed, err := second.Changed("v2", "abc")
	if err != nil || changed {
		t.Fatalf("expected recorded digest to survive reopen, changed=%v err=%v", changed, err)
	}
}

func TestDecodeEntryRejectsShortValues(t *testing.T) {
	if _, _, ok := decodeEntry([]byte{1, 2, 3}); ok {
		t.Fatalf("short value decoded")
	}
	expiry := time.Unix(1700000000, 0)
	got, digest, ok := decodeEntry(encodeEntry(expiry, "deadbeef"))
	if !ok || !got.Equal(expiry) || digest != "deadbeef" {
		t.Fatalf("round trip mismatch: %v %q %v", got, digest, ok)
	}
}

func TestNewStoreBackends(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if changed, _ := store.Changed("x", "d"); !changed {
		t.Fatalf("noop store must report every snapshot as changed")
	}

	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestMemoryStore(t *testing.T) {
	store, err := NewStore("memory", "", Options{SnapshotTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	mem := store.(*memoryStore)
	now := time.Now()
	mem.now = func() time.Time { return now }

	if err := mem.Record("w", "d1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if changed, _ := mem.Changed("w", "d1"); changed {
		t.Fatalf("expected unchanged digest")
	}

	now = now.Add(2 * time.Minute)
	if changed, _ := mem.Changed("w", "d1"); !changed {
		t.Fatalf("expected expired record to count as changed")
	}
}
