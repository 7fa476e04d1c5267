package sessioncache

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fortuna/apex/internal/timing"
)

func openTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := timing.SessionKey{Season: 2024, Round: 1, Type: timing.SessionRace}

	ok, err := c.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has: %v", err)
	}
	if ok {
		t.Fatal("Has = true on empty cache")
	}

	if _, err := c.Read(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Read on empty cache = %v, want ErrCacheMiss", err)
	}

	blob := []byte(`{"version":1}`)
	if err := c.Write(ctx, key, blob); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ok, err = c.Has(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Has after write = %v, %v", ok, err)
	}

	got, err := c.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Read = %q, want %q", got, blob)
	}
}

func TestSQLiteCacheOverwrite(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := timing.SessionKey{Season: 2024, Round: 2, Type: timing.SessionSprint}

	if err := c.Write(ctx, key, []byte("old")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := c.Write(ctx, key, []byte("new")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := c.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Read after overwrite = %q, want %q", got, "new")
	}
}

func TestSQLiteCacheKeyIsolation(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	race := timing.SessionKey{Season: 2024, Round: 5, Type: timing.SessionRace}
	sprint := timing.SessionKey{Season: 2024, Round: 5, Type: timing.SessionSprint}

	if err := c.Write(ctx, race, []byte("race")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if ok, _ := c.Has(ctx, sprint); ok {
		t.Error("sprint key visible after race write")
	}
	got, err := c.Read(ctx, race)
	if err != nil || string(got) != "race" {
		t.Errorf("race read = %q, %v", got, err)
	}
}
