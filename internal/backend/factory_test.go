package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gofinances/internal/config"
	"gofinances/internal/kv"
	"gofinances/internal/log"
)

func quietFactory() Factory {
	return NewFactory(log.New(log.Config{Output: &bytes.Buffer{}}))
}

func TestCreateBackend_Memory(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(`{"@gofinances:transactions_user:u1":"[]"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend, MemorySeedFile: seed})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Cache != nil || res.Cleanup != nil {
		t.Fatalf("memory backend without cache needs no cache or cleanup")
	}
	v, ok, err := res.Store.Get(context.Background(), "@gofinances:transactions_user:u1")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("seeded value not found: %q %v %v", v, ok, err)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
}

func TestCreateBackend_SQLiteWithCache(t *testing.T) {
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "kv.db"),
		CacheSize:    8,
		CacheTTL:     time.Minute,
	}
	res, err := quietFactory().CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Store.(*kv.Cached); !ok {
		t.Fatalf("expected cached store, got %T", res.Store)
	}
	if res.Cache == nil {
		t.Fatal("expected cache to be exposed for sweeping")
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	ctx := context.Background()
	if err := res.Store.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := res.Store.Get(ctx, "k"); err != nil || !ok || v != "v" {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("expected error for missing sqlite path")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", CacheSize: 3, CacheTTL: time.Second})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.CacheSize != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for invalid backend")
	}
}
