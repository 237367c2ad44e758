package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"cep-distance-service/internal/adapters/cache"
	"cep-distance-service/internal/domain"
	"cep-distance-service/internal/platform/db"
)

func TestRunCommand(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(filepath.Join(t.TempDir(), "gps_cache.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sqlDB.Close()

	var out bytes.Buffer
	if err := runCommand(ctx, sqlDB, cache.SQLite, "init", nil, &out); err != nil {
		t.Fatalf("init: %v", err)
	}

	key := domain.LookupKey{Origin: "1000-001", Destination: "4000-001", Mode: domain.ModeTruck}
	if err := cache.NewSQLLookupCache(sqlDB, cache.SQLite).Upsert(ctx, key, domain.RouteResult{DistanceKm: 313.25, TimeMin: 200}, "km", "min"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	out.Reset()
	if err := runCommand(ctx, sqlDB, cache.SQLite, "get", []string{"-from", "1000001", "-to", "4000-001", "-mode", "pesado"}, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out.String(), "313.25 km") {
		t.Fatalf("get output:\n%s", out.String())
	}

	out.Reset()
	if err := runCommand(ctx, sqlDB, cache.SQLite, "top", []string{"-n", "5"}, &out); err != nil {
		t.Fatalf("top: %v", err)
	}
	if !strings.Contains(out.String(), "1000-001") || !strings.Contains(out.String(), "truck") {
		t.Fatalf("top output:\n%s", out.String())
	}

	// get must not have counted a hit.
	e, _, err := cache.NewSQLLookupCache(sqlDB, cache.SQLite).Peek(ctx, key)
	if err != nil || e.HitCount != 1 {
		t.Fatalf("hit_count=%d err=%v want 1", e.HitCount, err)
	}

	if err := runCommand(ctx, sqlDB, cache.SQLite, "bogus", nil, &out); err == nil {
		t.Fatalf("expected unknown command error")
	}
}
