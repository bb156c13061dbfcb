package snapshot

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"datenwerk/internal/infrastructure/persistence/sqlite/model"
	"datenwerk/internal/ports"
)

func setupSnapshotStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "datenwerk.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.LayerSnapshot{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSaveAndGetSnapshot(t *testing.T) {
	store := setupSnapshotStore(t)
	ctx := context.Background()

	snap := ports.LayerSnapshot{
		RunID:   "run-1",
		Layer:   "bronze",
		Source:  "products",
		Payload: `{"record_count":100}`,
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	payload, found, err := store.Get(ctx, "run-1", "bronze", "products")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || payload != snap.Payload {
		t.Fatalf("Get() = %q, found=%v", payload, found)
	}

	_, found, err = store.Get(ctx, "run-1", "bronze", "customers")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatal("Get() found a snapshot that was never saved")
	}
}

func TestSaveUpsertsOnSameKey(t *testing.T) {
	store := setupSnapshotStore(t)
	ctx := context.Background()

	first := ports.LayerSnapshot{RunID: "run-1", Layer: "silver", Source: "sales_orders", Payload: `{"valid_records":1}`}
	second := first
	second.Payload = `{"valid_records":2}`

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	payload, found, err := store.Get(ctx, "run-1", "silver", "sales_orders")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || payload != second.Payload {
		t.Fatalf("Get() = %q, want overwritten payload", payload)
	}

	all, err := store.List(ctx, "run-1", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("List() len = %d after upsert", len(all))
	}
}

func TestSaveRejectsIncompleteKey(t *testing.T) {
	store := setupSnapshotStore(t)
	ctx := context.Background()

	testCases := []ports.LayerSnapshot{
		{Layer: "bronze", Source: "products", Payload: "{}"},
		{RunID: "run-1", Source: "products", Payload: "{}"},
		{RunID: "run-1", Layer: "bronze", Payload: "{}"},
	}
	for _, snap := range testCases {
		if err := store.Save(ctx, snap); err == nil {
			t.Fatalf("Save(%+v) expected error", snap)
		}
	}
}

func TestListFiltersByLayer(t *testing.T) {
	store := setupSnapshotStore(t)
	ctx := context.Background()

	snaps := []ports.LayerSnapshot{
		{RunID: "run-1", Layer: "bronze", Source: "products", Payload: "{}"},
		{RunID: "run-1", Layer: "bronze", Source: "customers", Payload: "{}"},
		{RunID: "run-1", Layer: "gold", Source: "sales_metrics", Payload: "[]"},
		{RunID: "run-2", Layer: "bronze", Source: "products", Payload: "{}"},
	}
	for _, snap := range snaps {
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	bronze, err := store.List(ctx, "run-1", "bronze")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(bronze) != 2 {
		t.Fatalf("List() bronze len = %d", len(bronze))
	}
	if bronze[0].Source != "customers" || bronze[1].Source != "products" {
		t.Fatalf("List() order: %s, %s", bronze[0].Source, bronze[1].Source)
	}

	all, err := store.List(ctx, "run-1", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List() all len = %d", len(all))
	}
}
