package db

import (
	"context"
	"database/sql"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	handle, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { handle.Close() })
	if err := EnsureSchema(context.Background(), handle); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	return handle
}

func testDao(t *testing.T) *fileCRCCacheDao {
	handle := openTestDB(t)
	return &fileCRCCacheDao{dbGetter: func() Database { return handle }}
}

func TestCRCCacheLookupMiss(t *testing.T) {
	dao := testDao(t)
	_, found, err := dao.Lookup(context.Background(), "/tmp/a.esp", 100)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if found {
		t.Fatalf("Lookup reported a hit on an empty cache")
	}
}

func TestCRCCacheUpsertAndLookup(t *testing.T) {
	dao := testDao(t)
	ctx := context.Background()

	if err := dao.Upsert(ctx, "/tmp/a.esp", 100, 0xDEADBEEF); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	crc, found, err := dao.Lookup(ctx, "/tmp/a.esp", 100)
	if err != nil || !found {
		t.Fatalf("Lookup = (found=%v, err=%v), want hit", found, err)
	}
	if crc != 0xDEADBEEF {
		t.Fatalf("Lookup crc = %08X, want DEADBEEF", crc)
	}

	// A different modification time invalidates the entry.
	_, found, err = dao.Lookup(ctx, "/tmp/a.esp", 200)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if found {
		t.Fatalf("Lookup hit with a stale modification time")
	}
}

func TestCRCCacheUpsertUpdatesExisting(t *testing.T) {
	dao := testDao(t)
	ctx := context.Background()

	if err := dao.Upsert(ctx, "/tmp/a.esp", 100, 0x1); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}
	if err := dao.Upsert(ctx, "/tmp/a.esp", 200, 0x2); err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}

	crc, found, err := dao.Lookup(ctx, "/tmp/a.esp", 200)
	if err != nil || !found {
		t.Fatalf("Lookup = (found=%v, err=%v), want hit", found, err)
	}
	if crc != 0x2 {
		t.Fatalf("Lookup crc = %X, want 2", crc)
	}

	entries, err := dao.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ListAll returned %d entries, want 1", len(entries))
	}
}

func TestCRCCacheDeleteByLocations(t *testing.T) {
	dao := testDao(t)
	ctx := context.Background()

	for _, loc := range []string{"/tmp/a.esp", "/tmp/b.esp", "/tmp/c.esp"} {
		if err := dao.Upsert(ctx, loc, 1, 0x1); err != nil {
			t.Fatalf("Upsert %s returned error: %v", loc, err)
		}
	}
	if err := dao.DeleteByLocations(ctx, []string{"/tmp/a.esp", "/tmp/c.esp"}); err != nil {
		t.Fatalf("DeleteByLocations returned error: %v", err)
	}
	entries, err := dao.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Location != "/tmp/b.esp" {
		t.Fatalf("ListAll after delete = %+v, want only /tmp/b.esp", entries)
	}
}

func TestCRCCacheNilDatabase(t *testing.T) {
	dao := &fileCRCCacheDao{dbGetter: func() Database { return nil }}
	_, found, err := dao.Lookup(context.Background(), "/tmp/a.esp", 1)
	if err != nil || found {
		t.Fatalf("Lookup without a database = (found=%v, err=%v), want silent miss", found, err)
	}
	if err := dao.Upsert(context.Background(), "/tmp/a.esp", 1, 0x1); err == nil {
		t.Fatalf("Upsert without a database succeeded")
	}
}
