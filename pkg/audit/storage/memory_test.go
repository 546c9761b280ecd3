package storage

import (
	"context"
	"testing"
	"time"

	"poincare-hq/poincare/pkg/audit"
)

func makeRecord(id, operation string, success bool, startedAt time.Time) *audit.RunRecord {
	return &audit.RunRecord{
		ID:              id,
		Operation:       operation,
		SourcePath:      "data",
		OutputPath:      "data.enc",
		SourceHash:      "aa",
		OutputHash:      "bb",
		DurationSeconds: 0.5,
		Success:         success,
		StartedAt:       startedAt,
		RecordedAt:      startedAt.Add(time.Second),
	}
}

func seedMemory(t *testing.T) (*MemoryStorage, time.Time) {
	t.Helper()
	ctx := context.Background()
	m := NewMemoryStorage()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	records := []*audit.RunRecord{
		makeRecord("r1", "encrypt", true, base),
		makeRecord("r2", "encrypt", false, base.Add(time.Hour)),
		makeRecord("r3", "decrypt", true, base.Add(2*time.Hour)),
		makeRecord("r4", "hash", true, base.Add(3*time.Hour)),
	}
	for _, record := range records {
		if err := m.Store(ctx, record); err != nil {
			t.Fatalf("Store(%s) error = %v", record.ID, err)
		}
	}
	return m, base
}

func TestMemoryStorage_QueryFilters(t *testing.T) {
	m, base := seedMemory(t)
	ctx := context.Background()

	byOp, err := m.Query(ctx, &audit.Query{Operation: "encrypt"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(byOp) != 2 {
		t.Errorf("operation filter matched %d records, want 2", len(byOp))
	}

	failed := false
	byOutcome, err := m.Query(ctx, &audit.Query{Success: &failed})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(byOutcome) != 1 || byOutcome[0].ID != "r2" {
		t.Errorf("outcome filter = %v, want only r2", byOutcome)
	}

	cutoff := base.Add(90 * time.Minute)
	old, err := m.Query(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(old) != 2 {
		t.Errorf("time filter matched %d records, want 2", len(old))
	}
}

func TestMemoryStorage_QuerySortAndPagination(t *testing.T) {
	m, _ := seedMemory(t)
	ctx := context.Background()

	newest, err := m.Query(ctx, &audit.Query{Limit: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(newest) != 1 || newest[0].ID != "r4" {
		t.Errorf("default sort head = %v, want newest r4", newest)
	}

	oldest, err := m.Query(ctx, &audit.Query{SortOrder: "asc", Limit: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(oldest) != 1 || oldest[0].ID != "r1" {
		t.Errorf("ascending head = %v, want oldest r1", oldest)
	}

	second, err := m.Query(ctx, &audit.Query{SortOrder: "asc", Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(second) != 1 || second[0].ID != "r2" {
		t.Errorf("offset query = %v, want r2", second)
	}
}

func TestMemoryStorage_CountAndDelete(t *testing.T) {
	m, base := seedMemory(t)
	ctx := context.Background()

	count, err := m.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 4 {
		t.Errorf("Count() = %d, want 4", count)
	}

	cutoff := base.Add(90 * time.Minute)
	deleted, err := m.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Delete() = %d, want 2", deleted)
	}

	remaining, err := m.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if remaining != 2 {
		t.Errorf("Count() after delete = %d, want 2", remaining)
	}
}

func TestMemoryStorage_QueryReturnsCopies(t *testing.T) {
	m, _ := seedMemory(t)
	ctx := context.Background()

	first, err := m.Query(ctx, &audit.Query{Operation: "hash"})
	if err != nil || len(first) != 1 {
		t.Fatalf("Query() = %v, %v", first, err)
	}
	first[0].Operation = "tampered"

	second, err := m.Query(ctx, &audit.Query{Operation: "hash"})
	if err != nil || len(second) != 1 {
		t.Fatalf("Query() after mutation = %v, %v", second, err)
	}
}
