package communication_test

import (
	"context"
	"testing"
	"time"

	commstore "primefit/internal/adapters/storage/communication"
	"primefit/internal/adapters/storage/storagetest"
	domain "primefit/internal/domain/communication"
)

// TestSQLiteStore_Log verifies recipient lookups and the retry query.
func TestSQLiteStore_Log(t *testing.T) {
	ctx := context.Background()
	store := commstore.NewSQLiteStore(storagetest.OpenMigrated(t))
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	entries := []domain.LogEntry{
		{ID: "1", Recipient: "A@B.com", Channel: domain.ChannelEmail, Content: "hi", Status: domain.StatusFailed, Attempts: 1, Timestamp: now},
		{ID: "2", Recipient: "a@b.com", Channel: domain.ChannelSMS, Content: "hi", Status: domain.StatusSent, Attempts: 1, Timestamp: now.Add(time.Minute)},
		{ID: "3", Recipient: "c@d.com", Channel: domain.ChannelEmail, Content: "hi", Status: domain.StatusFailed, Attempts: domain.MaxAttempts, Timestamp: now},
	}
	for _, e := range entries {
		if err := store.Save(ctx, e); err != nil {
			t.Fatalf("Save(%s): %v", e.ID, err)
		}
	}

	mine, err := store.ListByRecipient(ctx, "a@B.COM")
	if err != nil || len(mine) != 2 || mine[0].ID != "2" {
		t.Errorf("ListByRecipient = %+v, %v", mine, err)
	}
	retry, err := store.ListRetryable(ctx, domain.MaxAttempts)
	if err != nil || len(retry) != 1 || retry[0].ID != "1" {
		t.Fatalf("ListRetryable = %+v, %v", retry, err)
	}

	e := retry[0]
	e.RecordAttempt(nil, now.Add(time.Hour))
	store.Save(ctx, e)
	retry, _ = store.ListRetryable(ctx, domain.MaxAttempts)
	if len(retry) != 0 {
		t.Errorf("ListRetryable after success = %d, want 0", len(retry))
	}
	all, _ := store.List(ctx)
	if len(all) != 3 {
		t.Errorf("List = %d, want 3", len(all))
	}
}
