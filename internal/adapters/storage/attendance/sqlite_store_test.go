package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"primefit/internal/adapters/storage"
	attendancestore "primefit/internal/adapters/storage/attendance"
	memberstore "primefit/internal/adapters/storage/member"
	"primefit/internal/adapters/storage/storagetest"
	domain "primefit/internal/domain/attendance"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

// TestSQLiteStore_OpenVisit verifies open visits are found and closed.
func TestSQLiteStore_OpenVisit(t *testing.T) {
	ctx := context.Background()
	db := storagetest.OpenMigrated(t)
	members := memberstore.NewSQLiteStore(db)
	store := attendancestore.NewSQLiteStore(db)

	active, _ := members.Create(ctx, member.Member{Principal: principal.Anonymous(), Name: "A", Email: "a@x.io", MembershipStatus: member.StatusActive})
	expired, _ := members.Create(ctx, member.Member{Principal: principal.Anonymous(), Name: "E", Email: "e@x.io", MembershipStatus: member.StatusExpired})

	in := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	if _, err := store.GetOpenByMemberID(ctx, active); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetOpenByMemberID before check-in = %v, want ErrNotFound", err)
	}

	rec := domain.Record{ID: "r1", MemberID: active, CheckInTime: in}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Save(ctx, domain.Record{ID: "r2", MemberID: expired, CheckInTime: in.Add(time.Hour)})

	open, err := store.GetOpenByMemberID(ctx, active)
	if err != nil || open.ID != "r1" {
		t.Fatalf("GetOpenByMemberID = %+v, %v", open, err)
	}
	if err := open.CheckOut(in.Add(time.Hour)); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	store.Save(ctx, open)

	if _, err := store.GetOpenByMemberID(ctx, active); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetOpenByMemberID after check-out = %v, want ErrNotFound", err)
	}
	got, _ := store.GetByID(ctx, "r1")
	if got.CheckOutTime == nil || !got.CheckOutTime.Equal(in.Add(time.Hour)) {
		t.Errorf("CheckOutTime = %v", got.CheckOutTime)
	}

	byStatus, _ := store.ListByMemberStatus(ctx, member.StatusExpired)
	if len(byStatus) != 1 || byStatus[0].ID != "r2" {
		t.Errorf("ListByMemberStatus = %+v", byStatus)
	}
	all, _ := store.List(ctx)
	if len(all) != 2 || all[0].ID != "r2" {
		t.Errorf("List = %+v", all)
	}
	mine, _ := store.ListByMemberID(ctx, active)
	if len(mine) != 1 {
		t.Errorf("ListByMemberID = %d, want 1", len(mine))
	}
}
