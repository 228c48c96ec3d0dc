package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"primefit/internal/adapters/storage"
	bookingstore "primefit/internal/adapters/storage/booking"
	memberstore "primefit/internal/adapters/storage/member"
	"primefit/internal/adapters/storage/storagetest"
	domain "primefit/internal/domain/booking"
	"primefit/internal/domain/member"
	"primefit/internal/domain/principal"
)

// TestSQLiteStore_Bookings verifies bookings by member and by status.
func TestSQLiteStore_Bookings(t *testing.T) {
	ctx := context.Background()
	db := storagetest.OpenMigrated(t)
	members := memberstore.NewSQLiteStore(db)
	store := bookingstore.NewSQLiteStore(db)

	id, _ := members.Create(ctx, member.Member{Principal: principal.Anonymous(), Name: "A", Email: "a@x.io", MembershipStatus: member.StatusActive})
	day := time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC)
	store.Save(ctx, domain.Booking{ID: "b2", MemberID: id, ClassType: domain.ClassZumba, Date: day.AddDate(0, 0, 1), Status: domain.StatusBooked})
	store.Save(ctx, domain.Booking{ID: "b1", MemberID: id, ClassType: domain.ClassYoga, Date: day, Status: domain.StatusBooked})

	mine, err := store.ListByMemberID(ctx, id)
	if err != nil || len(mine) != 2 || mine[0].ID != "b1" {
		t.Fatalf("ListByMemberID = %+v, %v", mine, err)
	}

	b, _ := store.GetByID(ctx, "b1")
	b.Status = domain.StatusCancelled
	store.Save(ctx, b)

	cancelled, _ := store.ListByStatus(ctx, domain.StatusCancelled)
	if len(cancelled) != 1 || cancelled[0].ID != "b1" || !cancelled[0].Date.Equal(day) {
		t.Errorf("ListByStatus = %+v", cancelled)
	}
	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID missing = %v", err)
	}
}
