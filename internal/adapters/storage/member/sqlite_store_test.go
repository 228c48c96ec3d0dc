package member_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"primefit/internal/adapters/storage"
	memberstore "primefit/internal/adapters/storage/member"
	"primefit/internal/adapters/storage/storagetest"
	"primefit/internal/domain/fitness"
	domain "primefit/internal/domain/member"
	"primefit/internal/domain/membership"
	"primefit/internal/domain/principal"
)

func newMember(email string) domain.Member {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	m := domain.Member{
		Principal: principal.Anonymous(),
		Name:      "Member " + email,
		Email:     email,
		Phone:     "021 555 0101",
	}
	m.StartPlan(membership.Plan{ID: "p1", Name: "Monthly", DurationMonths: 1, Price: 40}, start)
	return m
}

// TestSQLiteStore_CreateAndGet verifies a member round-trips through the store.
func TestSQLiteStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := memberstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	m := newMember("A@B.com")
	m.WorkoutPlan = &fitness.WorkoutPlan{ID: "w", Name: "Base", DurationWeeks: 4, Exercises: []fitness.Exercise{{Name: "Row", Sets: 3, Reps: 10, WeightKg: 40}}}
	if err := m.SetPassword("secret1"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	id, err := store.Create(ctx, m)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d, want > 0", id)
	}

	got, err := store.GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != id || got.Email != "a@b.com" {
		t.Errorf("got id=%d email=%s", got.ID, got.Email)
	}
	if !got.EndDate.Equal(m.EndDate) {
		t.Errorf("EndDate = %v, want %v", got.EndDate, m.EndDate)
	}
	if got.MembershipPlan != m.MembershipPlan {
		t.Errorf("MembershipPlan = %+v, want %+v", got.MembershipPlan, m.MembershipPlan)
	}
	if got.WorkoutPlan == nil || got.WorkoutPlan.Exercises[0].WeightKg != 40 {
		t.Errorf("WorkoutPlan = %+v", got.WorkoutPlan)
	}
	if got.DietPlan != nil {
		t.Errorf("DietPlan = %+v, want nil", got.DietPlan)
	}
	if err := got.CheckPassword("secret1"); err != nil {
		t.Errorf("CheckPassword after load: %v", err)
	}
	if !got.Principal.IsAnonymous() {
		t.Errorf("Principal = %s, want anonymous", got.Principal)
	}

	byPhone, err := store.GetByPhone(ctx, " 021 555 0101 ")
	if err != nil || byPhone.ID != id {
		t.Errorf("GetByPhone = %d, %v", byPhone.ID, err)
	}
}

// TestSQLiteStore_DuplicateEmail verifies unique emails are enforced case-insensitively.
func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memberstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	if _, err := store.Create(ctx, newMember("dup@x.io")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, newMember("DUP@x.io"))
	if !errors.Is(err, memberstore.ErrDuplicateEmail) {
		t.Errorf("second Create = %v, want ErrDuplicateEmail", err)
	}
}

// TestSQLiteStore_SaveDeleteNotFound verifies update, delete and missing rows.
func TestSQLiteStore_SaveDeleteNotFound(t *testing.T) {
	ctx := context.Background()
	store := memberstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	id, _ := store.Create(ctx, newMember("s@x.io"))
	m, _ := store.GetByID(ctx, id)
	m.Name = "Renamed"
	m.DietPlan = &fitness.DietPlan{ID: "d", Name: "Bulk", Macros: fitness.Macros{Calories: 3000}}
	if err := store.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := store.GetByID(ctx, id)
	if got.Name != "Renamed" || got.DietPlan == nil || got.DietPlan.Calories != 3000 {
		t.Errorf("after Save got %+v", got)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	if err := store.Save(ctx, m); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Save missing = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_ListFilters verifies status and registered filters.
func TestSQLiteStore_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := memberstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	store.Create(ctx, newMember("one@x.io"))
	expired := newMember("two@x.io")
	expired.MembershipStatus = domain.StatusExpired
	store.Create(ctx, expired)
	registered := newMember("three@x.io")
	registered.Principal = principal.SelfAuthenticating([]byte("key-three"))
	store.Create(ctx, registered)

	all, err := store.List(ctx, memberstore.ListFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("List all = %d, %v", len(all), err)
	}
	active, _ := store.List(ctx, memberstore.ListFilter{Status: domain.StatusActive})
	if len(active) != 2 {
		t.Errorf("active = %d, want 2", len(active))
	}
	reg, _ := store.List(ctx, memberstore.ListFilter{Registered: true})
	if len(reg) != 1 || reg[0].Email != "three@x.io" {
		t.Errorf("registered = %+v", reg)
	}
	byPrincipal, err := store.GetByPrincipal(ctx, registered.Principal)
	if err != nil || byPrincipal.Email != "three@x.io" {
		t.Errorf("GetByPrincipal = %+v, %v", byPrincipal, err)
	}
	page, _ := store.List(ctx, memberstore.ListFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Email != "two@x.io" {
		t.Errorf("page = %+v", page)
	}
}
