package account_test

import (
	"context"
	"errors"
	"testing"

	"primefit/internal/adapters/storage"
	accountstore "primefit/internal/adapters/storage/account"
	"primefit/internal/adapters/storage/storagetest"
	domain "primefit/internal/domain/account"
	"primefit/internal/domain/principal"
)

var (
	alice = principal.SelfAuthenticating([]byte("alice"))
	bob   = principal.SelfAuthenticating([]byte("bob"))
)

// TestSQLiteStore_Profiles verifies profile save and lookup.
func TestSQLiteStore_Profiles(t *testing.T) {
	ctx := context.Background()
	store := accountstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	if _, err := store.GetProfile(ctx, alice); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetProfile missing = %v, want ErrNotFound", err)
	}
	u := domain.UserProfile{Principal: alice, Name: "Alice", Email: "alice@x.io", AppRole: domain.AppRoleAdmin}
	if err := store.SaveProfile(ctx, u); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got, err := store.GetProfile(ctx, alice)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Name != "Alice" || !got.Principal.Equal(alice) || got.AppRole != domain.AppRoleAdmin {
		t.Errorf("GetProfile = %+v", got)
	}
}

// TestSQLiteStore_Roles verifies the guest default and admin detection.
func TestSQLiteStore_Roles(t *testing.T) {
	ctx := context.Background()
	store := accountstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	role, err := store.GetRole(ctx, bob)
	if err != nil || role != domain.RoleGuest {
		t.Errorf("GetRole unknown = %s, %v; want guest", role, err)
	}
	if ok, _ := store.AdminExists(ctx); ok {
		t.Error("AdminExists on empty store")
	}
	store.SetRole(ctx, bob, domain.RoleUser)
	store.SetRole(ctx, alice, domain.RoleAdmin)
	if ok, _ := store.AdminExists(ctx); !ok {
		t.Error("AdminExists = false after assigning admin")
	}
	if role, _ := store.GetRole(ctx, bob); role != domain.RoleUser {
		t.Errorf("GetRole(bob) = %s", role)
	}
	if _, ok, _ := store.LookupRole(ctx, principal.SelfAuthenticating([]byte("carol"))); ok {
		t.Error("LookupRole reported an assignment for an unknown principal")
	}
	roles, err := store.ListRoles(ctx)
	if err != nil || len(roles) != 2 || roles[alice.String()] != domain.RoleAdmin {
		t.Errorf("ListRoles = %v, %v", roles, err)
	}
}

// TestSQLiteStore_Approvals verifies approval upsert and listing.
func TestSQLiteStore_Approvals(t *testing.T) {
	ctx := context.Background()
	store := accountstore.NewSQLiteStore(storagetest.OpenMigrated(t))

	store.SetApproval(ctx, domain.Approval{Principal: alice, Status: domain.ApprovalPending})
	store.SetApproval(ctx, domain.Approval{Principal: alice, Status: domain.ApprovalApproved})
	store.SetApproval(ctx, domain.Approval{Principal: bob, Status: domain.ApprovalRejected})

	a, err := store.GetApproval(ctx, alice)
	if err != nil || a.Status != domain.ApprovalApproved {
		t.Errorf("GetApproval = %+v, %v", a, err)
	}
	list, err := store.ListApprovals(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListApprovals = %+v, %v", list, err)
	}
}
