package itest

import (
	"context"
	"testing"
	"time"

	"github.com/burhani-guards/guards-api/internal/bootstrap"
	"github.com/burhani-guards/guards-api/internal/domain"
	"github.com/burhani-guards/guards-api/internal/platform/password"
	"github.com/burhani-guards/guards-api/internal/ports/out/memberrepo"
)

func seedAdminMember(t *testing.T, app *bootstrap.App, its, plain string) {
	t.Helper()
	hash, err := password.NewBcrypt(4).Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	code := domain.RoleResourceAdmin.Code()
	now := time.Now().UTC()
	if _, err := app.Repos.Members.Create(context.Background(), memberrepo.Member{
		ITSID:           its,
		FullName:        "Resource Admin",
		Email:           "admin@example.com",
		Roles:           &code,
		Rank:            domain.RoleResourceAdmin.Text(),
		Jamiyat:         strPtr("Poona"),
		Jamaat:          strPtr("POONA"),
		NewPasswordHash: &hash,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func strPtr(s string) *string { return &s }
