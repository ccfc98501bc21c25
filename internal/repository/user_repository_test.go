package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ticketdesk/cookie-auth/internal/domain"
	apperrors "github.com/ticketdesk/cookie-auth/pkg/util/errorutil"
)

func conflictField(t *testing.T, err error) any {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
	return domainErr.Details["field"]
}

func TestMapUniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		field      any
	}{
		{constraint: "users_username_key", field: "username"},
		{constraint: "users_email_key", field: "email"},
		{constraint: "users_pkey", field: nil},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := mapUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})
			if got := conflictField(t, err); got != tt.field {
				t.Fatalf("expected field %v, got %v", tt.field, got)
			}
		})
	}

	other := &pgconn.PgError{Code: "23502", ConstraintName: "users_email_key"}
	if err := mapUniqueViolation(other); err != other {
		t.Fatalf("non-unique errors must pass through, got %v", err)
	}
	if err := mapUniqueViolation(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

// Runs only against a real database that already has the users table.
func TestPostgresUserRepository(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewUserRepository(pool)
	suffix := uuid.NewString()[:8]
	user := &domain.User{
		Username:     "u" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
		Roles:        []domain.Role{domain.RoleUser, domain.RoleModerator},
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id=$1`, user.ID)
	})

	got, err := repo.GetByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != user.ID || !got.HasAnyRole(domain.RoleModerator) {
		t.Fatalf("unexpected user %+v", got)
	}

	if ok, err := repo.ExistsByEmail(ctx, user.Email); err != nil || !ok {
		t.Fatalf("exists by email: %v %v", ok, err)
	}
	if _, err := repo.GetByID(ctx, uuid.NewString()); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	creds, err := repo.GetCredentials(ctx, user.Username)
	if err != nil || creds.PasswordHash != "hash" {
		t.Fatalf("get credentials: %+v %v", creds, err)
	}

	// Inserted directly, as a sign-up that lost the race after its existence checks would.
	dupUsername := &domain.User{Username: user.Username, Email: "other-" + user.Email, PasswordHash: "hash"}
	if field := conflictField(t, repo.Create(ctx, dupUsername)); field != "username" {
		t.Fatalf("expected username conflict, got %v", field)
	}
	dupEmail := &domain.User{Username: "v" + suffix, Email: user.Email, PasswordHash: "hash"}
	if field := conflictField(t, repo.Create(ctx, dupEmail)); field != "email" {
		t.Fatalf("expected email conflict, got %v", field)
	}
}
