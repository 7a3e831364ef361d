package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/roombooking/internal/persistence"
)

type adminDirectoryStub struct {
	credentials map[string]AdminCredentials
	createErr   error
	created     []AdminUser
}

func newAdminDirectoryStub() *adminDirectoryStub {
	return &adminDirectoryStub{credentials: make(map[string]AdminCredentials)}
}

func (s *adminDirectoryStub) GetAdminByUsername(_ context.Context, username string) (AdminCredentials, error) {
	creds, ok := s.credentials[username]
	if !ok {
		return AdminCredentials{}, persistence.ErrNotFound
	}
	return creds, nil
}

func (s *adminDirectoryStub) CreateAdmin(_ context.Context, admin AdminUser, passwordHash string) (AdminUser, error) {
	if s.createErr != nil {
		return AdminUser{}, s.createErr
	}
	s.created = append(s.created, admin)
	s.credentials[admin.Username] = AdminCredentials{Admin: admin, PasswordHash: passwordHash}
	return admin, nil
}

type tokenIssuerStub struct {
	token string
	err   error
}

func (s *tokenIssuerStub) Issue(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func seedAdmin(t *testing.T, dir *adminDirectoryStub, username, password string, active bool) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	dir.credentials[username] = AdminCredentials{
		Admin:        AdminUser{ID: "admin-1", Username: username, Active: active},
		PasswordHash: hash,
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues a session token for valid credentials", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		seedAdmin(t, dir, "admin", "s3cret", true)
		svc := NewAuthService(dir, &tokenIssuerStub{token: "signed-token"}, nil, fixedTime, nil)

		result, err := svc.Login(context.Background(), LoginParams{Username: " admin ", Password: "s3cret"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if result.Token != "signed-token" {
			t.Fatalf("expected issued token, got %q", result.Token)
		}
		if result.Username != "admin" {
			t.Fatalf("expected username, got %q", result.Username)
		}
		want := fixedTime().Add(8 * time.Hour)
		if !result.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, result.ExpiresAt)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		seedAdmin(t, dir, "admin", "s3cret", true)
		svc := NewAuthService(dir, &tokenIssuerStub{token: "signed-token"}, nil, fixedTime, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "admin", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an unknown username with the same error", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(newAdminDirectoryStub(), &tokenIssuerStub{token: "signed-token"}, nil, fixedTime, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "nobody", Password: "s3cret"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an inactive account", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		seedAdmin(t, dir, "admin", "s3cret", false)
		svc := NewAuthService(dir, &tokenIssuerStub{token: "signed-token"}, nil, fixedTime, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "admin", Password: "s3cret"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects blank credentials without touching the directory", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(newAdminDirectoryStub(), &tokenIssuerStub{token: "signed-token"}, nil, fixedTime, nil)

		_, err := svc.Login(context.Background(), LoginParams{})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("propagates token issuance failures", func(t *testing.T) {
		t.Parallel()

		expected := errors.New("signing broke")
		dir := newAdminDirectoryStub()
		seedAdmin(t, dir, "admin", "s3cret", true)
		svc := NewAuthService(dir, &tokenIssuerStub{err: expected}, nil, fixedTime, nil)

		_, err := svc.Login(context.Background(), LoginParams{Username: "admin", Password: "s3cret"})
		if !errors.Is(err, expected) {
			t.Fatalf("expected issuance error, got %v", err)
		}
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates the account when absent", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		svc := NewAuthService(dir, nil, func() string { return "admin-1" }, fixedTime, nil)

		created, err := svc.EnsureAdmin(context.Background(), "admin", "s3cret")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if !created {
			t.Fatal("expected account creation")
		}
		if len(dir.created) != 1 || dir.created[0].Username != "admin" {
			t.Fatalf("expected admin created, got %#v", dir.created)
		}
		if !dir.created[0].Active {
			t.Fatal("expected new account to be active")
		}

		creds := dir.credentials["admin"]
		if err := VerifyPassword(creds.PasswordHash, "s3cret"); err != nil {
			t.Fatalf("expected stored hash to verify: %v", err)
		}
	})

	t.Run("leaves an existing account and its password alone", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		seedAdmin(t, dir, "admin", "old-password", true)
		svc := NewAuthService(dir, nil, func() string { return "admin-2" }, fixedTime, nil)

		created, err := svc.EnsureAdmin(context.Background(), "admin", "new-password")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if created {
			t.Fatal("expected no creation for an existing account")
		}
		if err := VerifyPassword(dir.credentials["admin"].PasswordHash, "old-password"); err != nil {
			t.Fatalf("expected original password to survive: %v", err)
		}
	})

	t.Run("treats a duplicate insert as already present", func(t *testing.T) {
		t.Parallel()

		dir := newAdminDirectoryStub()
		dir.createErr = persistence.ErrDuplicate
		svc := NewAuthService(dir, nil, nil, fixedTime, nil)

		created, err := svc.EnsureAdmin(context.Background(), "admin", "s3cret")
		if err != nil {
			t.Fatalf("EnsureAdmin failed: %v", err)
		}
		if created {
			t.Fatal("expected duplicate insert to report no creation")
		}
	})

	t.Run("requires both username and password", func(t *testing.T) {
		t.Parallel()

		svc := NewAuthService(newAdminDirectoryStub(), nil, nil, fixedTime, nil)

		if _, err := svc.EnsureAdmin(context.Background(), "admin", ""); err == nil {
			t.Fatal("expected an error for a blank password")
		}
		if _, err := svc.EnsureAdmin(context.Background(), "", "s3cret"); err == nil {
			t.Fatal("expected an error for a blank username")
		}
	})
}
