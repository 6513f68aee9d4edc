package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/islechat/go-wa-backend/internal/store/gormstore"
)

func newTestStore(t *testing.T) *gormstore.Store {
	t.Helper()
	s, err := gormstore.Open(gormstore.Options{SQLitePath: filepath.Join(t.TempDir(), "svc.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLogin_RegistersNewAccount(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "secret")

	res, err := svc.Login(context.Background(), "Maria@Example.com", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.Created {
		t.Fatal("expected account creation on first login")
	}
	if res.Email != "maria@example.com" {
		t.Fatalf("expected lowercased email, got %q", res.Email)
	}
	if res.Workspace != "maria" {
		t.Fatalf("expected workspace from email local part, got %q", res.Workspace)
	}
	if res.Token == "" {
		t.Fatal("expected a signed token")
	}
}

func TestLogin_ExistingAccountVerifiesPassword(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "secret")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "maria@example.com", "pw123456"); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login(ctx, "maria@example.com", "pw123456")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if res.Created {
		t.Fatal("second login must not create a new account")
	}

	if _, err := svc.Login(ctx, "maria@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_ValidatesInput(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "secret")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "", "pw"); !errors.Is(err, ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@b.com", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "secret")

	res, err := svc.Login(context.Background(), "maria@example.com", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.Verify(res.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Workspace != "maria" || claims.Email != "maria@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject == "" {
		t.Fatal("expected subject to carry the account id")
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	st := newTestStore(t)
	issuer := NewAuthService(st, "secret-a")
	verifier := NewAuthService(st, "secret-b")

	res, err := issuer.Login(context.Background(), "maria@example.com", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := verifier.Verify(res.Token); err == nil {
		t.Fatal("expected verification failure with mismatched secret")
	}
}

func TestWorkspaceSlug(t *testing.T) {
	cases := map[string]string{
		"maria@example.com":       "maria",
		"Bob.Smith+x@shop.tt":     "bob-smith-x",
		"___@x.com":               "workspace",
		"island_juice99@mail.com": "island-juice99",
	}
	for in, want := range cases {
		if got := WorkspaceSlug(in); got != want {
			t.Fatalf("WorkspaceSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
