// Package services – AuthService
//
// Authentication follows a register-or-login model: an unknown email creates
// the account and its workspace in one step, a known email verifies the
// password. Successful calls mint a signed bearer token scoped to the
// account's workspace.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
)

// TokenTTL is how long issued bearer tokens stay valid.
const TokenTTL = 7 * 24 * time.Hour

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	Workspace string `json:"ws"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies workspace-scoped bearer tokens.
type AuthService struct {
	Store  store.UserStore
	Secret []byte
}

// NewAuthService constructs an AuthService signing with the given secret.
func NewAuthService(st store.UserStore, secret string) *AuthService {
	return &AuthService{Store: st, Secret: []byte(secret)}
}

// AuthResult is returned by Login.
type AuthResult struct {
	Token     string `json:"token"`
	Workspace string `json:"workspace"`
	Email     string `json:"email"`
	Created   bool   `json:"created"`
}

// Login authenticates the email/password pair, creating the account and its
// workspace when the email is new. Password mismatches on existing accounts
// return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	created := false
	user, err := s.Store.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
	case errors.Is(err, store.ErrNotFound):
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if herr != nil {
			return nil, fmt.Errorf("hash password: %w", herr)
		}
		user = &domain.User{Email: email, PasswordHash: string(hash)}
		if cerr := s.Store.CreateUser(ctx, user); cerr != nil {
			return nil, cerr
		}
		created = true
	default:
		return nil, err
	}

	ws, err := s.Store.EnsureWorkspace(ctx, user.ID, WorkspaceSlug(email))
	if err != nil {
		return nil, err
	}

	token, err := s.sign(user, ws.Slug)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Workspace: ws.Slug, Email: email, Created: created}, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func (s *AuthService) sign(user *domain.User, workspace string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Workspace: workspace,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// WorkspaceSlug derives the workspace identifier from an email address: the
// local part, lowercased, with anything outside [a-z0-9] collapsed to '-'.
func WorkspaceSlug(email string) string {
	local := strings.ToLower(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	var b strings.Builder
	lastDash := true
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "workspace"
	}
	return slug
}
