package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	sessions *SessionStore
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, sessions *SessionStore) *Service {
	return &Service{repo: repo, tokens: tokens, sessions: sessions, now: time.Now}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// SignIn authenticates the caller and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Register(ctx, claims.ID, user.ID, s.tokens.TTL()); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}
	now := s.now().UTC()
	if err := s.repo.TouchSignIn(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record sign-in: %w", err)
	}
	user.LastSignInAt = &now

	return &SignInResult{
		User: user,
		Session: Session{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int64(s.tokens.TTL().Seconds()),
			ExpiresAt:   claims.ExpiresAt.Unix(),
		},
	}, nil
}

// Verify resolves an access token to its principal. Revoked sessions are
// rejected even when the token itself has not expired.
func (s *Service) Verify(ctx context.Context, raw string) (Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Principal{}, err
	}
	userID, ok, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("lookup session: %w", err)
	}
	if !ok || strconv.FormatInt(userID, 10) != claims.Subject {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: userID, Email: claims.Email, SessionID: claims.ID}, nil
}

// SignOut revokes the principal's session.
func (s *Service) SignOut(ctx context.Context, p Principal) (SignOutResult, error) {
	if err := s.sessions.Revoke(ctx, p.SessionID); err != nil {
		return SignOutResult{}, fmt.Errorf("revoke session: %w", err)
	}
	return SignOutResult{Message: "Signed out successfully"}, nil
}

// Profile loads the account behind p.
func (s *Service) Profile(ctx context.Context, p Principal) (*User, error) {
	user, err := s.repo.FindByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// Register creates an account with a bcrypt hashed password.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, email, hash, strings.TrimSpace(fullName))
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
