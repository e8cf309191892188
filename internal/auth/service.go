package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"archive-backend/internal/query"
	sharedauth "archive-backend/internal/shared/auth"
	"archive-backend/internal/users"
)

var (
	// ErrInvalidCredentials covers unknown email, wrong password and wrong
	// current password on change.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = errors.New("account disabled")
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldIssue is a field-level validation problem.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError rejects malformed input before any network effect.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Issue))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Session pairs an authenticated user with its bearer token. The token is
// returned to the caller and attached per request; nothing is held in a
// process-wide default.
type Session struct {
	User  users.User `json:"user"`
	Token string     `json:"token"`
}

// Service is the session manager: it issues, verifies and derives identity
// from session credentials, and carries the admin-gated account operations.
type Service struct {
	Repo users.Repo
}

// NewService constructs a Service.
func NewService(repo users.Repo) *Service {
	return &Service{Repo: repo}
}

// Login checks credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return Session{}, ErrAccountDisabled
	}
	return s.issue(user)
}

// Register validates input, creates a USER-role account and issues a token.
func (s *Service) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var issues []FieldIssue
	if !emailPattern.MatchString(email) {
		issues = append(issues, FieldIssue{Field: "email", Issue: "malformed"})
	}
	if len(password) < minPasswordLength {
		issues = append(issues, FieldIssue{Field: "password", Issue: fmt.Sprintf("must be at least %d characters", minPasswordLength)})
	}
	if len(issues) > 0 {
		return Session{}, &ValidationError{Issues: issues}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	user := users.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         users.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

// Verify resolves a token back to its stored account. Any failure means the
// caller must clear its local session entirely: no partial session survives.
func (s *Service) Verify(ctx context.Context, token string) (users.User, error) {
	claims, err := sharedauth.VerifyJWT(token)
	if err != nil {
		return users.User{}, sharedauth.ErrInvalidToken
	}
	user, err := s.Repo.GetByID(ctx, claims.Sub)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, sharedauth.ErrInvalidToken
		}
		return users.User{}, err
	}
	if !user.IsActive {
		return users.User{}, ErrAccountDisabled
	}
	return user, nil
}

// Profile returns the account behind a session.
func (s *Service) Profile(ctx context.Context, userID string) (users.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile updates the caller's display name.
func (s *Service) UpdateProfile(ctx context.Context, userID, name string) (users.User, error) {
	return s.Repo.UpdateName(ctx, userID, strings.TrimSpace(name))
}

// ChangePassword verifies the current password before storing the new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < minPasswordLength {
		return &ValidationError{Issues: []FieldIssue{
			{Field: "newPassword", Issue: fmt.Sprintf("must be at least %d characters", minPasswordLength)},
		}}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, string(hash))
}

// ListUsers returns a page of accounts. Admin-gated at the route level.
func (s *Service) ListUsers(ctx context.Context, page, limit int) (query.Page[users.User], error) {
	req := query.Request{Page: page, Limit: limit}.Clamp()
	items, total, err := s.Repo.List(ctx, req.Page, req.Limit)
	if err != nil {
		return query.Page[users.User]{}, err
	}
	return query.NewPage(items, total, req.Page, req.Limit), nil
}

// SetUserRole changes an account's role. Admin-gated at the route level.
func (s *Service) SetUserRole(ctx context.Context, userID, role string) (users.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if !users.ValidRole(role) {
		return users.User{}, &ValidationError{Issues: []FieldIssue{
			{Field: "role", Issue: "must be ADMIN or USER"},
		}}
	}
	return s.Repo.SetRole(ctx, userID, role)
}

// SetUserStatus toggles an account's active flag. Admin-gated at the route level.
func (s *Service) SetUserStatus(ctx context.Context, userID string, active bool) (users.User, error) {
	return s.Repo.SetActive(ctx, userID, active)
}

// UpsertOAuthUser finds or creates an account for an external identity and
// issues a session token. New OAuth accounts get an unusable random password.
func (s *Service) UpsertOAuthUser(ctx context.Context, email, name string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return Session{}, &ValidationError{Issues: []FieldIssue{{Field: "email", Issue: "malformed"}}}
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		if !user.IsActive {
			return Session{}, ErrAccountDisabled
		}
		return s.issue(user)
	}
	if !errors.Is(err, users.ErrNotFound) {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	user = users.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Role:         users.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, err
	}
	return s.issue(user)
}

func (s *Service) issue(user users.User) (Session, error) {
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}
