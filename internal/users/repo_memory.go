package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User // id -> user
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

// Create stores a new account, enforcing email uniqueness.
func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range r.data {
		if strings.EqualFold(existing.Email, email) {
			return ErrDuplicateEmail
		}
	}
	user.Email = email
	r.data[user.ID] = user
	return nil
}

// GetByID returns an account by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns an account by its email, case-insensitive.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

// List returns a page of accounts ordered by creation time.
func (r *MemoryRepo) List(ctx context.Context, page, limit int) ([]User, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	r.mu.RLock()
	all := make([]User, 0, len(r.data))
	for _, user := range r.data {
		all = append(all, user)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// UpdateName updates the display name.
func (r *MemoryRepo) UpdateName(ctx context.Context, userID, name string) (User, error) {
	return r.mutate(ctx, userID, func(u *User) {
		u.Name = name
	})
}

// UpdatePassword replaces the stored password hash.
func (r *MemoryRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.mutate(ctx, userID, func(u *User) {
		u.PasswordHash = passwordHash
	})
	return err
}

// SetRole changes the account role.
func (r *MemoryRepo) SetRole(ctx context.Context, userID, role string) (User, error) {
	return r.mutate(ctx, userID, func(u *User) {
		u.Role = role
	})
}

// SetActive toggles the account active flag.
func (r *MemoryRepo) SetActive(ctx context.Context, userID string, active bool) (User, error) {
	return r.mutate(ctx, userID, func(u *User) {
		u.IsActive = active
	})
}

func (r *MemoryRepo) mutate(ctx context.Context, userID string, fn func(*User)) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	r.data[userID] = user
	return user, nil
}

var _ Repo = (*MemoryRepo)(nil)
