package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/delphinium/delphinium/internal/domain"
	"github.com/delphinium/delphinium/internal/ports"
)

// UserDirectory is the identity provider backed by the users table.
type UserDirectory struct {
	users     ports.Repository[domain.User]
	passwords ports.PasswordService
}

// NewUserDirectory creates a directory over users.
func NewUserDirectory(users ports.Repository[domain.User], passwords ports.PasswordService) *UserDirectory {
	return &UserDirectory{users: users, passwords: passwords}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// GetUser returns the directory entry for username.
func (d *UserDirectory) GetUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := d.users.Get(ctx, normalizeUsername(username))
	if errors.Is(err, ports.ErrRecordNotFound) {
		return nil, ports.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListGroupsForUser returns the groups username belongs to.
func (d *UserDirectory) ListGroupsForUser(ctx context.Context, username string) ([]string, error) {
	user, err := d.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Groups == nil {
		return []string{}, nil
	}
	return user.Groups, nil
}

// Authenticate checks the password of username.
func (d *UserDirectory) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := d.GetUser(ctx, username)
	if errors.Is(err, ports.ErrUserNotFound) {
		return nil, ports.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !d.passwords.CheckPassword(user.PasswordHash, password) {
		return nil, ports.ErrInvalidCredentials
	}
	d.upgradeHash(ctx, user, password)
	return user, nil
}

// upgradeHash re-hashes a verified password stored under an old cost.
// Failure leaves the old hash in place; the login still succeeds.
func (d *UserDirectory) upgradeHash(ctx context.Context, user *domain.User, password string) {
	if !d.passwords.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := d.passwords.HashPassword(password)
	if err != nil {
		return
	}
	user.PasswordHash = hash
	_ = d.users.Put(ctx, user.Username, user)
}

// Register creates or replaces a directory entry with a freshly hashed password.
func (d *UserDirectory) Register(ctx context.Context, user *domain.User, password string) error {
	user.Username = normalizeUsername(user.Username)
	if user.Username == "" {
		return errors.New("username is required")
	}
	hash, err := d.passwords.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Groups = domain.NormalizeGroups(user.Groups)
	if user.CreatedAt == 0 {
		user.CreatedAt = domain.Millis(time.Now())
	}
	if err := d.users.Put(ctx, user.Username, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
