package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptPasswordService_Cost(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, bcrypt.DefaultCost},
		{1, bcrypt.MinCost},
		{12, 12},
		{99, bcrypt.MaxCost},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewBcryptPasswordService(tt.in).Cost())
	}
}

func TestBcryptPasswordService_HashPassword(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	hash, err := service.HashPassword("Resident-pass1")
	require.NoError(t, err)
	assert.NotEqual(t, "Resident-pass1", hash)
	assert.True(t, service.CheckPassword(hash, "Resident-pass1"))

	_, err = service.HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = service.HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestBcryptPasswordService_CheckPassword(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)
	hash, err := service.HashPassword("Resident-pass1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"match", hash, "Resident-pass1", true},
		{"wrong password", hash, "resident-pass1", false},
		{"empty password", hash, "", false},
		{"empty hash", "", "Resident-pass1", false},
		{"malformed hash", "not-a-hash", "Resident-pass1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.CheckPassword(tt.hash, tt.password))
		})
	}
}

func TestBcryptPasswordService_NeedsRehash(t *testing.T) {
	weak := NewBcryptPasswordService(bcrypt.MinCost)
	hash, err := weak.HashPassword("Resident-pass1")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(hash))
	assert.True(t, NewBcryptPasswordService(bcrypt.MinCost+1).NeedsRehash(hash))
	assert.False(t, weak.NeedsRehash("not-a-hash"))
}
