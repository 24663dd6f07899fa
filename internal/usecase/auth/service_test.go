package auth

import (
	"context"
	"strings"
	"testing"

	"hireboard/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct {
	compared []string
}

func (h *plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }

func (h *plainHasher) Compare(hash, pw string) error {
	h.compared = append(h.compared, hash)
	if hash != "h:"+pw {
		return ErrInvalidCredentials
	}
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	hasher := &plainHasher{}
	svc := NewServiceWithHasher(memory.NewStore().Users(), hasher)

	u, err := svc.Register(ctx, RegisterInput{Email: "  Rita@Example.com ", Name: " Rita ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "rita@example.com", u.Email)
	assert.Equal(t, "Rita", u.Name)
	assert.Empty(t, u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())

	_, err = svc.Register(ctx, RegisterInput{Email: "rita@example.com", Password: "password456"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	got, err := svc.Login(ctx, LoginInput{Email: "RITA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.Login(ctx, LoginInput{Email: "rita@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailStillCompares(t *testing.T) {
	hasher := &plainHasher{}
	svc := NewServiceWithHasher(memory.NewStore().Users(), hasher)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{svc.decoy}, hasher.compared)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := NewServiceWithHasher(memory.NewStore().Users(), &plainHasher{})
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"no email":      {Password: "password123"},
		"not an email":  {Email: "rita", Password: "password123"},
		"short":         {Email: "a@b.co", Password: "short"},
		"blank padded":  {Email: "a@b.co", Password: "   abc    "},
		"over 72 bytes": {Email: "a@b.co", Password: strings.Repeat("x", 73)},
	}
	for name, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, name)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	hash, err := h.Hash("password123")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "password123"))
	assert.Error(t, h.Compare(hash, "password124"))
}
