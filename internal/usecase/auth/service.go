// Package auth owns recruiter credentials: password policy, hashing and
// the register/login checks. Token issuing lives one level up.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hireboard/internal/domain/user"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72
)

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// Hasher turns passwords into stored hashes and back.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type Service struct {
	users  user.Repository
	hasher Hasher
	now    func() time.Time

	// compared against on unknown emails so both login failures cost the same
	decoy string
}

func NewService(users user.Repository) *Service {
	return NewServiceWithHasher(users, BcryptHasher{})
}

func NewServiceWithHasher(users user.Repository, hasher Hasher) *Service {
	decoy, _ := hasher.Hash("hireboard-decoy-password")
	return &Service{users: users, hasher: hasher, now: time.Now, decoy: decoy}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, ErrInvalidInput
	}
	if err := CheckPassword(in.Password); err != nil {
		return user.User{}, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return user.User{}, ErrInternal
	}

	now := s.now().UTC()
	recruiter := user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, recruiter); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	recruiter.PasswordHash = ""
	return recruiter, nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	recruiter, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		_ = s.hasher.Compare(s.decoy, in.Password)
		return user.User{}, ErrInvalidCredentials
	case err != nil:
		return user.User{}, ErrInternal
	}

	if err := s.hasher.Compare(recruiter.PasswordHash, in.Password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	recruiter.PasswordHash = ""
	return recruiter, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPassword enforces the length policy shared by register and the seeder.
func CheckPassword(pw string) error {
	if len(strings.TrimSpace(pw)) < MinPasswordLength || len(pw) > MaxPasswordBytes {
		return ErrInvalidInput
	}
	return nil
}
