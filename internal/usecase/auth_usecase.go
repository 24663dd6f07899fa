package usecase

import (
	"context"
	"errors"

	"hireboard/internal/domain/user"
	"hireboard/internal/pkg/jwt"
	ucauth "hireboard/internal/usecase/auth"

	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthSession is what register and login hand back to the client.
type AuthSession struct {
	User user.User `json:"user"`
	TokenPair
}

type AuthUsecase interface {
	Register(ctx context.Context, in ucauth.RegisterInput) (AuthSession, error)
	Login(ctx context.Context, in ucauth.LoginInput) (AuthSession, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (user.User, error)
}

type Auth struct {
	credentials *ucauth.Service
	users       user.Repository
	jwt         jwt.Service
}

func NewAuthUsecase(users user.Repository, jwtSvc jwt.Service) *Auth {
	return &Auth{credentials: ucauth.NewService(users), users: users, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in ucauth.RegisterInput) (AuthSession, error) {
	return u.open(u.credentials.Register(ctx, in))
}

func (u *Auth) Login(ctx context.Context, in ucauth.LoginInput) (AuthSession, error) {
	return u.open(u.credentials.Login(ctx, in))
}

func (u *Auth) open(recruiter user.User, err error) (AuthSession, error) {
	if err != nil {
		return AuthSession{}, err
	}
	pair, err := u.issue(recruiter)
	if err != nil {
		return AuthSession{}, err
	}
	return AuthSession{User: recruiter, TokenPair: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. Name and email are
// re-read so renamed recruiters get fresh access claims.
func (u *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if refreshToken == "" {
		return TokenPair{}, ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenPair{}, ErrRefreshTokenExpired
	case err != nil, !u.jwt.IsRefreshToken(claims):
		return TokenPair{}, ErrInvalidRefreshToken
	}

	recruiter, err := u.users.GetByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return TokenPair{}, ErrUnauthorized
	case err != nil:
		return TokenPair{}, ErrInternal
	}
	return u.issue(recruiter)
}

func (u *Auth) Me(ctx context.Context, userID uuid.UUID) (user.User, error) {
	recruiter, err := u.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return user.User{}, ErrNotFound
	case err != nil:
		return user.User{}, ErrInternal
	}
	recruiter.PasswordHash = ""
	return recruiter, nil
}

func (u *Auth) issue(recruiter user.User) (TokenPair, error) {
	access, err := u.jwt.GenerateAccessToken(recruiter.ID, recruiter.Email, recruiter.DisplayName())
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(recruiter.ID)
	if err != nil {
		return TokenPair{}, ErrInternal
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
