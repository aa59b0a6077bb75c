package auth

import (
	"context"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/m4dzi4/pict-io-sub000/internal"
)

// UserRepo is the durable-store collaborator for accounts.
type UserRepo interface {
	CreateUser(ctx context.Context, username, passwordHash string) (string, error)
	GetUserByUsername(ctx context.Context, username string) (internal.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenManager interface {
	Generate(accountID, username string, now time.Time) (string, error)
	Verify(token string) (accountID, username string, err error)
}

var usernameRe = regexp.MustCompile(`^[a-z0-9_]{3,20}$`)

const minPasswordLength = 8

// Service implements register/login on top of the store, hasher and
// token manager.
type Service struct {
	users  UserRepo
	hasher PasswordHasher
	tokens TokenManager
}

func NewService(users UserRepo, hasher PasswordHasher, tokens TokenManager) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if !usernameRe.MatchString(username) {
		return "", internal.ErrInvalidUsername
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", internal.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	accountID, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		return "", err
	}
	return s.tokens.Generate(accountID, username, time.Now())
}

func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return "", internal.ErrBadCredentials
		}
		return "", err
	}

	match, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !match {
		return "", internal.ErrBadCredentials
	}
	return s.tokens.Generate(user.ID, user.Username, time.Now())
}

// Verify satisfies the gateway's TokenVerifier.
func (s *Service) Verify(token string) (string, string, error) {
	return s.tokens.Verify(token)
}
