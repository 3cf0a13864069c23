// Package auth implements the registration and login workflow: one atomic
// validate-then-act sequence per call, no state between calls.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"tasknest/internal/apperr"
	"tasknest/internal/db"
	"tasknest/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// HashFunc turns a plaintext password into its stored form.
type HashFunc func(password string) string

// HashPassword is the stored password form: lowercase-hex SHA-256 of the
// raw password bytes.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type Service struct {
	store *db.Store
	hash  HashFunc
	log   *slog.Logger

	now func() int64
}

func NewService(store *db.Store, hash HashFunc, log *slog.Logger) *Service {
	if hash == nil {
		hash = HashPassword
	}
	return &Service{store: store, hash: hash, log: log, now: model.NowMillis}
}

// Register validates the form, checks username uniqueness and inserts the
// user. The returned user carries no password hash. The session store is
// untouched; recording the active user is the caller's job.
func (s *Service) Register(ctx context.Context, username, displayName, password, confirmPassword string) (model.User, error) {
	if len(username) < 3 {
		return model.User{}, apperr.Validation("username must be at least 3 characters")
	}
	if !usernamePattern.MatchString(username) {
		return model.User{}, apperr.Validation("username may only contain letters, digits and underscores")
	}
	if strings.TrimSpace(displayName) == "" {
		return model.User{}, apperr.Validation("display name cannot be empty")
	}
	if len(password) < 6 {
		return model.User{}, apperr.Validation("password must be at least 6 characters")
	}
	if password != confirmPassword {
		return model.User{}, apperr.Validation("passwords do not match")
	}

	createdAt := s.now()
	id, err := s.store.InsertUser(ctx, username, displayName, s.hash(password), createdAt)
	if err != nil {
		return model.User{}, err
	}

	s.log.Info("user registered", "user_id", id, "username", username)

	return model.User{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}, nil
}

// Login verifies the credentials and returns the matching user without the
// password hash.
func (s *Service) Login(ctx context.Context, username, password string) (model.User, error) {
	if strings.TrimSpace(username) == "" {
		return model.User{}, apperr.Validation("username cannot be empty")
	}
	if strings.TrimSpace(password) == "" {
		return model.User{}, apperr.Validation("password cannot be empty")
	}

	record, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.User{}, apperr.Auth("user not found")
		}
		return model.User{}, err
	}

	candidate := s.hash(password)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(record.PasswordHash)) != 1 {
		return model.User{}, apperr.Auth("invalid password")
	}

	return model.User{
		ID:          record.ID,
		Username:    record.Username,
		DisplayName: record.DisplayName,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// UserByID resolves a stored user to its domain form, hash stripped.
func (s *Service) UserByID(ctx context.Context, id int64) (model.User, error) {
	record, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:          record.ID,
		Username:    record.Username,
		DisplayName: record.DisplayName,
		CreatedAt:   record.CreatedAt,
	}, nil
}
