package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"spellaudit/internal/core"
)

type AuthService struct {
	users  core.UserRepository
	logins core.LoginRepository
}

func NewAuthService(users core.UserRepository, logins core.LoginRepository) *AuthService {
	return &AuthService{users: users, logins: logins}
}

// hashToken digests the secondary token for at-rest storage. A digest keeps
// the exact-match semantics without holding the token in plaintext.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register creates a standard (non-admin) user.
func (s *AuthService) Register(username, password, token string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", core.ErrValidation)
	}

	existing, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: username already taken", core.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.Create(&core.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		TwoFADigest:  hashToken(token),
	})
}

// Authenticate verifies username, password and secondary token, and opens a
// login record on success. Unknown user and wrong password both come back as
// ErrIncorrect so callers cannot enumerate usernames; only a wrong token
// after a correct password gets the more specific ErrTwoFactor.
func (s *AuthService) Authenticate(username, password, token string) (*core.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.ErrIncorrect
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, core.ErrIncorrect
	}

	if hashToken(token) != user.TwoFADigest {
		return nil, core.ErrTwoFactor
	}

	if _, err := s.logins.Open(user.Username, time.Now()); err != nil {
		return nil, fmt.Errorf("open login record: %w", err)
	}
	return user, nil
}

// Logout closes the earliest open login record for username.
func (s *AuthService) Logout(username string) error {
	return s.logins.CloseEarliestOpen(username, time.Now())
}

// EnsureAdmin creates the bootstrap admin user if it is missing. Safe to run
// on every startup.
func (s *AuthService) EnsureAdmin(username, password, token string) error {
	existing, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.Create(&core.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		TwoFADigest:  hashToken(token),
		IsAdmin:      true,
	})
}

// ResetPassword resets a user's password by username (CLI use).
func (s *AuthService) ResetPassword(username, newPassword string) error {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user not found: %s", username)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hashedPassword)
	return s.users.Update(user)
}
