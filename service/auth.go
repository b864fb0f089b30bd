package service

import (
	"conference-app/database"
	apperrors "conference-app/errors"
	"conference-app/model"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func isPasswordHashCorrect(dbHash, pass string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(dbHash), []byte(pass))
	return err == nil
}

// Authenticate checks login credentials and returns the matching account.
func (s *Service) Authenticate(ctx context.Context, creds model.Credentials) (model.UserData, error) {
	if err := validationError("Credentials", creds); err != nil {
		return model.UserData{}, err
	}

	user, err := s.store.GetUserData(ctx, creds.Login)
	if errors.Is(err, database.ErrNotFound) {
		return model.UserData{}, apperrors.Unauthorized("Invalid login or password")
	}
	if err != nil {
		return model.UserData{}, fmt.Errorf("loading user %v: %w", creds.Login, err)
	}
	if !isPasswordHashCorrect(user.HashedPassword, creds.Password) {
		return model.UserData{}, apperrors.Unauthorized("Invalid login or password")
	}
	return user, nil
}

// EnsureUser creates or replaces an account, hashing its password with bcrypt.
func (s *Service) EnsureUser(ctx context.Context, login, password, role, email string) error {
	if login == "" || password == "" {
		return fmt.Errorf("login and password are required")
	}
	if role == "" {
		role = model.ROLE_USER
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password of %v: %w", login, err)
	}
	return s.store.SaveUserData(ctx, model.UserData{
		Login:          login,
		HashedPassword: string(hash),
		Role:           role,
		Email:          email,
	})
}
