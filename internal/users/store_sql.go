// Package users holds account storage and credential checks for the
// local login flow.
package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/examforge/examforge/internal/apperr"
)

const bcryptCost = 12

type User struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"` // "user" or "admin"
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Register creates an account with a bcrypt-hashed password. The role
// is always "user"; admins are provisioned out of band.
func (s *SQLStore) Register(ctx context.Context, username, password, fullName string) (User, error) {
	if username == "" || password == "" {
		return User{}, apperr.InvalidArgument("username and password required")
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username=$1`, username).Scan(&exists)
	if err == nil {
		return User{}, apperr.Conflict("username already taken")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, err
	}
	u := User{Username: username, FullName: fullName, Role: "user"}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, full_name, role, created_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING user_id`,
		username, string(hash), fullName, u.Role, time.Now().Unix()).Scan(&u.ID)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate verifies the password and returns the account.
func (s *SQLStore) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, hash, err := s.byUsername(ctx, username)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, apperr.Unauthorized("invalid credentials")
	}
	return u, nil
}

func (s *SQLStore) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if newPassword == "" {
		return apperr.InvalidArgument("new password required")
	}
	u, hash, err := s.byUsername(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPassword)) != nil {
		return apperr.Unauthorized("invalid credentials")
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE user_id=$2`, string(newHash), u.ID)
	return err
}

// Delete removes the account after re-checking the password.
func (s *SQLStore) Delete(ctx context.Context, username, password string) error {
	u, hash, err := s.byUsername(ctx, username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return apperr.Unauthorized("invalid credentials")
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id=$1`, u.ID)
	return err
}

func (s *SQLStore) byUsername(ctx context.Context, username string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, password_hash, full_name, role FROM users WHERE username=$1`,
		username).Scan(&u.ID, &u.Username, &hash, &u.FullName, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return User{}, "", err
	}
	return u, hash, nil
}
