package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is internal to the auth path: the login operation
// reports it to callers as ErrInvalidCredentials so that missing and
// mistyped accounts are indistinguishable from outside.
var ErrUserNotFound = errors.New("user not found")

// User models a canteen operator account. Students never log in; only
// staff and administrators hold credentials.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
