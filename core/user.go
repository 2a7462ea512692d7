package core

import (
	"context"
	"time"
)

type (
	// User is a registered account. PasswordHash is a bcrypt digest and is
	// never serialized.
	User struct {
		ID           string    `json:"_id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	// UserStore defines the persistence layer for accounts.
	UserStore interface {
		// CreateUser stores a new user. It fails if the email is taken.
		CreateUser(ctx context.Context, user *User) error

		// FindUserByEmail returns the user registered under email.
		FindUserByEmail(ctx context.Context, email string) (*User, error)

		// FindUserByID returns the user with the given ID.
		FindUserByID(ctx context.Context, id string) (*User, error)
	}
)
