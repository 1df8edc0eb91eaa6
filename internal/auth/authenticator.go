package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/geocoder89/authhub/internal/observability"
	"github.com/geocoder89/authhub/internal/security"
)

var (
	// rejected before any I/O; fields are taken exactly as supplied, no trimming
	ErrEmptyCredentials = errors.New("email and password are required")

	// covers both unknown email and wrong password so callers cannot tell them apart
	ErrInvalidCredentials = errors.New("email or password is incorrect")
)

// Keep this small interface so tests can fake it easily.
type UserStore interface {
	Create(ctx context.Context, email string, passwordHash []byte) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type Authenticator struct {
	store UserStore
	prom  *observability.Prom
}

func NewAuthenticator(store UserStore, prom *observability.Prom) *Authenticator {
	return &Authenticator{
		store: store,
		prom:  prom,
	}
}

// Register creates a credential record for a never-before-used email.
// Duplicate emails and store failures stay distinct error values here; the
// HTTP layer collapses them into one generic failure message.
func (a *Authenticator) Register(ctx context.Context, email, password string) (user.User, error) {
	if email == "" || password == "" {
		return user.User{}, ErrEmptyCredentials
	}

	var hash []byte
	var err error

	a.observeHash(func() {
		hash, err = security.HashPassword(password)
	})

	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := a.store.Create(ctx, email, hash)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, err
		}

		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

// Authenticate verifies email+password and returns the user id on success.
// When no record matches the email, it still burns a bcrypt comparison on a
// dummy hash so the miss costs the same as a wrong password.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (int64, error) {
	if email == "" || password == "" {
		return 0, ErrEmptyCredentials
	}

	u, err := a.store.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			a.observeHash(func() {
				security.CheckDummyPassword(password)
			})

			return 0, ErrInvalidCredentials
		}

		return 0, fmt.Errorf("lookup user: %w", err)
	}

	var checkErr error

	a.observeHash(func() {
		checkErr = security.CheckPassword(u.PasswordHash, password)
	})

	if checkErr != nil {
		return 0, ErrInvalidCredentials
	}

	return u.ID, nil
}

func (a *Authenticator) observeHash(fn func()) {
	if a.prom == nil {
		fn()
		return
	}

	start := time.Now()
	fn()
	a.prom.HashDuration.Observe(time.Since(start).Seconds())
}
