package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/authhub/internal/domain/user"
)

type UsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		byID: make(map[int64]user.User),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email string, passwordHash []byte) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.nextID++

	u := user.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	r.byID[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) ListAll(ctx context.Context) ([]user.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]user.Listing, 0, len(r.byID))

	for _, u := range r.byID {
		listings = append(listings, user.Listing{ID: u.ID, Email: u.Email})
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].ID < listings[j].ID })

	return listings, nil
}
