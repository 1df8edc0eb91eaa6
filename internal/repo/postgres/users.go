package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/geocoder89/authhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {

		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new credential record. Uniqueness is enforced entirely by
// the users_email_uniq constraint, so a duplicate never mutates the store.
func (repo *UsersRepo) Create(ctx context.Context, email string, passwordHash []byte) (u user.User, err error) {
	u = user.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err = repo.observe("users.create", func() error {
		return repo.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, created_at)
		VALUES ($1,$2,$3)
		RETURNING id
	`, u.Email, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_uniq" {
			err = user.ErrEmailTaken
		}

		u = user.User{}
		return
	}

	return
}

func (repo *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := repo.observe("users.get_by_email", func() error {
		return repo.pool.QueryRow(
			ctx,
			`SELECT id, email, password_hash, created_at
         FROM users
         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {

			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// ListAll returns every registered user ordered by ascending id. The listing
// is recomputed on each call, never cached.
func (repo *UsersRepo) ListAll(ctx context.Context) (listings []user.Listing, err error) {
	var rows pgx.Rows

	err = repo.observe("users.list_all", func() error {
		var e error
		rows, e = repo.pool.Query(ctx, `SELECT id, email FROM users ORDER BY id ASC`)
		return e
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	listings = make([]user.Listing, 0)

	for rows.Next() {
		var l user.Listing

		if err = rows.Scan(&l.ID, &l.Email); err != nil {
			return nil, err
		}

		listings = append(listings, l)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}
