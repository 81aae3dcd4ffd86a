package postgres

import (
	"context"
	"errors"

	"userhub/internal/db"
	"userhub/internal/domain/user"
	"userhub/internal/observability"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UsersRepo runs one statement per operation. Every method leases its
// own handle and releases it before returning, so a handle never
// outlives the request that acquired it.
type UsersRepo struct {
	mgr  db.Manager
	prom *observability.Prom
}

func NewUsersRepo(mgr db.Manager, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{mgr: mgr, prom: prom}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}
	return false
}

func (r *UsersRepo) Insert(ctx context.Context, u user.User) (user.User, error) {
	h, err := r.mgr.Acquire(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer h.Release()

	err = r.observe("users.insert", func() error {
		return h.QueryRow(
			ctx,
			`INSERT INTO users (id, email, name, password_hash)
	         VALUES ($1, $2, $3, $4)
	         RETURNING created_at`,
			u.ID,
			u.Email,
			u.Name,
			u.PasswordHash,
		).Scan(&u.CreatedAt)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	h, err := r.mgr.Acquire(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer h.Release()

	var u user.User

	err = r.observe("users.get_by_email", func() error {
		return h.QueryRow(
			ctx,
			`SELECT id, email, name, password_hash, created_at
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Name,
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

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	h, err := r.mgr.Acquire(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer h.Release()

	var u user.User

	err = r.observe("users.get_by_id", func() error {
		return h.QueryRow(
			ctx,
			`SELECT id, email, name, password_hash, created_at
	         FROM users
	         WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Name,
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

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	h, err := r.mgr.Acquire(ctx)

	if err != nil {
		return nil, err
	}

	defer h.Release()

	output := make([]user.User, 0)

	err = r.observe("users.list", func() error {
		rows, err := h.Query(
			ctx,
			`SELECT id, email, name, password_hash, created_at
	         FROM users
	         ORDER BY created_at DESC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)

			if err != nil {
				return err
			}

			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

// Delete removes the row and returns it, so the handler can echo the
// deleted user. A second delete of the same id reports ErrNotFound.
func (r *UsersRepo) Delete(ctx context.Context, id string) (user.User, error) {
	h, err := r.mgr.Acquire(ctx)

	if err != nil {
		return user.User{}, err
	}

	defer h.Release()

	var u user.User

	err = r.observe("users.delete", func() error {
		return h.QueryRow(
			ctx,
			`DELETE FROM users
	         WHERE id = $1
	         RETURNING id, email, name, password_hash, created_at`,
			id,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Name,
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
