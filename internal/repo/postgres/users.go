package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/userapi/internal/domain/user"
	"github.com/geocoder89/userapi/internal/observability"
	"github.com/jackc/pgx/v5"
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

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.prom.ObserveDB("users.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, created_at, updated_at
			FROM users
			ORDER BY created_at ASC, id ASC`)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.get_by_id", func() error {
		err := r.pool.QueryRow(ctx,
			`SELECT id, name, email, created_at, updated_at FROM users WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)

		if errors.Is(err, pgx.ErrNoRows) {
			return user.ErrNotFound
		}

		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Name, u.Email, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Update patches only the non-nil fields and refreshes updated_at.
// No matching row is not an error here; callers re-read to find out.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) error {
	return r.prom.ObserveDB("users.update", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users
				SET name = COALESCE($2, name),
					email = COALESCE($3, email),
					updated_at = GREATEST($4, updated_at + INTERVAL '1 microsecond')
			WHERE id = $1`,
			id,
			req.Name,
			req.Email,
			user.Now(),
		)
		return err
	})
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.prom.ObserveDB("users.delete", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
