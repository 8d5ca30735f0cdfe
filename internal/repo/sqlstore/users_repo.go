// Package sqlstore implements the users store on database/sql so the service can
// run against any of the supported drivers (postgres via lib/pq, mysql, sqlite3).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/userapi/internal/domain/user"
	"github.com/geocoder89/userapi/internal/observability"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
)

type UsersRepo struct {
	db      *sql.DB
	dialect Dialect
	prom    *observability.Prom
}

func NewUsersRepo(db *sql.DB, dialect Dialect, prom *observability.Prom) (*UsersRepo, error) {
	switch dialect {
	case Postgres, MySQL, SQLite:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}

	return &UsersRepo{db: db, dialect: dialect, prom: prom}, nil
}

// rebind rewrites ? placeholders into $n for postgres.
func (r *UsersRepo) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}

	return b.String()
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.prom.ObserveDB("users.list", func() error {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, name, email, created_at, updated_at FROM users ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
				return err
			}
			out = append(out, normalize(u))
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
		err := r.db.QueryRowContext(ctx,
			r.rebind(`SELECT id, name, email, created_at, updated_at FROM users WHERE id = ?`),
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)

		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrNotFound
		}

		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return normalize(u), nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.NewFromCreateRequest(req)

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.db.ExecContext(ctx,
			r.rebind(`INSERT INTO users (id, name, email, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`),
			u.ID, u.Name, u.Email, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Update patches only the non-nil fields. updated_at is read and bumped in the
// same transaction so it never moves backwards; an unknown id is a no-op.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) error {
	return r.prom.ObserveDB("users.update", func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var prev time.Time
		err = tx.QueryRowContext(ctx,
			r.rebind(`SELECT updated_at FROM users WHERE id = ?`+r.lockClause()), id,
		).Scan(&prev)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			r.rebind(`UPDATE users
				SET name = COALESCE(?, name),
					email = COALESCE(?, email),
					updated_at = ?
				WHERE id = ?`),
			nullable(req.Name),
			nullable(req.Email),
			user.NextUpdatedAt(prev.UTC(), user.Now()),
			id,
		)
		if err != nil {
			return err
		}

		return tx.Commit()
	})
}

// lockClause row-locks the read in Update; sqlite locks the whole database on write instead.
func (r *UsersRepo) lockClause() string {
	if r.dialect == SQLite {
		return ""
	}

	return " FOR UPDATE"
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	return r.prom.ObserveDB("users.delete", func() error {
		_, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM users WHERE id = ?`), id)
		return err
	})
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func normalize(u user.User) user.User {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()

	return u
}
