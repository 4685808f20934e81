package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"user-service/internal/database"
	"user-service/internal/domain"
	"user-service/internal/repository"
)

var createUsersTable = map[database.Dialect]string{
	database.SQLite: `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
`,
	database.Postgres: `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
`,
}

type UserRepository struct {
	pool *database.Pool
}

func NewUserRepository(pool *database.Pool) repository.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Init(ctx context.Context) error {
	stmt, ok := createUsersTable[r.pool.Dialect]
	if !ok {
		return fmt.Errorf("no users schema for dialect %q", r.pool.Dialect)
	}
	if _, err := r.pool.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, username domain.Username, password domain.Password) (*domain.User, error) {
	row := r.pool.QueryRowContext(ctx, r.pool.Dialect.Rebind(`
INSERT INTO users (id, username, password)
VALUES (?, ?, ?)
RETURNING id, username, password`),
		domain.NewUserID(),
		username,
		password,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, storageError("insert user", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	row := r.pool.QueryRowContext(ctx, r.pool.Dialect.Rebind(`
SELECT id, username, password
FROM users
WHERE id = ?`),
		id,
	)
	return lookup(row, "get user by id")
}

func (r *UserRepository) GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error) {
	row := r.pool.QueryRowContext(ctx, r.pool.Dialect.Rebind(`
SELECT id, username, password
FROM users
WHERE username = ?`),
		username,
	)
	return lookup(row, "get user by username")
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.QueryContext(ctx, `SELECT id, username, password FROM users`)
	if err != nil {
		return nil, storageError("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storageError("list users", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate users", err)
	}
	return users, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id domain.UserID, password domain.Password) (int64, error) {
	res, err := r.pool.ExecContext(ctx, r.pool.Dialect.Rebind(`UPDATE users SET password = ? WHERE id = ?`), password, id)
	if err != nil {
		return 0, storageError("update user password", err)
	}
	return rowsAffected(res, "update user password")
}

func (r *UserRepository) Delete(ctx context.Context, id domain.UserID) (int64, error) {
	res, err := r.pool.ExecContext(ctx, r.pool.Dialect.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return 0, storageError("delete user", err)
	}
	return rowsAffected(res, "delete user")
}

func lookup(row *sql.Row, op string) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storageError(op, err)
	}
	return user, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageError(op, err)
	}
	return n, nil
}

func storageError(op string, err error) error {
	return &repository.StorageError{Op: op, Err: err}
}
