package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserStore resolves users and role permissions from postgres.
type PostgresUserStore struct {
	Pool *pgxpool.Pool
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if s.Pool == nil {
		return nil, errors.New("missing pool")
	}

	var u User
	err := s.Pool.QueryRow(ctx, `
		SELECT id, email, name, role, password_hash, is_active
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, u *User) error {
	if s.Pool == nil {
		return errors.New("missing pool")
	}

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Email, u.Name, u.Role, u.PasswordHash, u.IsActive)
	return err
}

func (s *PostgresUserStore) ListUsers(ctx context.Context) ([]*User, error) {
	if s.Pool == nil {
		return nil, errors.New("missing pool")
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, email, name, role, password_hash, is_active
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) ListRoles(ctx context.Context) (map[string][]string, error) {
	if s.Pool == nil {
		return nil, errors.New("missing pool")
	}

	rows, err := s.Pool.Query(ctx, `SELECT name, permissions FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var name string
		var perms []string
		if err := rows.Scan(&name, &perms); err != nil {
			return nil, err
		}
		out[name] = perms
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) GetRolePermissions(ctx context.Context, role string) ([]string, error) {
	if s.Pool == nil {
		return nil, errors.New("missing pool")
	}

	var perms []string
	err := s.Pool.QueryRow(ctx, `SELECT permissions FROM roles WHERE name = $1`, role).Scan(&perms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown role: a valid login with no permissions, not an error.
			return nil, nil
		}
		return nil, err
	}
	return perms, nil
}
