package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists directory records.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// execAffectingOne runs a statement that must touch exactly one row,
// mapping zero rows to ErrNotFound and blocked foreign keys to ErrInUse.
func (s *PostgresStore) execAffectingOne(ctx context.Context, query string, args ...interface{}) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := s.Pool.Exec(queryCtx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func paginate(query string, args []interface{}, f ListFilter) (string, []interface{}) {
	argCount := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, f.Limit)
		argCount++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, f.Offset)
	}
	return query, args
}

func (s *PostgresStore) CreateCondominium(ctx context.Context, c *Condominium) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO condominiums (id, name, address, city)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.Name, c.Address, c.City).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert condominium: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCondominiums(ctx context.Context, f ListFilter) ([]*Condominium, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, name, address, city, created_at
		FROM condominiums
		ORDER BY name
	`
	query, args := paginate(query, nil, f)

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query condominiums: %w", err)
	}
	defer rows.Close()

	var out []*Condominium
	for rows.Next() {
		var c Condominium
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan condominium: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetCondominium(ctx context.Context, id string) (*Condominium, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Condominium
	err := s.Pool.QueryRow(queryCtx, `
		SELECT id, name, address, city, created_at
		FROM condominiums
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get condominium: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateBuilding(ctx context.Context, b *Building) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO buildings (id, condominium_id, name, floors)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, b.ID, b.CondominiumID, b.Name, b.Floors).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert building: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBuildings(ctx context.Context, f ListFilter) ([]*Building, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, condominium_id, name, floors, created_at
		FROM buildings
		WHERE 1=1
	`
	var args []interface{}
	if f.CondominiumID != "" {
		args = append(args, f.CondominiumID)
		query += fmt.Sprintf(" AND condominium_id = $%d", len(args))
	}
	query += " ORDER BY name"
	query, args = paginate(query, args, f)

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	defer rows.Close()

	var out []*Building
	for rows.Next() {
		var b Building
		if err := rows.Scan(&b.ID, &b.CondominiumID, &b.Name, &b.Floors, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateUnit(ctx context.Context, u *Unit) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var owner interface{}
	if u.OwnerID != "" {
		owner = u.OwnerID
	}

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO units (id, building_id, number, floor, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.BuildingID, u.Number, u.Floor, owner).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert unit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUnits(ctx context.Context, f ListFilter) ([]*Unit, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, building_id, number, floor, COALESCE(owner_id::text, ''), created_at
		FROM units
		WHERE 1=1
	`
	var args []interface{}
	if f.BuildingID != "" {
		args = append(args, f.BuildingID)
		query += fmt.Sprintf(" AND building_id = $%d", len(args))
	}
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		query += fmt.Sprintf(" AND owner_id = $%d", len(args))
	}
	query += " ORDER BY number"
	query, args = paginate(query, args, f)

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var out []*Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.BuildingID, &u.Number, &u.Floor, &u.OwnerID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateOwner(ctx context.Context, o *Owner) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO owners (id, name, email, phone, document)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, o.ID, o.Name, o.Email, o.Phone, o.Document).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListOwners(ctx context.Context, f ListFilter) ([]*Owner, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, name, email, phone, document, created_at
		FROM owners
		ORDER BY name
	`
	query, args := paginate(query, nil, f)

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()

	var out []*Owner
	for rows.Next() {
		var o Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Document, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetOwner(ctx context.Context, id string) (*Owner, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Owner
	err := s.Pool.QueryRow(queryCtx, `
		SELECT id, name, email, phone, document, created_at
		FROM owners
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Document, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}
	return &o, nil
}

func (s *PostgresStore) CreateTenant(ctx context.Context, t *Tenant) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.Pool.QueryRow(queryCtx, `
		INSERT INTO tenants (id, unit_id, name, phone, since)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.UnitID, t.Name, t.Phone, t.Since).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTenants(ctx context.Context, f ListFilter) ([]*Tenant, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, unit_id, name, phone, since, created_at
		FROM tenants
		WHERE 1=1
	`
	var args []interface{}
	if f.UnitID != "" {
		args = append(args, f.UnitID)
		query += fmt.Sprintf(" AND unit_id = $%d", len(args))
	}
	query += " ORDER BY name"
	query, args = paginate(query, args, f)

	rows, err := s.Pool.Query(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var out []*Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.UnitID, &t.Name, &t.Phone, &t.Since, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateCondominium(ctx context.Context, c *Condominium) error {
	return s.execAffectingOne(ctx, `
		UPDATE condominiums SET name = $2, address = $3, city = $4
		WHERE id = $1
	`, c.ID, c.Name, c.Address, c.City)
}

func (s *PostgresStore) DeleteCondominium(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, `DELETE FROM condominiums WHERE id = $1`, id)
}

func (s *PostgresStore) UpdateBuilding(ctx context.Context, b *Building) error {
	return s.execAffectingOne(ctx, `
		UPDATE buildings SET name = $2, floors = $3
		WHERE id = $1
	`, b.ID, b.Name, b.Floors)
}

func (s *PostgresStore) DeleteBuilding(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, `DELETE FROM buildings WHERE id = $1`, id)
}

func (s *PostgresStore) UpdateUnit(ctx context.Context, u *Unit) error {
	var owner interface{}
	if u.OwnerID != "" {
		owner = u.OwnerID
	}
	return s.execAffectingOne(ctx, `
		UPDATE units SET number = $2, floor = $3, owner_id = $4
		WHERE id = $1
	`, u.ID, u.Number, u.Floor, owner)
}

func (s *PostgresStore) DeleteUnit(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, `DELETE FROM units WHERE id = $1`, id)
}

func (s *PostgresStore) UpdateOwner(ctx context.Context, o *Owner) error {
	return s.execAffectingOne(ctx, `
		UPDATE owners SET name = $2, email = $3, phone = $4, document = $5
		WHERE id = $1
	`, o.ID, o.Name, o.Email, o.Phone, o.Document)
}

func (s *PostgresStore) DeleteOwner(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, `DELETE FROM owners WHERE id = $1`, id)
}

func (s *PostgresStore) UpdateTenant(ctx context.Context, t *Tenant) error {
	return s.execAffectingOne(ctx, `
		UPDATE tenants SET name = $2, phone = $3, since = $4
		WHERE id = $1
	`, t.ID, t.Name, t.Phone, t.Since)
}

func (s *PostgresStore) DeleteTenant(ctx context.Context, id string) error {
	return s.execAffectingOne(ctx, `DELETE FROM tenants WHERE id = $1`, id)
}
