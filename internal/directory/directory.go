// Package directory manages the condominium estate records: condominiums,
// their buildings and units, and the people attached to them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Condominium is a managed property complex.
type Condominium struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	CreatedAt string `json:"created_at"`
}

// Building is one building inside a condominium.
type Building struct {
	ID            string `json:"id"`
	CondominiumID string `json:"condominium_id"`
	Name          string `json:"name"`
	Floors        int    `json:"floors"`
	CreatedAt     string `json:"created_at"`
}

// Unit is an apartment or commercial space inside a building.
type Unit struct {
	ID         string `json:"id"`
	BuildingID string `json:"building_id"`
	Number     string `json:"number"`
	Floor      int    `json:"floor"`
	OwnerID    string `json:"owner_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Owner is the registered owner of one or more units.
type Owner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Document  string `json:"document"`
	CreatedAt string `json:"created_at"`
}

// Tenant is a person renting a unit from its owner.
type Tenant struct {
	ID        string `json:"id"`
	UnitID    string `json:"unit_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Since     string `json:"since"`
	CreatedAt string `json:"created_at"`
}

// ErrNotFound is returned for lookups that match no record.
var ErrNotFound = errors.New("record not found")

// ErrInUse is returned when a delete is blocked by records that still
// reference the target.
var ErrInUse = errors.New("record is referenced by other records")

// ListFilter narrows listings; zero values mean no restriction.
type ListFilter struct {
	CondominiumID string
	BuildingID    string
	UnitID        string
	OwnerID       string
	Limit         int
	Offset        int
}

// Store is the persistence surface for directory records.
type Store interface {
	CreateCondominium(ctx context.Context, c *Condominium) error
	UpdateCondominium(ctx context.Context, c *Condominium) error
	DeleteCondominium(ctx context.Context, id string) error
	ListCondominiums(ctx context.Context, f ListFilter) ([]*Condominium, error)
	GetCondominium(ctx context.Context, id string) (*Condominium, error)

	CreateBuilding(ctx context.Context, b *Building) error
	UpdateBuilding(ctx context.Context, b *Building) error
	DeleteBuilding(ctx context.Context, id string) error
	ListBuildings(ctx context.Context, f ListFilter) ([]*Building, error)

	CreateUnit(ctx context.Context, u *Unit) error
	UpdateUnit(ctx context.Context, u *Unit) error
	DeleteUnit(ctx context.Context, id string) error
	ListUnits(ctx context.Context, f ListFilter) ([]*Unit, error)

	CreateOwner(ctx context.Context, o *Owner) error
	UpdateOwner(ctx context.Context, o *Owner) error
	DeleteOwner(ctx context.Context, id string) error
	ListOwners(ctx context.Context, f ListFilter) ([]*Owner, error)
	GetOwner(ctx context.Context, id string) (*Owner, error)

	CreateTenant(ctx context.Context, t *Tenant) error
	UpdateTenant(ctx context.Context, t *Tenant) error
	DeleteTenant(ctx context.Context, id string) error
	ListTenants(ctx context.Context, f ListFilter) ([]*Tenant, error)
}

// Service validates and creates directory records. Listing goes straight
// through to the store.
type Service struct {
	store Store
}

// NewService creates a directory service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateCondominium(ctx context.Context, c Condominium) (*Condominium, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("condominium name is required")
	}

	c.ID = uuid.NewString()
	if err := s.store.CreateCondominium(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to create condominium: %w", err)
	}
	return &c, nil
}

func (s *Service) CreateBuilding(ctx context.Context, b Building) (*Building, error) {
	if b.CondominiumID == "" {
		return nil, fmt.Errorf("condominium ID is required")
	}
	if b.Name == "" {
		return nil, fmt.Errorf("building name is required")
	}
	if _, err := s.store.GetCondominium(ctx, b.CondominiumID); err != nil {
		return nil, fmt.Errorf("failed to resolve condominium: %w", err)
	}

	b.ID = uuid.NewString()
	if err := s.store.CreateBuilding(ctx, &b); err != nil {
		return nil, fmt.Errorf("failed to create building: %w", err)
	}
	return &b, nil
}

func (s *Service) CreateUnit(ctx context.Context, u Unit) (*Unit, error) {
	if u.BuildingID == "" {
		return nil, fmt.Errorf("building ID is required")
	}
	if u.Number == "" {
		return nil, fmt.Errorf("unit number is required")
	}

	u.ID = uuid.NewString()
	if err := s.store.CreateUnit(ctx, &u); err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}
	return &u, nil
}

func (s *Service) CreateOwner(ctx context.Context, o Owner) (*Owner, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("owner name is required")
	}

	o.ID = uuid.NewString()
	if err := s.store.CreateOwner(ctx, &o); err != nil {
		return nil, fmt.Errorf("failed to create owner: %w", err)
	}
	return &o, nil
}

func (s *Service) CreateTenant(ctx context.Context, t Tenant) (*Tenant, error) {
	if t.UnitID == "" {
		return nil, fmt.Errorf("unit ID is required")
	}
	if t.Name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if t.Since == "" {
		t.Since = time.Now().UTC().Format("2006-01-02")
	}

	t.ID = uuid.NewString()
	if err := s.store.CreateTenant(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return &t, nil
}

func (s *Service) UpdateCondominium(ctx context.Context, c Condominium) (*Condominium, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("condominium ID is required")
	}
	if c.Name == "" {
		return nil, fmt.Errorf("condominium name is required")
	}
	if err := s.store.UpdateCondominium(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to update condominium: %w", err)
	}
	return &c, nil
}

func (s *Service) DeleteCondominium(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("condominium ID is required")
	}
	return s.store.DeleteCondominium(ctx, id)
}

func (s *Service) UpdateBuilding(ctx context.Context, b Building) (*Building, error) {
	if b.ID == "" {
		return nil, fmt.Errorf("building ID is required")
	}
	if b.Name == "" {
		return nil, fmt.Errorf("building name is required")
	}
	if err := s.store.UpdateBuilding(ctx, &b); err != nil {
		return nil, fmt.Errorf("failed to update building: %w", err)
	}
	return &b, nil
}

func (s *Service) DeleteBuilding(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("building ID is required")
	}
	return s.store.DeleteBuilding(ctx, id)
}

func (s *Service) UpdateUnit(ctx context.Context, u Unit) (*Unit, error) {
	if u.ID == "" {
		return nil, fmt.Errorf("unit ID is required")
	}
	if u.Number == "" {
		return nil, fmt.Errorf("unit number is required")
	}
	if err := s.store.UpdateUnit(ctx, &u); err != nil {
		return nil, fmt.Errorf("failed to update unit: %w", err)
	}
	return &u, nil
}

func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("unit ID is required")
	}
	return s.store.DeleteUnit(ctx, id)
}

func (s *Service) UpdateOwner(ctx context.Context, o Owner) (*Owner, error) {
	if o.ID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if o.Name == "" {
		return nil, fmt.Errorf("owner name is required")
	}
	if err := s.store.UpdateOwner(ctx, &o); err != nil {
		return nil, fmt.Errorf("failed to update owner: %w", err)
	}
	return &o, nil
}

func (s *Service) DeleteOwner(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("owner ID is required")
	}
	return s.store.DeleteOwner(ctx, id)
}

func (s *Service) UpdateTenant(ctx context.Context, t Tenant) (*Tenant, error) {
	if t.ID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if t.Name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if err := s.store.UpdateTenant(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}
	return &t, nil
}

func (s *Service) DeleteTenant(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("tenant ID is required")
	}
	return s.store.DeleteTenant(ctx, id)
}

func (s *Service) ListCondominiums(ctx context.Context, f ListFilter) ([]*Condominium, error) {
	return s.store.ListCondominiums(ctx, f)
}

func (s *Service) ListBuildings(ctx context.Context, f ListFilter) ([]*Building, error) {
	return s.store.ListBuildings(ctx, f)
}

func (s *Service) ListUnits(ctx context.Context, f ListFilter) ([]*Unit, error) {
	return s.store.ListUnits(ctx, f)
}

func (s *Service) ListOwners(ctx context.Context, f ListFilter) ([]*Owner, error) {
	return s.store.ListOwners(ctx, f)
}

func (s *Service) GetOwner(ctx context.Context, id string) (*Owner, error) {
	if id == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	return s.store.GetOwner(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context, f ListFilter) ([]*Tenant, error) {
	return s.store.ListTenants(ctx, f)
}
