package service

import (
	"context"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/policy"
	"github.com/edustack/tutor-platform/internal/repository"
)

// TenantStore is the persistence contract the tenant registry consumes.
// *repository.TenantRepo satisfies it; tests supply in-memory fakes.
type TenantStore interface {
	Create(ctx context.Context, t *model.Tenant) error
	GetByID(ctx context.Context, id uint64) (*model.Tenant, error)
	GetByIDAndCreator(ctx context.Context, id, creatorID uint64) (*model.Tenant, error)
	ListByCreator(ctx context.Context, creatorID uint64) ([]*model.Tenant, error)
	EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error)
	Update(ctx context.Context, id, creatorID uint64, p repository.TenantPatch) (*model.Tenant, error)
	Deactivate(ctx context.Context, id, creatorID uint64) (*model.Tenant, error)
}

// TenantService owns tenant records and their active/inactive status.
// Reads are creator-scoped: a caller only ever sees tenants it created.
type TenantService struct {
	tenants TenantStore
}

// NewTenantService constructs a TenantService.
func NewTenantService(tenants TenantStore) *TenantService {
	return &TenantService{tenants: tenants}
}

// CreateTenantInput carries the fields of a tenant registration.
type CreateTenantInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// CreateTenant registers a new active tenant owned by the caller. The email
// must be free across active and inactive tenants alike.
func (s *TenantService) CreateTenant(ctx context.Context, caller policy.Caller, in CreateTenantInput) (*model.Tenant, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" {
		return nil, ErrValidation
	}
	taken, err := s.tenants.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, ErrDuplicate
	}

	t := &model.Tenant{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedBy: caller.ID,
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// GetTenant returns a tenant only if the caller created it. This narrow
// scope is deliberate: the registry is not a global directory.
func (s *TenantService) GetTenant(ctx context.Context, caller policy.Caller, id uint64) (*model.Tenant, error) {
	t, err := s.tenants.GetByIDAndCreator(ctx, id, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// ListTenants returns the caller's active tenants, newest first.
func (s *TenantService) ListTenants(ctx context.Context, caller policy.Caller) ([]*model.Tenant, error) {
	out, err := s.tenants.ListByCreator(ctx, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// UpdateTenant applies a partial update to a tenant the caller owns. An
// email change is re-checked for uniqueness against every other tenant.
func (s *TenantService) UpdateTenant(ctx context.Context, caller policy.Caller, id uint64, p repository.TenantPatch) (*model.Tenant, error) {
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		p.Email = &email
		taken, err := s.tenants.EmailExists(ctx, email, id)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	t, err := s.tenants.Update(ctx, id, caller.ID, p)
	if err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}

// DeactivateTenant soft-disables a tenant the caller owns. The operation is
// idempotent: deactivating an already-inactive tenant returns the same
// state rather than an error.
func (s *TenantService) DeactivateTenant(ctx context.Context, caller policy.Caller, id uint64) (*model.Tenant, error) {
	t, err := s.tenants.Deactivate(ctx, id, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return t, nil
}
