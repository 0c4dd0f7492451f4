package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
)

// TenantRepo encapsulates all database queries for the tenants table.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo constructs a TenantRepo with the provided DB handle.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{db: db}
}

const tenantCols = "id, name, email, phone, address, COALESCE(notes,''), is_active, created_by, created_at, updated_at"

func scanTenant(row interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	var createdBy sql.NullInt64
	if err := row.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &t.Address, &t.Notes,
		&t.IsActive, &createdBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.CreatedBy = idOf(createdBy)
	return &t, nil
}

// Create inserts a new tenant. On success the ID and timestamp fields are
// populated with the stored values. A unique-key violation on email is
// reported as ErrDuplicate.
func (r *TenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	const q = `INSERT INTO tenants (name, email, phone, address, notes, is_active, created_by)
	           VALUES (?, ?, ?, ?, ?, 1, ?)`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Email, t.Phone, t.Address, nullStr(t.Notes), nullID(t.CreatedBy))
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	saved, err := r.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *saved
	return nil
}

// GetByID fetches a tenant regardless of creator.
func (r *TenantRepo) GetByID(ctx context.Context, id uint64) (*model.Tenant, error) {
	const q = "SELECT " + tenantCols + " FROM tenants WHERE id = ?"
	t, err := scanTenant(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// GetByIDAndCreator fetches a tenant only if it was created by the given
// caller. Absent and not-owned rows are both reported as ErrNotFound.
func (r *TenantRepo) GetByIDAndCreator(ctx context.Context, id, creatorID uint64) (*model.Tenant, error) {
	const q = "SELECT " + tenantCols + " FROM tenants WHERE id = ? AND created_by = ?"
	t, err := scanTenant(r.db.QueryRowContext(ctx, q, id, creatorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListByCreator returns the active tenants created by the caller, newest first.
func (r *TenantRepo) ListByCreator(ctx context.Context, creatorID uint64) ([]*model.Tenant, error) {
	const q = "SELECT " + tenantCols + " FROM tenants WHERE created_by = ? AND is_active = 1 ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// EmailExists reports whether another tenant (excluding excludeID) already
// uses the email.
func (r *TenantRepo) EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error) {
	const q = "SELECT COUNT(*) FROM tenants WHERE email = ? AND id <> ?"
	var n int64
	if err := r.db.QueryRowContext(ctx, q, email, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// TenantPatch carries the optional fields of a tenant update. Nil means
// "leave unchanged".
type TenantPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Notes   *string
}

// Update applies a partial update to a tenant owned by creatorID and returns
// the updated record. Unknown or not-owned ids yield ErrNotFound; an email
// collision yields ErrDuplicate.
func (r *TenantRepo) Update(ctx context.Context, id, creatorID uint64, p TenantPatch) (*model.Tenant, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 7)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Notes != nil {
		add("notes", nullStr(*p.Notes))
	}
	if len(set) > 0 {
		q := "UPDATE tenants SET " + strings.Join(set, ", ") + " WHERE id = ? AND created_by = ?"
		args = append(args, id, creatorID)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			if isDuplicateKey(err) {
				return nil, ErrDuplicate
			}
			return nil, err
		}
	}
	return r.GetByIDAndCreator(ctx, id, creatorID)
}

// Deactivate soft-disables a tenant owned by creatorID and returns the
// resulting record. Deactivating an already-inactive tenant is a no-op that
// still returns the record, so the operation is idempotent.
func (r *TenantRepo) Deactivate(ctx context.Context, id, creatorID uint64) (*model.Tenant, error) {
	const q = "UPDATE tenants SET is_active = 0 WHERE id = ? AND created_by = ?"
	if _, err := r.db.ExecContext(ctx, q, id, creatorID); err != nil {
		return nil, err
	}
	return r.GetByIDAndCreator(ctx, id, creatorID)
}
