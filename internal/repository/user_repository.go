package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
)

// UserRepo encapsulates all database queries for the users table.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the provided DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userCols = `id, username, tenant_id, role, name, email, status, image, phone,
	email_verified, password_hash, created_by, updated_by, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var username sql.NullString
	var tenantID, createdBy, updatedBy sql.NullInt64
	if err := row.Scan(&u.ID, &username, &tenantID, &u.Role, &u.Name, &u.Email, &u.Status,
		&u.Image, &u.Phone, &u.EmailVerified, &u.PasswordHash, &createdBy, &updatedBy,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Username = strOf(username)
	u.TenantID = idOf(tenantID)
	u.CreatedBy = idOf(createdBy)
	u.UpdatedBy = idOf(updatedBy)
	return &u, nil
}

// Create inserts a new user and populates the generated id and timestamps.
// Unique-key violations on email or username are reported as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (username, tenant_id, role, name, email, status, image, phone,
	           email_verified, password_hash, created_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		nullStr(u.Username), nullID(u.TenantID), string(u.Role), u.Name, u.Email,
		string(model.StatusActive), u.Image, u.Phone, u.EmailVerified, u.PasswordHash,
		nullID(u.CreatedBy))
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
	u.ID = uint64(id)

	saved, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *saved
	return nil
}

// GetByID fetches a user by id, including deactivated and deleted records.
// Callers decide how lifecycle state affects visibility.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = "SELECT " + userCols + " FROM users WHERE id = ?"
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = "SELECT " + userCols + " FROM users WHERE email = ? LIMIT 1"
	u, err := scanUser(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// EmailExists reports whether a user other than excludeID already holds the
// email, in any lifecycle state. Uniqueness spans the full population so a
// deleted account can never be shadowed by a new registration.
func (r *UserRepo) EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error) {
	const q = "SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?"
	var n int64
	if err := r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email)), excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UsernameExists reports whether a user other than excludeID holds the username.
func (r *UserRepo) UsernameExists(ctx context.Context, username string, excludeID uint64) (bool, error) {
	const q = "SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?"
	var n int64
	if err := r.db.QueryRowContext(ctx, q, username, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// TenantHasTutor reports whether the tenant already has a tutor assigned.
// Deleted tutors do not occupy the slot.
func (r *UserRepo) TenantHasTutor(ctx context.Context, tenantID uint64) (bool, error) {
	const q = "SELECT COUNT(*) FROM users WHERE tenant_id = ? AND role = 'tutor' AND status <> 'DELETED'"
	var n int64
	if err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserPatch carries the optional fields of a user update. Nil means "leave
// unchanged". Username and Image map the empty string back to NULL.
type UserPatch struct {
	Username      *string
	Name          *string
	Email         *string
	Role          *model.Role
	Status        *model.Status
	Image         *string
	Phone         *string
	EmailVerified *bool
	PasswordHash  *string
	UpdatedBy     *uint64
}

// Update applies a partial update. It does not report ErrNotFound for
// missing rows; callers fetch the target first to decide visibility.
func (r *UserRepo) Update(ctx context.Context, id uint64, p UserPatch) error {
	set := make([]string, 0, 9)
	args := make([]any, 0, 10)
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if p.Username != nil {
		add("username", nullStr(*p.Username))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Email != nil {
		add("email", strings.ToLower(strings.TrimSpace(*p.Email)))
	}
	if p.Role != nil {
		add("role", string(*p.Role))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.Image != nil {
		add("image", *p.Image)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.EmailVerified != nil {
		add("email_verified", *p.EmailVerified)
	}
	if p.PasswordHash != nil {
		add("password_hash", *p.PasswordHash)
	}
	if p.UpdatedBy != nil {
		add("updated_by", nullID(*p.UpdatedBy))
	}
	if len(set) == 0 {
		return nil
	}
	q := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE id = ?"
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateStatus moves a user to a new lifecycle state. Setting the current
// state again is accepted so soft deletion stays idempotent.
func (r *UserRepo) UpdateStatus(ctx context.Context, id uint64, updatedBy uint64, s model.Status) error {
	const q = "UPDATE users SET status = ?, updated_by = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, string(s), nullID(updatedBy), id)
	return err
}

// ListStudents returns one page of the tenant's active students ordered by
// creation time descending.
func (r *UserRepo) ListStudents(ctx context.Context, tenantID uint64, limit, offset int) ([]*model.User, error) {
	const q = "SELECT " + userCols + ` FROM users
	           WHERE tenant_id = ? AND role = 'student' AND status = 'ACTIVE'
	           ORDER BY created_at DESC, id DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// CountStudents counts the tenant's active students.
func (r *UserRepo) CountStudents(ctx context.Context, tenantID uint64) (int64, error) {
	const q = "SELECT COUNT(*) FROM users WHERE tenant_id = ? AND role = 'student' AND status = 'ACTIVE'"
	var n int64
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&n)
	return n, err
}

// ListTutors returns every non-deleted tutor, newest first.
func (r *UserRepo) ListTutors(ctx context.Context) ([]*model.User, error) {
	const q = "SELECT " + userCols + ` FROM users
	           WHERE role = 'tutor' AND status <> 'DELETED'
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// TutorIDsByTenant resolves a tenant to the ids of its active tutors. Used
// to translate a student's document scope into an uploaded_by filter.
func (r *UserRepo) TutorIDsByTenant(ctx context.Context, tenantID uint64) ([]uint64, error) {
	const q = "SELECT id FROM users WHERE tenant_id = ? AND role = 'tutor' AND status = 'ACTIVE'"
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TenantNameOf resolves the display name of a user's tenant reference.
// Users without a tenant (admins) yield the empty string.
func (r *UserRepo) TenantNameOf(ctx context.Context, tenantID uint64) (string, error) {
	if tenantID == 0 {
		return "", nil
	}
	const q = "SELECT name FROM tenants WHERE id = ?"
	var name string
	if err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

func collectUsers(rows *sql.Rows) ([]*model.User, error) {
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
