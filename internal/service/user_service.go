package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/edustack/tutor-platform/internal/model"
	"github.com/edustack/tutor-platform/internal/policy"
	"github.com/edustack/tutor-platform/internal/repository"
)

// UserStore is the persistence contract the user lifecycle manager
// consumes. *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string, excludeID uint64) (bool, error)
	UsernameExists(ctx context.Context, username string, excludeID uint64) (bool, error)
	TenantHasTutor(ctx context.Context, tenantID uint64) (bool, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch) error
	UpdateStatus(ctx context.Context, id uint64, updatedBy uint64, s model.Status) error
	ListStudents(ctx context.Context, tenantID uint64, limit, offset int) ([]*model.User, error)
	CountStudents(ctx context.Context, tenantID uint64) (int64, error)
	ListTutors(ctx context.Context) ([]*model.User, error)
	TutorIDsByTenant(ctx context.Context, tenantID uint64) ([]uint64, error)
	TenantNameOf(ctx context.Context, tenantID uint64) (string, error)
}

// PasswordHasher is the one-way hashing contract. The bcrypt implementation
// lives in internal/utils; tests substitute a fake so no hashing cost is
// paid in unit tests.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// UserService creates, updates and retires user records while enforcing
// tenant-consistency and uniqueness invariants. Validation and uniqueness
// checks run strictly before any password hashing or store write: a
// rejected request never hashes a password and never touches the store.
type UserService struct {
	users   UserStore
	tenants TenantStore
	hasher  PasswordHasher
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore, tenants TenantStore, hasher PasswordHasher) *UserService {
	return &UserService{users: users, tenants: tenants, hasher: hasher}
}

// Pagination describes one page of a listing. Pages is ceil(Total/Limit).
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// StudentPage is the result of a paginated student listing.
type StudentPage struct {
	Records    []*model.User `json:"records"`
	Pagination Pagination    `json:"pagination"`
}

func sanitize(u *model.User) *model.User {
	u.PasswordHash = ""
	return u
}

// requireActiveTenant verifies the tenant reference exists and is active.
func (s *UserService) requireActiveTenant(ctx context.Context, tenantID uint64) error {
	if tenantID == 0 {
		return ErrInvalidReference
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		if e := storeErr(err); !errors.Is(e, ErrNotFound) {
			return e
		}
		return ErrInvalidReference
	}
	if !t.IsActive {
		return ErrInvalidReference
	}
	return nil
}

// CreateTutorInput carries the fields of a tutor registration.
type CreateTutorInput struct {
	Name     string
	Email    string
	TenantID uint64
	Username string
	Password string
	Phone    string
}

// CreateTutor registers a tutor for a tenant. Caller must be an admin
// (enforced at the transport layer). A tenant accepts at most one tutor;
// the slot is freed only when its holder is deleted.
func (s *UserService) CreateTutor(ctx context.Context, caller policy.Caller, in CreateTutorInput) (*model.User, error) {
	if in.Password == "" {
		return nil, ErrValidation
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" {
		return nil, ErrValidation
	}
	taken, err := s.users.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, ErrDuplicate
	}
	if err := s.requireActiveTenant(ctx, in.TenantID); err != nil {
		return nil, err
	}
	occupied, err := s.users.TenantHasTutor(ctx, in.TenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	if occupied {
		return nil, ErrDuplicate
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     strings.TrimSpace(in.Username),
		TenantID:     in.TenantID,
		Role:         model.RoleTutor,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedBy:    caller.ID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	return sanitize(u), nil
}

// CreateStudentInput carries the fields of a student registration.
type CreateStudentInput struct {
	Name     string
	Email    string
	Username string
	Password string
	TenantID uint64
	Phone    string
}

// CreateStudent registers a student in a tenant. Unlike tutors there is no
// per-tenant exclusivity: a tenant holds any number of students.
func (s *UserService) CreateStudent(ctx context.Context, caller policy.Caller, in CreateStudentInput) (*model.User, error) {
	if in.Password == "" {
		return nil, ErrValidation
	}
	if in.TenantID == 0 {
		return nil, ErrValidation
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" {
		return nil, ErrValidation
	}
	taken, err := s.users.EmailExists(ctx, email, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	if taken {
		return nil, ErrDuplicate
	}
	if err := s.requireActiveTenant(ctx, in.TenantID); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Username:     strings.TrimSpace(in.Username),
		TenantID:     in.TenantID,
		Role:         model.RoleStudent,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: hash,
		CreatedBy:    caller.ID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, storeErr(err)
	}
	return sanitize(u), nil
}

// UpdateProfileInput carries the self-service profile fields. Nil leaves a
// field unchanged.
type UpdateProfileInput struct {
	Username *string
	Name     *string
	Image    *string
}

// UpdateProfile lets callers edit their own profile. A new username is
// re-checked for uniqueness against every other user.
func (s *UserService) UpdateProfile(ctx context.Context, caller policy.Caller, in UpdateProfileInput) (*model.User, error) {
	if in.Username != nil && *in.Username != "" {
		taken, err := s.users.UsernameExists(ctx, *in.Username, caller.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	patch := repository.UserPatch{
		Username:  in.Username,
		Name:      in.Name,
		Image:     in.Image,
		UpdatedBy: &caller.ID,
	}
	if err := s.users.Update(ctx, caller.ID, patch); err != nil {
		return nil, storeErr(err)
	}
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return sanitize(u), nil
}

// AdminUpdateInput carries the fields an administrator may patch on any
// user. Nil leaves a field unchanged.
type AdminUpdateInput struct {
	Name     *string
	Email    *string
	Username *string
	Role     *model.Role
	Status   *model.Status
}

// UpdateByAdmin applies a partial administrative update. Email and username
// are re-validated for uniqueness excluding the target itself; a status
// change must follow the lifecycle transitions.
func (s *UserService) UpdateByAdmin(ctx context.Context, caller policy.Caller, targetID uint64, in AdminUpdateInput) (*model.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err)
	}
	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrValidation
	}
	if in.Status != nil && *in.Status != target.Status && !model.CanTransition(target.Status, *in.Status) {
		return nil, ErrValidation
	}
	if in.Email != nil {
		taken, err := s.users.EmailExists(ctx, *in.Email, targetID)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	if in.Username != nil && *in.Username != "" {
		taken, err := s.users.UsernameExists(ctx, *in.Username, targetID)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	patch := repository.UserPatch{
		Name:      in.Name,
		Email:     in.Email,
		Username:  in.Username,
		Role:      in.Role,
		Status:    in.Status,
		UpdatedBy: &caller.ID,
	}
	if err := s.users.Update(ctx, targetID, patch); err != nil {
		return nil, storeErr(err)
	}
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err)
	}
	return sanitize(u), nil
}

// StudentUpdateInput carries the fields a tutor or admin may patch on a
// student. Nil leaves a field unchanged.
type StudentUpdateInput struct {
	Name     *string
	Email    *string
	Username *string
	Password *string
}

// UpdateStudent patches a student record. Only role=student records are
// eligible targets; anything else reads as not found so the operation never
// discloses what the id actually is. A supplied password is re-hashed, but
// only after every uniqueness check has passed.
func (s *UserService) UpdateStudent(ctx context.Context, caller policy.Caller, targetID uint64, in StudentUpdateInput) (*model.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err)
	}
	if target.Role != model.RoleStudent || target.Status == model.StatusDeleted {
		return nil, ErrNotFound
	}
	if in.Email != nil {
		taken, err := s.users.EmailExists(ctx, *in.Email, targetID)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	if in.Username != nil && *in.Username != "" {
		taken, err := s.users.UsernameExists(ctx, *in.Username, targetID)
		if err != nil {
			return nil, storeErr(err)
		}
		if taken {
			return nil, ErrDuplicate
		}
	}
	patch := repository.UserPatch{
		Name:      in.Name,
		Email:     in.Email,
		Username:  in.Username,
		UpdatedBy: &caller.ID,
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	if err := s.users.Update(ctx, targetID, patch); err != nil {
		return nil, storeErr(err)
	}
	u, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeErr(err)
	}
	return sanitize(u), nil
}

// DeactivateSelf retires the caller's own record. Idempotent: an already
// deactivated caller gets the same state back, not an error.
func (s *UserService) DeactivateSelf(ctx context.Context, caller policy.Caller) (*model.User, error) {
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	switch u.Status {
	case model.StatusDeleted:
		return nil, ErrNotFound
	case model.StatusDeactivated:
		return sanitize(u), nil
	}
	if err := s.users.UpdateStatus(ctx, caller.ID, caller.ID, model.StatusDeactivated); err != nil {
		return nil, storeErr(err)
	}
	u.Status = model.StatusDeactivated
	return sanitize(u), nil
}

// RemoveByAdmin soft-deletes a user. The record stays addressable for audit
// through the store but is excluded from every listing and read operation.
// Idempotent on an already-deleted target.
func (s *UserService) RemoveByAdmin(ctx context.Context, caller policy.Caller, targetID uint64) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return storeErr(err)
	}
	if target.Status == model.StatusDeleted {
		return nil
	}
	if err := s.users.UpdateStatus(ctx, targetID, caller.ID, model.StatusDeleted); err != nil {
		return storeErr(err)
	}
	return nil
}

// GetUserData returns the caller's own record with the password hash
// stripped. Deleted records read as not found.
func (s *UserService) GetUserData(ctx context.Context, caller policy.Caller) (*model.User, error) {
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if u.Status == model.StatusDeleted {
		return nil, ErrNotFound
	}
	return sanitize(u), nil
}

// GetUserByID returns a user with the tenant reference resolved to its
// display name. Deleted records read as not found, never their contents.
func (s *UserService) GetUserByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if u.Status == model.StatusDeleted {
		return nil, ErrNotFound
	}
	name, err := s.users.TenantNameOf(ctx, u.TenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	u.TenantName = name
	return sanitize(u), nil
}

// GetStudents returns one page of a tenant's active students, newest first.
// Tutors are always bound to their own tenant regardless of the requested
// id; admins may page through any tenant.
func (s *UserService) GetStudents(ctx context.Context, caller policy.Caller, tenantID uint64, page, limit int) (*StudentPage, error) {
	scope := policy.ResolveUserScope(caller)
	switch {
	case scope.SelfOnly:
		return nil, ErrNotFound
	case scope.StudentsOfTenant != 0:
		tenantID = scope.StudentsOfTenant
	}
	if tenantID == 0 {
		return nil, ErrValidation
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total, err := s.users.CountStudents(ctx, tenantID)
	if err != nil {
		return nil, storeErr(err)
	}
	records, err := s.users.ListStudents(ctx, tenantID, limit, (page-1)*limit)
	if err != nil {
		return nil, storeErr(err)
	}
	if records == nil {
		records = []*model.User{}
	}
	for _, u := range records {
		sanitize(u)
	}
	return &StudentPage{
		Records: records,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// GetAllUsers is the role-conditioned projection of the user directory:
// admins get every tutor, everyone else only their own record.
func (s *UserService) GetAllUsers(ctx context.Context, caller policy.Caller) ([]*model.User, error) {
	scope := policy.ResolveUserScope(caller)
	if scope.AllTutors {
		out, err := s.users.ListTutors(ctx)
		if err != nil {
			return nil, storeErr(err)
		}
		for _, u := range out {
			sanitize(u)
		}
		return out, nil
	}
	u, err := s.GetUserData(ctx, caller)
	if err != nil {
		return nil, err
	}
	return []*model.User{u}, nil
}

// Authenticate verifies an email/password pair and returns the matching
// active user. Unknown email, wrong password and non-active lifecycle state
// are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrValidation
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if u.Status != model.StatusActive || !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrNotFound
	}
	return sanitize(u), nil
}

// EmailRegistered confirms an account exists for the address. Callers check
// this before consuming a one-time code so a submission for an unknown
// address does not burn the code.
func (s *UserService) EmailRegistered(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return storeErr(err)
	}
	return nil
}

// MarkEmailVerified flips the email-verified flag after a one-time code
// check succeeds.
func (s *UserService) MarkEmailVerified(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storeErr(err)
	}
	verified := true
	if err := s.users.Update(ctx, u.ID, repository.UserPatch{EmailVerified: &verified}); err != nil {
		return storeErr(err)
	}
	return nil
}
