package model

import "time"

// Role determines a caller's access scope. The set is fixed: there is no
// user-extensible permission grammar in this system.
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}

// Status is the single lifecycle state of a user record. It replaces the
// historical isActive/isDeleted boolean pair whose cross-product was only
// partially meaningful.
//
// Allowed transitions:
//
//	ACTIVE      -> DEACTIVATED  (self-service removal)
//	ACTIVE      -> DELETED      (administrator removal)
//	DEACTIVATED -> DELETED
//
// Nothing transitions out of DELETED. Records are never physically removed;
// they stay addressable by id for audit but are excluded from every listing.
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusDeactivated Status = "DEACTIVATED"
	StatusDeleted     Status = "DELETED"
)

// CanTransition reports whether the lifecycle move from one status to
// another is permitted.
func CanTransition(from, to Status) bool {
	switch {
	case from == to:
		return false
	case from == StatusDeleted:
		return false
	case to == StatusActive:
		return false
	}
	return true
}

// User mirrors a row of the `users` table. The password hash never leaves
// the service: it is excluded from JSON serialization and cleared before a
// record is returned to a caller.
//
// TenantID is zero for admins (stored as NULL); every other role must carry
// a reference to an existing active tenant. CreatedBy/UpdatedBy form a
// non-owning audit trail, not a deletion cascade.
type User struct {
	ID            uint64    `json:"id"`
	Username      string    `json:"username,omitempty"`
	TenantID      uint64    `json:"tenant_id,omitempty"`
	TenantName    string    `json:"tenant_name,omitempty"` // resolved display name, populated on by-id reads
	Role          Role      `json:"role"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Status        Status    `json:"status"`
	Image         string    `json:"image,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PasswordHash  string    `json:"-"`
	CreatedBy     uint64    `json:"created_by,omitempty"`
	UpdatedBy     uint64    `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserRef is the short identity expansion embedded in document responses.
type UserRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
