// Package policy computes the access scope for an authenticated caller.
// It is a pure function of the caller's identity: it returns declarative
// filters that the user and document services translate into store queries,
// never an executable query itself. All role-conditioned branching lives
// here so listing operations cannot drift apart.
package policy

import "github.com/edustack/tutor-platform/internal/model"

// Caller is the authenticated identity attached to an inbound request.
type Caller struct {
	ID       uint64
	Role     model.Role
	TenantID uint64
}

// UserScope bounds which user records a listing operation may return.
// Exactly one of the discriminators is set.
type UserScope struct {
	// AllTutors grants visibility over every tutor record (admin listings).
	AllTutors bool
	// SelfOnly restricts the scope to the caller's own record.
	SelfOnly bool
	// StudentsOfTenant restricts the scope to students of the given tenant.
	// Zero means unset.
	StudentsOfTenant uint64
}

// ResolveUserScope returns the user-facing scope for a caller.
//
// Admins see all tutors; tutors see the students of their own tenant;
// students see only themselves.
func ResolveUserScope(c Caller) UserScope {
	switch c.Role {
	case model.RoleAdmin:
		return UserScope{AllTutors: true}
	case model.RoleTutor:
		return UserScope{StudentsOfTenant: c.TenantID}
	default:
		return UserScope{SelfOnly: true}
	}
}

// DocumentScope bounds which documents a caller may see.
// Exactly one of the discriminators is set.
type DocumentScope struct {
	// All grants unrestricted document visibility (administrative path).
	All bool
	// UploadedBy restricts visibility to documents uploaded by this user.
	UploadedBy uint64
	// TutorsOfTenant restricts visibility to documents uploaded by any
	// tutor belonging to the given tenant. The consumer resolves the
	// tenant to its tutor id set before querying.
	TutorsOfTenant uint64
}

// ResolveDocumentScope returns the document-facing scope for a caller.
//
// Tutors see what they uploaded themselves; students see what the tutors
// of their tenant uploaded; admins see everything.
func ResolveDocumentScope(c Caller) DocumentScope {
	switch c.Role {
	case model.RoleAdmin:
		return DocumentScope{All: true}
	case model.RoleTutor:
		return DocumentScope{UploadedBy: c.ID}
	default:
		return DocumentScope{TutorsOfTenant: c.TenantID}
	}
}
