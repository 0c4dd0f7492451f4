package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edustack/tutor-platform/internal/model"
)

func TestResolveUserScope(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		want   UserScope
	}{
		{
			name:   "admin lists all tutors",
			caller: Caller{ID: 1, Role: model.RoleAdmin},
			want:   UserScope{AllTutors: true},
		},
		{
			name:   "tutor lists students of own tenant",
			caller: Caller{ID: 2, Role: model.RoleTutor, TenantID: 7},
			want:   UserScope{StudentsOfTenant: 7},
		},
		{
			name:   "student sees only self",
			caller: Caller{ID: 3, Role: model.RoleStudent, TenantID: 7},
			want:   UserScope{SelfOnly: true},
		},
		{
			name:   "unknown role falls back to self",
			caller: Caller{ID: 4, Role: model.Role("ghost")},
			want:   UserScope{SelfOnly: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveUserScope(tt.caller))
		})
	}
}

func TestResolveDocumentScope(t *testing.T) {
	tests := []struct {
		name   string
		caller Caller
		want   DocumentScope
	}{
		{
			name:   "admin sees everything",
			caller: Caller{ID: 1, Role: model.RoleAdmin},
			want:   DocumentScope{All: true},
		},
		{
			name:   "tutor sees own uploads",
			caller: Caller{ID: 2, Role: model.RoleTutor, TenantID: 7},
			want:   DocumentScope{UploadedBy: 2},
		},
		{
			name:   "student sees tenant tutors' uploads",
			caller: Caller{ID: 3, Role: model.RoleStudent, TenantID: 7},
			want:   DocumentScope{TutorsOfTenant: 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDocumentScope(tt.caller))
		})
	}
}
