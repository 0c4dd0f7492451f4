package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusActive, StatusDeactivated},
		{StatusActive, StatusDeleted},
		{StatusDeactivated, StatusDeleted},
	}
	for _, p := range allowed {
		assert.True(t, CanTransition(p[0], p[1]), "%s -> %s should be allowed", p[0], p[1])
	}

	denied := [][2]Status{
		{StatusDeleted, StatusActive},
		{StatusDeleted, StatusDeactivated},
		{StatusDeactivated, StatusActive},
		{StatusActive, StatusActive},
		{StatusDeleted, StatusDeleted},
	}
	for _, p := range denied {
		assert.False(t, CanTransition(p[0], p[1]), "%s -> %s should be denied", p[0], p[1])
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleTutor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())
	assert.False(t, Role("").Valid())
}
