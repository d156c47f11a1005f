package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoleSource struct {
	roles map[[2]uint]Role
	err   error
}

func (s *stubRoleSource) ActiveRole(ctx context.Context, vaultID, userID uint) (Role, bool, error) {
	if s.err != nil {
		return RoleNone, false, s.err
	}

	role, ok := s.roles[[2]uint{vaultID, userID}]

	return role, ok, nil
}

func TestUserRole(t *testing.T) {
	gate := NewGate(&stubRoleSource{roles: map[[2]uint]Role{
		{1, 10}: RoleOwner,
	}})

	role, err := gate.UserRole(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, role)

	role, err = gate.UserRole(context.Background(), 99, 1)
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role, "absent membership resolves to none")
}

func TestAuthorize(t *testing.T) {
	gate := NewGate(&stubRoleSource{roles: map[[2]uint]Role{
		{1, 10}: RoleMember,
	}})

	allowed, err := gate.Authorize(context.Background(), 10, 1, CanCreateExpenses)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = gate.Authorize(context.Background(), 10, 1, CanDeleteVault)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = gate.Authorize(context.Background(), 99, 1, CanCreateExpenses)
	require.NoError(t, err)
	assert.False(t, allowed, "non-members hold no capabilities")
}

func TestRequireAuthorization(t *testing.T) {
	gate := NewGate(&stubRoleSource{roles: map[[2]uint]Role{
		{1, 10}: RoleMember,
	}})

	err := gate.RequireAuthorization(context.Background(), 10, 1, CanCreateExpenses)
	assert.NoError(t, err)

	err = gate.RequireAuthorization(context.Background(), 10, 1, CanManageMembers)

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleMember, denied.Role)
	assert.Equal(t, CanManageMembers, denied.Capability)
	assert.Contains(t, denied.Error(), "member role cannot canManageMembers")
}

func TestRequireAuthorizationNonMember(t *testing.T) {
	gate := NewGate(&stubRoleSource{})

	err := gate.RequireAuthorization(context.Background(), 10, 1, CanCreateExpenses)

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleNone, denied.Role)
}

func TestGatePropagatesSourceErrors(t *testing.T) {
	sourceErr := errors.New("connection reset")
	gate := NewGate(&stubRoleSource{err: sourceErr})

	_, err := gate.Authorize(context.Background(), 10, 1, CanCreateExpenses)
	assert.ErrorIs(t, err, sourceErr)

	err = gate.RequireAuthorization(context.Background(), 10, 1, CanCreateExpenses)
	assert.ErrorIs(t, err, sourceErr)

	var denied *DeniedError
	assert.False(t, errors.As(err, &denied), "infrastructure failures are not denials")
}
