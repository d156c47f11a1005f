package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleMember.Valid())

	assert.False(t, RoleNone.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("superadmin").Valid())
}

func TestGetVaultPermissionsOwner(t *testing.T) {
	perms := GetVaultPermissions(RoleOwner)

	assert.True(t, perms.CanCreateExpenses)
	assert.True(t, perms.CanEditExpenses)
	assert.True(t, perms.CanDeleteExpenses)
	assert.True(t, perms.CanManageMembers)
	assert.True(t, perms.CanEditVault)
	assert.True(t, perms.CanDeleteVault)
}

func TestGetVaultPermissionsAdmin(t *testing.T) {
	perms := GetVaultPermissions(RoleAdmin)

	assert.True(t, perms.CanCreateExpenses)
	assert.True(t, perms.CanEditExpenses)
	assert.True(t, perms.CanDeleteExpenses)
	assert.True(t, perms.CanManageMembers)
	assert.True(t, perms.CanEditVault)
	assert.False(t, perms.CanDeleteVault, "only the owner may delete a vault")
}

func TestGetVaultPermissionsMember(t *testing.T) {
	perms := GetVaultPermissions(RoleMember)

	assert.True(t, perms.CanCreateExpenses)
	assert.False(t, perms.CanEditExpenses)
	assert.False(t, perms.CanDeleteExpenses)
	assert.False(t, perms.CanManageMembers)
	assert.False(t, perms.CanEditVault)
	assert.False(t, perms.CanDeleteVault)
}

func TestGetVaultPermissionsDeniesUnknownRoles(t *testing.T) {
	for _, role := range []Role{RoleNone, Role(""), Role("moderator"), Role("OWNER")} {
		perms := GetVaultPermissions(role)

		assert.Equal(t, VaultPermissions{}, perms, "role %q must resolve to no capabilities", role)
	}
}

func TestHas(t *testing.T) {
	perms := GetVaultPermissions(RoleAdmin)

	assert.True(t, perms.Has(CanManageMembers))
	assert.False(t, perms.Has(CanDeleteVault))
	assert.False(t, perms.Has(Capability("canDoAnything")), "unknown capabilities are denied")
}
