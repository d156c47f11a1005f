// Package permissions maps vault roles to capability sets and gates every
// vault-scoped mutation behind a single authorization check.
package permissions

// Role is the closed set of vault roles. Anything outside the three
// constants resolves to the all-false capability set.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"

	// RoleNone marks the absence of an active membership.
	RoleNone Role = "none"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Capability names a single permission on a vault.
type Capability string

const (
	CanCreateExpenses Capability = "canCreateExpenses"
	CanEditExpenses   Capability = "canEditExpenses"
	CanDeleteExpenses Capability = "canDeleteExpenses"
	CanManageMembers  Capability = "canManageMembers"
	CanEditVault      Capability = "canEditVault"
	CanDeleteVault    Capability = "canDeleteVault"
)

type VaultPermissions struct {
	CanCreateExpenses bool `json:"canCreateExpenses"`
	CanEditExpenses   bool `json:"canEditExpenses"`
	CanDeleteExpenses bool `json:"canDeleteExpenses"`
	CanManageMembers  bool `json:"canManageMembers"`
	CanEditVault      bool `json:"canEditVault"`
	CanDeleteVault    bool `json:"canDeleteVault"`
}

func (p VaultPermissions) Has(capability Capability) bool {
	switch capability {
	case CanCreateExpenses:
		return p.CanCreateExpenses
	case CanEditExpenses:
		return p.CanEditExpenses
	case CanDeleteExpenses:
		return p.CanDeleteExpenses
	case CanManageMembers:
		return p.CanManageMembers
	case CanEditVault:
		return p.CanEditVault
	case CanDeleteVault:
		return p.CanDeleteVault
	}
	return false
}

// GetVaultPermissions resolves a role to its capability set. Unknown roles
// resolve to the zero value, which denies everything.
func GetVaultPermissions(role Role) VaultPermissions {
	switch role {
	case RoleOwner:
		return VaultPermissions{
			CanCreateExpenses: true,
			CanEditExpenses:   true,
			CanDeleteExpenses: true,
			CanManageMembers:  true,
			CanEditVault:      true,
			CanDeleteVault:    true,
		}
	case RoleAdmin:
		return VaultPermissions{
			CanCreateExpenses: true,
			CanEditExpenses:   true,
			CanDeleteExpenses: true,
			CanManageMembers:  true,
			CanEditVault:      true,
			CanDeleteVault:    false,
		}
	case RoleMember:
		return VaultPermissions{
			CanCreateExpenses: true,
		}
	}

	return VaultPermissions{}
}
