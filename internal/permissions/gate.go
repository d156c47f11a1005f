package permissions

import (
	"context"
	"fmt"
)

// RoleSource reports the role of a user's *active* membership in a vault.
// Pending or absent memberships report found = false.
type RoleSource interface {
	ActiveRole(ctx context.Context, vaultID, userID uint) (Role, bool, error)
}

// DeniedError is the terminal outcome of a failed capability check. It
// carries the resolved role so callers can report it without a second
// lookup.
type DeniedError struct {
	Role       Role
	Capability Capability
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s role cannot %s", e.Role, e.Capability)
}

// Gate is the single authorization entry point. Every vault-scoped
// mutation must pass through it before touching vault data.
type Gate struct {
	Roles RoleSource
}

func NewGate(roles RoleSource) *Gate {
	return &Gate{Roles: roles}
}

// UserRole resolves the caller's role, RoleNone if they hold no active
// membership.
func (g *Gate) UserRole(ctx context.Context, userID, vaultID uint) (Role, error) {
	role, found, err := g.Roles.ActiveRole(ctx, vaultID, userID)

	if err != nil {
		return RoleNone, err
	}

	if !found {
		return RoleNone, nil
	}

	return role, nil
}

// Authorize reports whether the user holds the capability on the vault.
func (g *Gate) Authorize(ctx context.Context, userID, vaultID uint, capability Capability) (bool, error) {
	role, err := g.UserRole(ctx, userID, vaultID)

	if err != nil {
		return false, err
	}

	return GetVaultPermissions(role).Has(capability), nil
}

// RequireAuthorization is Authorize with a typed failure: a *DeniedError
// carrying the resolved role and the denied capability. Callers must treat
// it as fatal to the requested mutation.
func (g *Gate) RequireAuthorization(ctx context.Context, userID, vaultID uint, capability Capability) error {
	role, err := g.UserRole(ctx, userID, vaultID)

	if err != nil {
		return err
	}

	if !GetVaultPermissions(role).Has(capability) {
		return &DeniedError{Role: role, Capability: capability}
	}

	return nil
}
