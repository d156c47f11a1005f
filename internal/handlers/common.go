package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/memberships"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/services"
)

var (
	manager *memberships.Manager
	mailer  *services.MailService
)

// Init wires the handler package's collaborators. Must run after the
// database connection is established.
func Init() {
	manager = memberships.NewManager(
		memberships.NewGormStore(db.DB),
		memberships.NewGormDirectory(db.DB),
	)
	mailer = services.NewMailService()
}

func gate() *permissions.Gate {
	return manager.Gate()
}

// requireVaultPermission runs the capability check and writes the rejection
// itself. Returns false when the caller must stop.
func requireVaultPermission(ctx *gin.Context, userID, vaultID uint, capability permissions.Capability) bool {
	err := gate().RequireAuthorization(ctx.Request.Context(), userID, vaultID, capability)

	if err == nil {
		return true
	}

	var denied *permissions.DeniedError
	if errors.As(err, &denied) {
		log.Printf("Authorization denied: user %d, vault %d, %v", userID, vaultID, denied)
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}

	log.Printf("Authorization check failed: %v", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	return false
}

// respondMembershipError maps the membership error kinds to request-level
// outcomes. Invariant violations are logged loudly and surface as a generic
// server failure.
func respondMembershipError(ctx *gin.Context, err error) {
	var denied *permissions.DeniedError

	switch {
	case errors.As(err, &denied):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, memberships.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, memberships.ErrNotAMember):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this vault"})
	case errors.Is(err, memberships.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found"})
	case errors.Is(err, memberships.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No user with that email"})
	case errors.Is(err, memberships.ErrAlreadyActive):
		ctx.JSON(http.StatusConflict, gin.H{"error": "You are already a member of this vault"})
	case errors.Is(err, memberships.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Invitation is no longer open"})
	case errors.Is(err, memberships.ErrDuplicateMembership):
		ctx.JSON(http.StatusConflict, gin.H{"error": "User already has a membership for this vault"})
	case errors.Is(err, memberships.ErrInvalidRole):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
	case errors.Is(err, memberships.ErrInvariantViolation):
		log.Printf("BUG: membership invariant violation: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	default:
		log.Printf("Membership operation failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
