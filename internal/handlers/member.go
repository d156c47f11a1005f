package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/utils"
)

type MemberResponse struct {
	ID          uint    `json:"id"`
	UserID      uint    `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	JoinedAt    *string `json:"joined_at"`
}

func memberResponse(member models.VaultMember) MemberResponse {
	response := MemberResponse{
		ID:          member.ID,
		UserID:      member.UserID,
		DisplayName: member.DisplayName,
		Role:        member.Role,
	}

	if member.JoinedAt != nil {
		joined := member.JoinedAt.Format("2006-01-02T15:04:05Z07:00")
		response.JoinedAt = &joined
	}

	return response
}

// ListVaultMembers lists the vault's active members. Any active member of
// the vault may see the roster.
func ListVaultMembers(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := gate().UserRole(ctx.Request.Context(), userID, vaultID)

	if err != nil {
		log.Printf("Failed to resolve role for user %d in vault %d: %v", userID, vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if !role.Valid() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not a member of this vault"})
		return
	}

	members, err := manager.ActiveMembers(ctx.Request.Context(), vaultID)

	if err != nil {
		log.Printf("Failed to list members of vault %d: %v", vaultID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve members"})
		return
	}

	response := []MemberResponse{}

	for _, member := range members {
		response = append(response, memberResponse(member))
	}

	ctx.JSON(http.StatusOK, response)
}
