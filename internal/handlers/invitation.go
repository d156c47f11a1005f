package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/db"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/spendvault/spendvault/internal/utils"
)

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin member"`
}

type InvitationResponse struct {
	ID          uint   `json:"id"`
	VaultID     uint   `json:"vault_id"`
	VaultName   string `json:"vault_name"`
	VaultColor  string `json:"vault_color"`
	VaultIcon   string `json:"vault_icon"`
	InviterName string `json:"inviter_name,omitempty"`
	InviteeName string `json:"invitee_name,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func invitationResponse(invitation models.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          invitation.ID,
		VaultID:     invitation.VaultID,
		VaultName:   invitation.Vault.Name,
		VaultColor:  invitation.Vault.Color,
		VaultIcon:   invitation.Vault.Icon,
		InviterName: invitation.Inviter.Name,
		InviteeName: invitation.Invitee.Name,
		Role:        invitation.Role,
		Status:      invitation.Status,
		CreatedAt:   invitation.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateInvitation invites a user by email into the vault. The invite mail is
// best-effort; a delivery failure never rolls back the invitation.
func CreateInvitation(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	vaultID, err := utils.GetVaultID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req CreateInvitationRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	invitation, _, err := manager.IssueInvitation(ctx.Request.Context(), currentUser.ID, vaultID, req.Email, permissions.Role(req.Role))

	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	if mailer.Configured() {
		var vault models.Vault
		if err := db.DB.First(&vault, vaultID).Error; err == nil {
			if err := mailer.SendVaultInviteMail(req.Email, currentUser.Name, vault.Name, invitation.Role, invitation.Token); err != nil {
				log.Printf("Failed to send invite mail for invitation %d: %v", invitation.ID, err)
			}
		}
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"id":       invitation.ID,
		"vault_id": invitation.VaultID,
		"role":     invitation.Role,
		"status":   invitation.Status,
	})
}

// AcceptInvitation activates the caller's pending membership. The display
// name stored on the membership is snapshotted from the session user.
func AcceptInvitation(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invitationID, err := utils.GetInvitationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	displayName := currentUser.Name
	if displayName == "" {
		displayName = currentUser.Email
	}

	member, invitation, err := manager.AcceptInvitation(ctx.Request.Context(), invitationID, currentUser.ID, displayName)

	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"vault_id":   member.VaultID,
		"role":       member.Role,
		"status":     member.Status,
		"is_default": member.IsDefault,
		"joined_at":  member.JoinedAt,
		"invitation": gin.H{"id": invitation.ID, "status": invitation.Status},
	})
}

func DeclineInvitation(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invitationID, err := utils.GetInvitationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := manager.DeclineInvitation(ctx.Request.Context(), invitationID, userID)

	if err != nil {
		respondMembershipError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":     invitation.ID,
		"status": invitation.Status,
	})
}

// ListPendingInvitations lists open invitations addressed to the caller.
func ListPendingInvitations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invitations, err := manager.PendingInvitations(ctx.Request.Context(), userID)

	if err != nil {
		log.Printf("Failed to list pending invitations for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invitations"})
		return
	}

	response := []InvitationResponse{}

	for _, invitation := range invitations {
		response = append(response, invitationResponse(invitation))
	}

	ctx.JSON(http.StatusOK, response)
}

// ListSentInvitations lists every invitation the caller has issued.
func ListSentInvitations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	invitations, err := manager.SentInvitations(ctx.Request.Context(), userID)

	if err != nil {
		log.Printf("Failed to list sent invitations for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invitations"})
		return
	}

	response := []InvitationResponse{}

	for _, invitation := range invitations {
		response = append(response, invitationResponse(invitation))
	}

	ctx.JSON(http.StatusOK, response)
}
