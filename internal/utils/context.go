package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/internal/middleware"
	"github.com/spendvault/spendvault/internal/types"
)

// ErrNotAuthenticated reports a request that reached a handler without the
// auth middleware having stored a session user.
var ErrNotAuthenticated = errors.New("no authenticated user in request context")

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, ErrNotAuthenticated
	}

	user, ok := value.(middleware.AuthenticatedUser)

	if !ok {
		return middleware.AuthenticatedUser{}, ErrNotAuthenticated
	}

	return user, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	return user.ID, err
}
