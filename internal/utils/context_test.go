package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spendvault/spendvault/internal/middleware"
	"github.com/spendvault/spendvault/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	return ctx
}

func TestGetCurrentUser(t *testing.T) {
	ctx := newTestContext(t)

	_, err := GetCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{ID: 7, Name: "Alex", Email: "alex@example.com"})

	user, err := GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.Equal(t, "Alex", user.Name)
}

func TestGetCurrentUserWrongType(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Set(types.ContextUserKey, "not a user")

	_, err := GetCurrentUser(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestGetCurrentUserID(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{ID: 9})

	id, err := GetCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)
}
