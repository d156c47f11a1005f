package memberships

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spendvault/spendvault/internal/models"
	"github.com/spendvault/spendvault/internal/permissions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewGormStore(gormDB), mock
}

func TestActiveRoleFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "vault_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vault_id", "user_id", "role", "status"}).
			AddRow(7, 1, 10, "admin", models.MemberStatusActive))

	role, found, err := store.ActiveRole(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, permissions.RoleAdmin, role)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveRoleAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "vault_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	role, found, err := store.ActiveRole(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, found, "pending or absent memberships carry no role")
	assert.Equal(t, permissions.RoleNone, role)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberByVaultAndUserAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "vault_members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	member, err := store.MemberByVaultAndUser(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Nil(t, member)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationByIDAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	invitation, err := store.InvitationByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, invitation)

	assert.NoError(t, mock.ExpectationsWereMet())
}
