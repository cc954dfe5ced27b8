package file

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agalitsyn/team-tasks-bot/internal/model"
)

func TestRoleStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roles.json")

	s, err := NewRoleStorage(path)
	require.NoError(t, err)

	t.Run("unknown user has no role", func(t *testing.T) {
		role, err := s.RoleOf(ctx, 123456789)
		require.NoError(t, err)
		assert.Equal(t, model.UserRoleUnknown, role)
		assert.False(t, role.Known())
	})

	t.Run("set and read back", func(t *testing.T) {
		require.NoError(t, s.SetRole(ctx, 100001, model.UserRoleAdmin))
		require.NoError(t, s.SetRole(ctx, 100002, model.UserRoleMember))

		role, err := s.RoleOf(ctx, 100001)
		require.NoError(t, err)
		assert.Equal(t, model.UserRoleAdmin, role)
	})

	t.Run("admins are enumerated sorted, members excluded", func(t *testing.T) {
		require.NoError(t, s.SetRole(ctx, 100009, model.UserRoleAdmin))
		require.NoError(t, s.SetRole(ctx, 100003, model.UserRoleAdmin))

		admins, err := s.FetchAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{100001, 100003, 100009}, admins)
	})

	t.Run("roles survive reload", func(t *testing.T) {
		reloaded, err := NewRoleStorage(path)
		require.NoError(t, err)

		role, err := reloaded.RoleOf(ctx, 100002)
		require.NoError(t, err)
		assert.Equal(t, model.UserRoleMember, role)
	})
}
