package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoles map[string]string

func (f fakeRoles) RoleOf(_ context.Context, userID string) (string, bool, error) {
	r, ok := f[userID]
	return r, ok, nil
}

func TestCheck_Matrix(t *testing.T) {
	svc := NewService(fakeRoles{"a": RoleAdmin, "u": RoleUser, "v": RoleViewer}, false)
	ctx := context.Background()

	require.NoError(t, svc.Check(ctx, "a", UsersManage))
	require.NoError(t, svc.Check(ctx, "u", DataSync))
	require.NoError(t, svc.Check(ctx, "v", DataExport))

	assert.ErrorIs(t, svc.Check(ctx, "u", UsersManage), ErrForbidden)
	assert.ErrorIs(t, svc.Check(ctx, "v", DataManage), ErrForbidden)
	assert.ErrorIs(t, svc.Check(ctx, "ghost", DataView), ErrUnknownUser)
	assert.ErrorIs(t, svc.Check(ctx, "", DataView), ErrUnknownUser)
}

func TestCheck_AllowAll(t *testing.T) {
	svc := NewService(fakeRoles{}, true)
	require.NoError(t, svc.Check(context.Background(), "anyone", SystemManage))

	perms, err := svc.Effective(context.Background(), "anyone")
	require.NoError(t, err)
	assert.Len(t, perms, len(All()))
}

func TestForRole_ReturnsCopy(t *testing.T) {
	p := ForRole(RoleViewer)
	require.Len(t, p, 2)
	p[0] = SystemManage
	assert.False(t, Allowed(RoleViewer, SystemManage))
	assert.Empty(t, ForRole("nope"))
}
