package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/model"
)

func TestAuthLogin(t *testing.T) {
	f := newFixture(t)
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	user := &model.User{Email: "ops@example.com", Name: "Ops", Password: hashed, Role: model.RolePropertyManager, IsActive: true}
	require.NoError(t, f.store.CreateUser(f.ctx, user))

	auth := NewAuthService(f.store)

	token, got, err := auth.Login(f.ctx, LoginInput{Email: " ops@example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	resolved, err := auth.Authenticate(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, _, err = auth.Login(f.ctx, LoginInput{Email: "ops@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(f.ctx, LoginInput{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(f.ctx, LoginInput{Email: "not-an-email", Password: "x"})
	requireAppError(t, err, 400)

	_, err = auth.Authenticate(f.ctx, "garbage")
	assert.Error(t, err)
}

func TestAuthLogin_InactiveUser(t *testing.T) {
	f := newFixture(t)
	hashed, err := HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, f.store.CreateUser(f.ctx, &model.User{Email: "gone@example.com", Name: "Gone", Password: hashed, Role: model.RoleAdmin}))

	_, _, err = NewAuthService(f.store).Login(f.ctx, LoginInput{Email: "gone@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUnitTypeService(t *testing.T) {
	f := newFixture(t)
	types := NewUnitTypeService(f.store)

	_, err := types.Create(f.ctx, f.manager, UnitTypeInput{Name: "Chalet", Category: "property"})
	requireAppError(t, err, 403)

	_, err = types.Create(f.ctx, f.admin, UnitTypeInput{Name: " villa ", Category: "property"})
	appErr := requireAppError(t, err, 400)
	assert.Contains(t, appErr.Details["errors"], "name")

	chalet, err := types.Create(f.ctx, f.admin, UnitTypeInput{Name: "Chalet", Category: "property"})
	require.NoError(t, err)
	assert.True(t, chalet.IsActive)

	inactive := false
	chalet, err = types.Update(f.ctx, f.admin, chalet.ID, UnitTypeInput{Name: "Chalet", Category: "property", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, chalet.IsActive)

	_, err = types.Create(f.ctx, f.admin, UnitTypeInput{Name: "Villa", Category: "unit"})
	require.NoError(t, err)

	list, err := types.List(f.ctx, "property")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
