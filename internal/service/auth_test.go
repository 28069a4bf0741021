package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

var testSecret = []byte("test-secret")

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	svc := &AuthService{Repo: r, Secret: testSecret, TTL: time.Hour}

	u, err := svc.Register(ctx, transport.RegisterRequest{
		Email:     "Owner@Shop.Test",
		Username:  "owner",
		Password:  "password123",
		Role:      models.RoleVendor,
		StoreName: "Tea House",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", u.Email)
	assert.True(t, u.IsActive)

	v, err := r.VendorByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "tea-house", v.Slug)
	assert.False(t, v.IsApproved)

	_, err = svc.Register(ctx, transport.RegisterRequest{Email: "owner@shop.test", Username: "x", Password: "password123"})
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: "owner@shop.test", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrUnauthorized)

	res, err := svc.Login(ctx, transport.LoginRequest{Email: "OWNER@shop.test", Password: "password123"})
	require.NoError(t, err)
	claims, err := tokens.SessionClaimsFromToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, claims.Role)

	active, err := svc.SessionActive(ctx, claims.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	active, err = svc.SessionActive(ctx, claims.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, active)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Vendor)
	assert.Equal(t, v.ID, me.Vendor.ID)
}

func TestLogin_InactiveUser(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	svc := &AuthService{Repo: r, Secret: testSecret, TTL: time.Hour}

	u := testutil.User(t, r, "buyer@shop.test", models.RoleUser)
	_, err := r.UpdateUser(ctx, u.ID, map[string]any{"is_active": false})
	require.NoError(t, err)

	_, err = svc.Login(ctx, transport.LoginRequest{Email: u.Email, Password: testutil.Password})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepo(t)
	svc := &AuthService{Repo: r}
	u := testutil.User(t, r, "buyer@shop.test", models.RoleUser)

	name, phone := "  Asha Rai ", "9800000000"
	got, err := svc.UpdateProfile(ctx, u.ID, transport.UpdateProfileRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rai", got.FullName)
	assert.Equal(t, phone, got.Phone)
	assert.Empty(t, got.Address)
}
