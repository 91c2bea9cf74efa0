package application

import (
	"context"
	"strings"
	"testing"

	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/GoRent-Marketplace/service-rental/internal/media"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token, err := env.userSvc.Register(ctx, RegisterRequest{Name: "Jane", Email: "Jane@Example.com", Password: "supersecret"})
	require.NoError(t, err)

	claims, err := env.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, claims.Role)

	_, err = env.userSvc.Register(ctx, RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "supersecret"})
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	_, err = env.userSvc.Register(ctx, RegisterRequest{Name: "Joe", Email: "joe@example.com", Password: "short"})
	assert.True(t, domain.IsKind(err, domain.KindInvalidInput))

	loginToken, err := env.userSvc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "supersecret"})
	require.NoError(t, err)
	loginClaims, err := env.tokens.Validate(loginToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, loginClaims.UserID)

	_, err = env.userSvc.Login(ctx, LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	_, err = env.userSvc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
}

func TestUserService_GetUser(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "jane@example.com", false)

	got, err := env.userSvc.GetUser(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "user", got.Role)

	_, err = env.userSvc.GetUser(context.Background(), uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUserService_ChangeRoleToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "jane@example.com", false)

	token, err := env.userSvc.ChangeRoleToOwner(ctx, u.ID())
	require.NoError(t, err)
	claims, err := env.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleOwner, claims.Role)

	stored, err := env.users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsOwner())

	_, err = env.userSvc.ChangeRoleToOwner(ctx, u.ID())
	assert.NoError(t, err)
}

func TestUserService_UpdateProfileImage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "jane@example.com", false)

	url, err := env.userSvc.UpdateProfileImage(ctx, u.ID(), media.Image{Filename: "me.png", Body: strings.NewReader("png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/users/me.png?tr=w-400%2Cq-auto%2Cf-webp", url)

	stored, err := env.users.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, url, stored.ImageURL())
}
