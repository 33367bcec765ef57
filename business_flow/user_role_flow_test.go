package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (services.KeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return services.NewKeyValueStore(client, "leadboard"), mr
}

func TestUserRoleFlow_GetRole(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoleRepo()
	flow := NewUserRoleFlow(repo, services.NewMemoryStore(), &fakeActivity{})

	t.Run("DefaultsToUser", func(t *testing.T) {
		id := uuid.New()
		resp, err := flow.GetRole(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, resp.Role.Role)
		assert.Equal(t, id, resp.Role.UserID)
		assert.Nil(t, resp.Role.ID)
	})

	t.Run("StoredRole", func(t *testing.T) {
		id := uuid.New()
		_, err := repo.Upsert(ctx, id, models.RoleAdmin)
		require.NoError(t, err)
		resp, err := flow.GetRole(ctx, id.String())
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, resp.Role.Role)
		assert.NotNil(t, resp.Role.ID)
	})

	t.Run("LookupFailureStillDefaults", func(t *testing.T) {
		repo.fail = true
		defer func() { repo.fail = false }()
		resp, err := flow.GetRole(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, resp.Role.Role)
	})

	t.Run("MalformedID", func(t *testing.T) {
		_, err := flow.GetRole(ctx, "abc")
		requireCode(t, err, CodeValidation)
	})
}

func TestUserRoleFlow_ResolveRoleCaches(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	repo := newFakeRoleRepo()
	flow := NewUserRoleFlow(repo, store, &fakeActivity{})

	id := uuid.New()
	_, err := repo.Upsert(ctx, id, models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, flow.ResolveRole(ctx, id, models.RoleUser))
	assert.Equal(t, models.RoleAdmin, flow.ResolveRole(ctx, id, models.RoleUser))
	assert.Equal(t, 1, repo.lookups)

	mr.FastForward(6 * time.Minute)
	assert.Equal(t, models.RoleAdmin, flow.ResolveRole(ctx, id, models.RoleUser))
	assert.Equal(t, 2, repo.lookups)

	t.Run("FallsBackToClaim", func(t *testing.T) {
		other := uuid.New()
		assert.Equal(t, models.RoleAdmin, flow.ResolveRole(ctx, other, models.RoleAdmin))

		repo.fail = true
		defer func() { repo.fail = false }()
		assert.Equal(t, models.RoleUser, flow.ResolveRole(ctx, uuid.New(), "superuser"))
	})
}

func TestUserRoleFlow_SetRole(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	repo := newFakeRoleRepo()
	activity := &fakeActivity{}
	flow := NewUserRoleFlow(repo, store, activity)
	target := uuid.New()

	assert.Equal(t, models.RoleUser, flow.ResolveRole(ctx, target, ""))

	user := Actor{UserID: uuid.New(), Role: models.RoleUser, AAL: models.AAL2}
	_, err := flow.SetRole(ctx, user, target.String(), &dto.UpdateUserRoleRequest{Role: models.RoleAdmin}, nil)
	requireCode(t, err, CodeForbidden)

	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin, AAL: models.AAL1}
	_, err = flow.SetRole(ctx, admin, target.String(), &dto.UpdateUserRoleRequest{Role: models.RoleAdmin}, nil)
	requireCode(t, err, CodeMFARequired)

	admin.AAL = models.AAL2
	resp, err := flow.SetRole(ctx, admin, target.String(), &dto.UpdateUserRoleRequest{Role: models.RoleAdmin}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role.Role)

	assert.Equal(t, models.RoleAdmin, flow.ResolveRole(ctx, target, ""), "cache must be invalidated on change")
	assert.Equal(t, []string{models.ActivityRoleChanged}, activity.actions())
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()
	tokens, err := services.NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", false, "", "", "test-secret-key", nil)
	require.NoError(t, err)
	flow := NewAuthFlow(tokens)
	userID := uuid.New()

	pair, err := flow.IssueToken(ctx, userID, models.RoleUser, models.AAL2)
	require.NoError(t, err)

	t.Run("RefreshPreservesAAL", func(t *testing.T) {
		next, err := flow.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
		require.NoError(t, err)
		claims, err := tokens.ValidateToken(ctx, next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, models.AAL2, claims.AAL)

		_, err = flow.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: pair.RefreshToken})
		requireCode(t, err, CodeInvalidRefreshToken)
	})

	t.Run("AccessTokenCannotRefresh", func(t *testing.T) {
		_, err := flow.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: pair.AccessToken})
		requireCode(t, err, CodeInvalidRefreshToken)
	})

	t.Run("LogoutRevokes", func(t *testing.T) {
		require.NoError(t, flow.Logout(ctx, pair.AccessToken))
		_, err := tokens.ValidateToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, services.ErrTokenRevoked)
	})

	t.Run("IssueValidates", func(t *testing.T) {
		_, err := flow.IssueToken(ctx, userID, "root", models.AAL1)
		requireCode(t, err, CodeValidation)
		_, err = flow.IssueToken(ctx, uuid.Nil, models.RoleUser, models.AAL1)
		requireCode(t, err, CodeValidation)
	})
}
