package services

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/leadboard/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t testing.TB) TokenService {
	t.Helper()
	service, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		testSecret,
		NewMemoryStore(),
	)
	require.NoError(t, err)
	return service
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		issuer      string
		audience    string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{
			name:      "valid symmetric key configuration",
			issuer:    "test-issuer",
			audience:  "test-audience",
			secretKey: testSecret,
		},
		{
			name:        "missing secret key",
			issuer:      "test-issuer",
			audience:    "test-audience",
			expectError: true,
		},
		{
			name:        "rsa without keys",
			useRSAKeys:  true,
			expectError: true,
		},
		{
			name:      "empty issuer and audience",
			secretKey: testSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Minute, time.Hour, tt.issuer, tt.audience, tt.useRSAKeys, "", "", tt.secretKey, nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, service)
			}
		})
	}
}

func TestTokenClaimsStructure(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()
	subject := uuid.New()

	pair, err := service.GenerateTokens(ctx, subject, models.RoleAdmin, models.AAL2)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	accessClaims, err := service.ValidateToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, subject, accessClaims.Subject)
	assert.Equal(t, models.RoleAdmin, accessClaims.Role)
	assert.Equal(t, models.AAL2, accessClaims.AAL)
	assert.Equal(t, TokenTypeAccess, accessClaims.TokenType)
	assert.True(t, accessClaims.ExpiresAt.After(accessClaims.IssuedAt))

	refreshClaims, err := service.ValidateToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
	assert.NotEqual(t, accessClaims.TokenID, refreshClaims.TokenID)
}

func TestGenerateTokensDefaultsToAAL1(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()

	pair, err := service.GenerateTokens(ctx, uuid.New(), models.RoleUser, "")
	require.NoError(t, err)

	claims, err := service.ValidateToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.AAL1, claims.AAL)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "single character", token: "a"},
		{name: "non-JWT string", token: "this is not a jwt token"},
		{name: "malformed token", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
		{name: "wrong number of parts", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxIn0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(ctx, tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	service, err := NewTokenService(-time.Minute, -time.Minute, "test-issuer", "test-audience", false, "", "", testSecret, nil)
	require.NoError(t, err)
	ctx := context.Background()

	pair, err := service.GenerateTokens(ctx, uuid.New(), models.RoleUser, models.AAL1)
	require.NoError(t, err)

	_, err = service.ValidateToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = service.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSecurity(t *testing.T) {
	ctx := context.Background()
	service1, err := NewTokenService(15*time.Minute, time.Hour, "issuer1", "audience1", false, "", "", "test-secret-key-1-for-jwt-signing-32-chars", nil)
	require.NoError(t, err)
	service2, err := NewTokenService(15*time.Minute, time.Hour, "issuer2", "audience2", false, "", "", "test-secret-key-2-for-jwt-signing-32-chars", nil)
	require.NoError(t, err)

	subject := uuid.New()
	pair1, err := service1.GenerateTokens(ctx, subject, models.RoleUser, models.AAL1)
	require.NoError(t, err)
	pair2, err := service2.GenerateTokens(ctx, subject, models.RoleUser, models.AAL1)
	require.NoError(t, err)

	_, err = service1.ValidateToken(ctx, pair2.AccessToken)
	assert.Error(t, err)
	_, err = service2.ValidateToken(ctx, pair1.AccessToken)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()
	subject := uuid.New()

	pair, err := service.GenerateTokens(ctx, subject, models.RoleUser, models.AAL2)
	require.NoError(t, err)

	t.Run("access token is rejected", func(t *testing.T) {
		_, err := service.RefreshToken(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrNotRefresh)
	})

	t.Run("rotation preserves aal and revokes the old refresh token", func(t *testing.T) {
		next, err := service.RefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := service.ValidateToken(ctx, next.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Subject)
		assert.Equal(t, models.AAL2, claims.AAL)

		_, err = service.RefreshToken(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}

func TestRevokeTokenWithRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	service, err := NewTokenService(15*time.Minute, time.Hour, "iss", "aud", false, "", "", testSecret, NewRedisStore(client, "lb:"))
	require.NoError(t, err)
	ctx := context.Background()

	pair, err := service.GenerateTokens(ctx, uuid.New(), models.RoleUser, models.AAL1)
	require.NoError(t, err)
	claims, err := service.ValidateToken(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(ctx, pair.AccessToken))
	assert.True(t, mr.Exists("lb:revoked:"+claims.TokenID))
	assert.True(t, service.IsTokenRevoked(ctx, claims.TokenID))

	_, err = service.ValidateToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.Error(t, service.RevokeToken(ctx, "invalid.token"))

	// the revocation entry lives only as long as the token
	mr.FastForward(16 * time.Minute)
	assert.False(t, service.IsTokenRevoked(ctx, claims.TokenID))
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()

	const numGoroutines = 10
	tokens := make(chan string, numGoroutines)
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			pair, err := service.GenerateTokens(ctx, uuid.New(), models.RoleUser, models.AAL1)
			if err != nil {
				errs <- err
				return
			}
			tokens <- pair.AccessToken
		}()
	}

	generated := make(map[string]bool)
	for i := 0; i < numGoroutines; i++ {
		select {
		case token := <-tokens:
			assert.False(t, generated[token], "Duplicate token generated")
			generated[token] = true
		case err := <-errs:
			t.Errorf("Error generating token: %v", err)
		}
	}
	assert.Len(t, generated, numGoroutines)
}

func BenchmarkValidateToken(b *testing.B) {
	service := createTestTokenService(b)
	ctx := context.Background()

	pair, err := service.GenerateTokens(ctx, uuid.New(), models.RoleUser, models.AAL1)
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.ValidateToken(ctx, pair.AccessToken)
		require.NoError(b, err)
	}
}
