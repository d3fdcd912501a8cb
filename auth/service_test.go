package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
	}
}

func TestGenerateTokensRoundTrip(t *testing.T) {
	s := NewAuthService(nil, testAuthConfig())

	tokens, err := s.generateTokens(42)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Greater(t, tokens.ExpiresIn, time.Now().Unix())

	access, err := s.validateToken(tokens.AccessToken, tokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 42, access.UserID)

	refresh, err := s.validateToken(tokens.RefreshToken, tokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, 42, refresh.UserID)
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	s := NewAuthService(nil, testAuthConfig())
	tokens, err := s.generateTokens(1)
	require.NoError(t, err)

	_, err = s.validateToken(tokens.RefreshToken, tokenTypeAccess)
	assert.ErrorContains(t, err, "invalid token type")
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	other := NewAuthService(nil, config.AuthConfig{
		JWTSecret:            "another-secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
	})
	tokens, err := other.generateTokens(1)
	require.NoError(t, err)

	s := NewAuthService(nil, testAuthConfig())
	_, err = s.validateToken(tokens.AccessToken, tokenTypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTokenDuration = -time.Minute
	s := NewAuthService(nil, cfg)

	token, _, err := s.generateSpecificToken(1, tokenTypeAccess, cfg.AccessTokenDuration)
	require.NoError(t, err)

	_, err = s.validateToken(token, tokenTypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRefreshToken(t *testing.T) {
	s := NewAuthService(nil, testAuthConfig())
	tokens, err := s.generateTokens(9)
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		resp, err := s.RefreshToken(context.Background(), tokens.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, tokens.RefreshToken, resp.RefreshToken)

		claims, err := s.validateToken(resp.AccessToken, tokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, 9, claims.UserID)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := s.RefreshToken(context.Background(), tokens.AccessToken)
		assert.True(t, apperror.IsAuthError(err))
	})
}
