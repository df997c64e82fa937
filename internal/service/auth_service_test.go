package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	usersFile := filepath.Join(t.TempDir(), "users.json")
	svc, err := NewAuthService(usersFile, "test-secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestAuthServiceLogin(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	t.Run("seeded admin can log in", func(t *testing.T) {
		tokens, err := svc.Login("admin", "admin123")
		require.NoError(t, err)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		require.Equal(t, "Bearer", tokens.TokenType)
		require.Equal(t, RoleAdmin, tokens.User.Role)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login("admin", "wrong")
		require.Error(t, err)
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		_, err := svc.Login("ghost", "admin123")
		require.Error(t, err)
	})
}

func TestAuthServiceTokens(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	tokens, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	t.Run("access token validates as access", func(t *testing.T) {
		claims, validateErr := svc.ValidateToken(tokens.AccessToken, "access")
		require.NoError(t, validateErr)
		require.Equal(t, "admin", claims.Username)
		require.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, validateErr := svc.ValidateToken(tokens.RefreshToken, "access")
		require.Error(t, validateErr)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		rotated, refreshErr := svc.Refresh(tokens.RefreshToken)
		require.NoError(t, refreshErr)
		require.NotEmpty(t, rotated.AccessToken)

		// The consumed refresh token cannot be replayed.
		_, refreshErr = svc.Refresh(tokens.RefreshToken)
		require.Error(t, refreshErr)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		fresh, loginErr := svc.Login("admin", "admin123")
		require.NoError(t, loginErr)

		svc.Logout(fresh.RefreshToken)
		_, refreshErr := svc.Refresh(fresh.RefreshToken)
		require.Error(t, refreshErr)
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		_, validateErr := svc.ValidateToken("not-a-token", "access")
		require.Error(t, validateErr)
	})
}

func TestAuthServiceRegister(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	t.Run("registers an operator", func(t *testing.T) {
		user, err := svc.Register("alice", "s3cret!", RoleOperator)
		require.NoError(t, err)
		require.Equal(t, RoleOperator, user.Role)

		tokens, loginErr := svc.Login("alice", "s3cret!")
		require.NoError(t, loginErr)
		require.Equal(t, "alice", tokens.User.Username)
	})

	t.Run("defaults to viewer", func(t *testing.T) {
		user, err := svc.Register("bob", "s3cret!", "")
		require.NoError(t, err)
		require.Equal(t, RoleViewer, user.Role)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, err := svc.Register("Admin", "whatever", RoleViewer)
		require.Error(t, err)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := svc.Register("carol", "s3cret!", "superuser")
		require.Error(t, err)
	})

	t.Run("persists across restarts", func(t *testing.T) {
		usersFile := filepath.Join(t.TempDir(), "users.json")
		first, err := NewAuthService(usersFile, "test-secret", time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = first.Register("dave", "s3cret!", RoleOperator)
		require.NoError(t, err)

		second, err := NewAuthService(usersFile, "test-secret", time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = second.Login("dave", "s3cret!")
		require.NoError(t, err)
	})
}
