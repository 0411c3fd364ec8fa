package services

import (
	"testing"

	"github.com/qboxhq/qbox/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = auth.Register(&dto.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = auth.Register(&dto.RegisterRequest{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := auth.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = auth.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&dto.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	refreshed, err := auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is revoked by rotation.
	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&dto.RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = auth.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateAccount(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, testConfig())

	resp, err := auth.Register(&dto.RegisterRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	bio := "Hello there"
	avatar := "https://example.com/avatar.png"
	user, err := auth.UpdateAccount(resp.User.ID, &dto.UpdateAccountRequest{
		Bio:       &bio,
		AvatarURL: &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
	assert.Equal(t, avatar, user.AvatarURL)

	taken := "dave"
	_, err = auth.Register(&dto.RegisterRequest{
		Username: "erin",
		Email:    "erin@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	erin, err := auth.Login(&dto.LoginRequest{Email: "erin@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = auth.UpdateAccount(erin.User.ID, &dto.UpdateAccountRequest{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
