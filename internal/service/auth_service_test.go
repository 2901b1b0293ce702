package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"talenta/internal/cache"
	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_SignUpCreatesProfileAndWelcome(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()

	res, err := e.authSvc.SignUp(ctx, SignUpInput{
		Email:    "  Maya@Example.com ",
		Password: "bread4ever",
		Username: "maya",
		FullName: "Maya Chen",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "maya@example.com", res.User.Email)
	assert.Equal(t, "maya", res.User.Username)
	assert.NotEqual(t, "bread4ever", res.User.PasswordHash)

	welcome := e.notificationsFor(t, res.User.ID, models.NotificationWelcome)
	require.Len(t, welcome, 1)
	assert.Equal(t, "Welcome to Talenta!", welcome[0].Title)
	assert.Equal(t, "Start exploring skills and connecting with creators", welcome[0].Message)

	_, err = e.authSvc.SignUp(ctx, SignUpInput{Email: "maya@example.com", Password: "another1pass", Username: "maya2"})
	assertCode(t, err, models.CodeConflict)
}

func TestAuthService_SignUpDerivesUsername(t *testing.T) {
	e := newTestEnv(t, "")
	res, err := e.authSvc.SignUp(context.Background(), SignUpInput{Email: "j.doe+art@example.com", Password: "paint1234"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.User.Username, "j_doe_art_"), res.User.Username)
	assert.NoError(t, validation.ValidateUsername(res.User.Username))
}

func TestAuthService_SignUpValidation(t *testing.T) {
	e := newTestEnv(t, "")
	tests := []SignUpInput{
		{Password: "paint1234"},
		{Email: "a@example.com"},
		{Email: "not-an-email", Password: "paint1234"},
		{Email: "a@example.com", Password: "short1"},
		{Email: "a@example.com", Password: "paint1234", Username: "admin"},
	}
	for _, in := range tests {
		_, err := e.authSvc.SignUp(context.Background(), in)
		assertCode(t, err, models.CodeValidation)
	}
}

func TestAuthService_SignInSameErrorForUnknownAndWrong(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	_, err := e.authSvc.SignUp(ctx, SignUpInput{Email: "leo@example.com", Password: "guitar123", Username: "leo"})
	require.NoError(t, err)

	res, err := e.authSvc.SignIn(ctx, "LEO@example.com", "guitar123")
	require.NoError(t, err)
	assert.Equal(t, "leo", res.User.Username)

	_, wrongPass := e.authSvc.SignIn(ctx, "leo@example.com", "guitar999")
	_, unknown := e.authSvc.SignIn(ctx, "nobody@example.com", "guitar123")
	assertCode(t, wrongPass, models.CodeUnauthorized)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestAuthService_SignOutRevokesToken(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	claims := &middleware.AccessClaims{UserID: 1, JTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	revoked, err := e.authSvc.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, e.authSvc.SignOut(ctx, claims))
	revoked, err = e.authSvc.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.InDelta(t, time.Hour.Seconds(), e.mr.TTL(middleware.BlacklistKey("jti-1")).Seconds(), 5)

	// Expired tokens need no blacklist entry.
	require.NoError(t, e.authSvc.SignOut(ctx, &middleware.AccessClaims{JTI: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.False(t, e.mr.Exists(middleware.BlacklistKey("old")))
}

func TestAuthService_PasswordReset(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	_, err := e.authSvc.SignUp(ctx, SignUpInput{Email: "ivy@example.com", Password: "garden123", Username: "ivy"})
	require.NoError(t, err)

	token, err := e.authSvc.ForgotPassword(ctx, "ivy@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, e.mr.Exists(cache.PasswordResetKey(token)))

	unknownToken, err := e.authSvc.ForgotPassword(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, unknownToken)

	err = e.authSvc.ResetPassword(ctx, ResetPasswordInput{Token: token, Password: "newgarden1", Confirm: "different1"})
	assertCode(t, err, models.CodeValidation)

	require.NoError(t, e.authSvc.ResetPassword(ctx, ResetPasswordInput{Token: token, Password: "newgarden1", Confirm: "newgarden1"}))

	err = e.authSvc.ResetPassword(ctx, ResetPasswordInput{Token: token, Password: "newgarden2", Confirm: "newgarden2"})
	assertCode(t, err, models.CodeValidation)

	_, err = e.authSvc.SignIn(ctx, "ivy@example.com", "garden123")
	assertCode(t, err, models.CodeUnauthorized)
	_, err = e.authSvc.SignIn(ctx, "ivy@example.com", "newgarden1")
	assert.NoError(t, err)
}

func TestAuthService_ResetTokenHiddenOutsideDevelopment(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()
	_, err := e.authSvc.SignUp(ctx, SignUpInput{Email: "ivy@example.com", Password: "garden123", Username: "ivy"})
	require.NoError(t, err)

	svc := NewAuthService(e.profiles, e.notificationSvc, middleware.NewTokens("secret", time.Hour), e.rdb, false)
	token, err := svc.ForgotPassword(ctx, "ivy@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Len(t, e.mr.Keys(), 1)
}

func TestAuthService_WSTickets(t *testing.T) {
	e := newTestEnv(t, "")
	ctx := context.Background()

	ticket, ttl, err := e.authSvc.IssueWSTicket(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, cache.WSTicketTTL, ttl)

	id, err := e.authSvc.RedeemWSTicket(ctx, ticket)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	id, err = e.authSvc.RedeemWSTicket(ctx, ticket)
	require.NoError(t, err)
	assert.Zero(t, id, "tickets are single use")

	ticket, _, err = e.authSvc.IssueWSTicket(ctx, 42)
	require.NoError(t, err)
	e.mr.FastForward(cache.WSTicketTTL + time.Second)
	id, err = e.authSvc.RedeemWSTicket(ctx, ticket)
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.True(t, strings.HasPrefix(usernameFromEmail("___@example.com"), "creator_"))
	long := usernameFromEmail(strings.Repeat("a", 40) + "@example.com")
	assert.NoError(t, validation.ValidateUsername(long))
}
