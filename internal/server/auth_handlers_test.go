package server

import (
	"net/http"
	"testing"
	"time"

	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_SignUpSignInAndMe(t *testing.T) {
	ts := newTestServer(t)
	token, id := ts.signUp(t, "maya")

	var me models.Profile
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/auth/me", token, nil, &me))
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "maya@example.com", me.Email)

	var res service.AuthResult
	status := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maya@example.com", "password": "skills4days",
	}, &res)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, res.Token)

	var errBody models.ErrorResponse
	status = ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maya@example.com", "password": "wrong-pass1",
	}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, models.CodeUnauthorized, errBody.Code)
}

func TestAuth_SignUpErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "maya")

	var errBody models.ErrorResponse
	status := ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "maya@example.com", "password": "skills4days", "username": "maya_two",
	}, &errBody)
	assert.Equal(t, http.StatusConflict, status)

	status = ts.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "short@example.com", "password": "short",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.CodeValidation, errBody.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signUp(t, "maya")

	otherSecret := middleware.NewTokens("another-secret-another-secret-xx", time.Hour)
	forged, _, err := otherSecret.Issue(1, "maya")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", forged, http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"valid", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.do(t, http.MethodGet, "/api/auth/me", tt.header, nil, nil))
		})
	}
}

func TestAuth_LogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signUp(t, "maya")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/api/auth/logout", token, nil, nil))

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/auth/me", token, nil, &errBody))
	assert.Equal(t, "Token has been revoked", errBody.Error)

	// Optional routes treat a revoked token as anonymous.
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/feed", token, nil, nil))
}

func TestAuth_PasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.signUp(t, "maya")

	var forgot struct {
		Message    string `json:"message"`
		ResetToken string `json:"reset_token"`
	}
	status := ts.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "maya@example.com"}, &forgot)
	require.Equal(t, http.StatusAccepted, status)
	require.NotEmpty(t, forgot.ResetToken)

	var unknown map[string]any
	status = ts.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"}, &unknown)
	assert.Equal(t, http.StatusAccepted, status)
	assert.NotContains(t, unknown, "reset_token")

	reset := map[string]string{
		"token":            forgot.ResetToken,
		"password":         "brandnew99",
		"confirm_password": "brandnew99",
	}
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/auth/reset-password", "", reset, nil))
	// Tokens are single use.
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/auth/reset-password", "", reset, nil))

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maya@example.com", "password": "brandnew99",
	}, nil))
}

func TestAuth_WSTicketIsSingleUse(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signUp(t, "maya")

	var issued struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/ws/ticket", token, nil, &issued))
	require.NotEmpty(t, issued.Ticket)
	assert.Equal(t, 30, issued.ExpiresIn)

	// A plain GET passes authentication and is then refused by the upgrader.
	assert.Equal(t, http.StatusUpgradeRequired, ts.do(t, http.MethodGet, "/api/ws?ticket="+issued.Ticket, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/ws?ticket="+issued.Ticket, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/ws?ticket=made-up", "", nil, nil))

	// Tickets are only honoured on websocket paths.
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/auth/me?ticket="+issued.Ticket, "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/ws/ticket", "", nil, nil))
}
