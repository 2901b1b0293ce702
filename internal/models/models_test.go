package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_PartnerOf(t *testing.T) {
	m := Message{SenderID: 3, ReceiverID: 9}
	assert.Equal(t, uint(9), m.PartnerOf(3))
	assert.Equal(t, uint(3), m.PartnerOf(9))
}

func TestLearningStreak(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)
	ago := func(days int, hour int) time.Time {
		d := now.AddDate(0, 0, -days)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		posts []time.Time
		want  int
	}{
		{"no posts", nil, 0},
		{"today only", []time.Time{ago(0, 8)}, 1},
		{"several posts one day", []time.Time{ago(0, 1), ago(0, 8), ago(1, 23)}, 2},
		{"ends yesterday", []time.Time{ago(1, 10), ago(2, 10)}, 2},
		{"gap breaks it", []time.Time{ago(0, 1), ago(1, 1), ago(3, 1)}, 2},
		{"two days ago is over", []time.Time{ago(2, 10), ago(3, 10)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LearningStreak(tt.posts, now))
		})
	}
}

func TestIsValidSkillCategory(t *testing.T) {
	for _, s := range SkillCategories {
		assert.True(t, IsValidSkillCategory(s), s)
	}
	assert.False(t, IsValidSkillCategory("cooking"), "matching is case-sensitive")
	assert.False(t, IsValidSkillCategory(""))
}

func TestIsValidPrivacy(t *testing.T) {
	assert.True(t, IsValidPrivacy(PrivacyPublic))
	assert.True(t, IsValidPrivacy(PrivacyFollowers))
	assert.True(t, IsValidPrivacy(PrivacyPrivate))
	assert.False(t, IsValidPrivacy("friends"))
}

func TestReference_TableName(t *testing.T) {
	assert.Equal(t, "portfolio_references", Reference{}.TableName())
}

func TestErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("loading post: %w", NewNotFoundError("Post", 7))
	assert.Equal(t, CodeNotFound, ErrorCode(wrapped))
	assert.Equal(t, "", ErrorCode(errors.New("plain")))

	internal := NewInternalError(io.ErrUnexpectedEOF)
	assert.ErrorIs(t, internal, io.ErrUnexpectedEOF)
	assert.Equal(t, "Post with ID 7 not found", NewNotFoundError("Post", 7).Error())
}

func TestRespondWithError_HidesInternalDetail(t *testing.T) {
	app := fiber.New()
	app.Get("/app", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusConflict, NewConflictError("Username is already taken"))
	})
	app.Get("/raw", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("pq: connection reset"))
	})

	tests := []struct {
		path   string
		status int
		body   ErrorResponse
	}{
		{"/app", fiber.StatusConflict, ErrorResponse{Error: "Username is already taken", Code: CodeConflict}},
		{"/raw", fiber.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Code: CodeInternal}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			var got ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.body, got)
		})
	}
}
