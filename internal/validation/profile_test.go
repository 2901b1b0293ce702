package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Hyphenated", "bread-baker", false},
		{"Too Short", "tu", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "user@123", true},
		{"Starts Dash", "-user", true},
		{"Ends Underscore", "user_", true},
		{"Reserved", "Admin", true},
		{"Reserved Route", "me", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequiredText(t *testing.T) {
	got, err := RequiredText("content", "  nice shot  ", MaxCommentLength)
	require.NoError(t, err)
	assert.Equal(t, "nice shot", got)

	_, err = RequiredText("content", "   ", MaxCommentLength)
	assert.EqualError(t, err, "content is required")

	_, err = RequiredText("content", strings.Repeat("x", MaxCommentLength+1), MaxCommentLength)
	assert.Error(t, err)

	// Limits count characters, not bytes.
	_, err = RequiredText("content", strings.Repeat("é", MaxCommentLength), MaxCommentLength)
	assert.NoError(t, err)
}

func TestNormalizeSkillTags(t *testing.T) {
	tags, err := NormalizeSkillTags([]string{" Cooking ", "cooking", "", "Music", "MUSIC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cooking", "Music"}, tags)

	many := make([]string, 0, MaxSkillTags+1)
	for i := 0; i <= MaxSkillTags; i++ {
		many = append(many, strings.Repeat("t", i+1))
	}
	_, err = NormalizeSkillTags(many)
	assert.Error(t, err)

	_, err = NormalizeSkillTags([]string{strings.Repeat("x", MaxSkillTagLength+1)})
	assert.Error(t, err)
}

func TestValidateHTTPURL(t *testing.T) {
	assert.NoError(t, ValidateHTTPURL("https://portfolio.example.com/work"))
	assert.NoError(t, ValidateHTTPURL("http://example.com"))
	assert.Error(t, ValidateHTTPURL("ftp://example.com/file"))
	assert.Error(t, ValidateHTTPURL("javascript:alert(1)"))
	assert.Error(t, ValidateHTTPURL("/relative/path"))
}
