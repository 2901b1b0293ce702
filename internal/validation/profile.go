package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxFullNameLength = 100
	MaxBioLength      = 500
	MaxSkillTags      = 10
	MaxSkillTagLength = 30
	MaxCommentLength  = 2000
	MaxMessageLength  = 4000
	MaxReferenceTitle = 200
	minUsernameLength = 3
	maxUsernameLength = 30
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Usernames that collide with routes or read as staff accounts.
var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"me":       {},
	"messages": {},
	"metrics":  {},
	"profiles": {},
	"posts":    {},
	"settings": {},
	"support":  {},
	"talenta":  {},
	"ws":       {},
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < minUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", minUsernameLength)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if first == '_' || first == '-' || last == '_' || last == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username is reserved")
	}
	return nil
}

// MaxRunes fails when s is longer than limit characters.
func MaxRunes(field, s string, limit int) error {
	if utf8.RuneCountInString(s) > limit {
		return fmt.Errorf("%s must not exceed %d characters", field, limit)
	}
	return nil
}

// RequiredText trims s and enforces 1..limit characters.
func RequiredText(field, s string, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if err := MaxRunes(field, s, limit); err != nil {
		return "", err
	}
	return s, nil
}

// NormalizeSkillTags trims, drops empties and case-insensitive duplicates,
// and enforces the tag count and length limits.
func NormalizeSkillTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		if err := MaxRunes("skill tag", tag, MaxSkillTagLength); err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxSkillTags {
		return nil, fmt.Errorf("at most %d skill tags are allowed", MaxSkillTags)
	}
	return out, nil
}

// ValidateHTTPURL accepts absolute http and https URLs only.
func ValidateHTTPURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return fmt.Errorf("url must be a valid absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https")
	}
	return nil
}
