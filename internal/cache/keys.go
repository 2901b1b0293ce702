package cache

import (
	"fmt"
	"strings"
	"time"
)

const (
	FeedKeyPattern     = "feed:*"
	PasswordResetTTL   = time.Hour
	WSTicketTTL        = 30 * time.Second
	FeedTTL            = 30 * time.Second
	TrendingSkillsTTL  = 5 * time.Minute
	trendingSkillsKey  = "feed:skills:trending"
	passwordResetKeyNS = "pwreset:"
	wsTicketKeyNS      = "ws_ticket:"
)

// FeedKey identifies an anonymous first page for a sort mode and skill filter.
// The limit is part of the key because the feed and explore pages differ in size.
func FeedKey(sort, skill string, limit int) string {
	if skill == "" {
		skill = "all"
	}
	return fmt.Sprintf("feed:%s:%s:%d", sort, strings.ToLower(skill), limit)
}

// TrendingSkillsKey holds the cached trending skill aggregate. It sits under
// FeedKeyPattern so post writes invalidate it with the feed pages.
func TrendingSkillsKey() string {
	return trendingSkillsKey
}

// PasswordResetKey maps a reset token to a profile id.
func PasswordResetKey(token string) string {
	return passwordResetKeyNS + token
}

// WSTicketKey maps a websocket ticket to a profile id.
func WSTicketKey(ticket string) string {
	return wsTicketKeyNS + ticket
}
