// Package models contains data structures for the application's domain models.
package models

import "time"

// Profile is a Talenta user. Counter fields are derived by the repository at
// read time and never persisted.
type Profile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	FullName     string    `json:"full_name"`
	Bio          string    `gorm:"type:text" json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	AvatarPath   string    `json:"-"`
	SkillTags    []string  `gorm:"serializer:json" json:"skill_tags"`
	Hireable     bool      `gorm:"not null;default:false" json:"hireable"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	FollowersCount int64 `gorm:"->;-:migration" json:"followers_count"`
	FollowingCount int64 `gorm:"->;-:migration" json:"following_count"`
	PostsCount     int64 `gorm:"->;-:migration" json:"posts_count"`
	LearningStreak int   `gorm:"-" json:"learning_streak"`
	IsFollowing    bool  `gorm:"-" json:"is_following"`
}

// MaxStreakDays bounds how far back LearningStreak looks.
const MaxStreakDays = 365

// LearningStreak counts consecutive UTC days with at least one post, ending
// today. A streak whose last post was yesterday is still alive.
func LearningStreak(postTimes []time.Time, now time.Time) int {
	days := make(map[time.Time]struct{}, len(postTimes))
	for _, t := range postTimes {
		days[utcDay(t)] = struct{}{}
	}

	day := utcDay(now)
	if _, ok := days[day]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for streak < MaxStreakDays {
		if _, ok := days[day]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SummaryColumns are the profile columns safe to embed in other resources.
var SummaryColumns = []string{"id", "username", "full_name", "avatar_url"}
