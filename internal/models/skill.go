package models

// SkillCategories is the fixed catalog posts are tagged with.
var SkillCategories = []string{
	"Cooking",
	"Photography",
	"Music",
	"Art & Design",
	"Fitness",
	"Technology",
	"Language",
	"Business",
	"Crafts",
	"Gaming",
	"Beauty",
	"Gardening",
}

// IsValidSkillCategory reports whether name is in the catalog.
func IsValidSkillCategory(name string) bool {
	for _, s := range SkillCategories {
		if s == name {
			return true
		}
	}
	return false
}

// SkillCount is an aggregate of posts per skill category.
type SkillCount struct {
	SkillCategory string `json:"skill_category"`
	PostsCount    int64  `json:"posts_count"`
}
