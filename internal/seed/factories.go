package seed

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"talenta/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var usernameJunk = regexp.MustCompile(`[^a-z0-9_]+`)

// Factory builds domain rows with fake content and persists them.
// It is used by the seeder and by tests that need realistic data.
type Factory struct {
	db           *gorm.DB
	faker        *gofakeit.Faker
	passwordHash string
	maxDays      int
	now          func() time.Time
	seq          int
}

// NewFactory binds a factory to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, passwordHash string, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		db:           db,
		faker:        gofakeit.New(seed),
		passwordHash: passwordHash,
		maxDays:      maxDays,
		now:          time.Now,
	}
}

// Faker exposes the generator so callers draw from the same sequence.
func (f *Factory) Faker() *gofakeit.Faker {
	return f.faker
}

// username derives a valid, unique handle from the faker's username.
func (f *Factory) username() string {
	f.seq++
	base := usernameJunk.ReplaceAllString(strings.ToLower(f.faker.Username()), "")
	base = strings.Trim(base, "_")
	if len(base) < 3 {
		base = "creator"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s%d", base, f.seq)
}

// skillTags picks one to three catalog skills.
func (f *Factory) skillTags() []string {
	n := f.faker.Number(1, 3)
	picked := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(picked) < n {
		s := f.Skill()
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		picked = append(picked, s)
	}
	return picked
}

// Skill returns a random catalog category.
func (f *Factory) Skill() string {
	return f.faker.RandomString(models.SkillCategories)
}

// pastTime spreads created_at over the configured window.
func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return f.now().Add(-back)
}

// CreateProfile persists a fake profile. Overrides run before the insert.
func (f *Factory) CreateProfile(ctx context.Context, overrides ...func(*models.Profile)) (*models.Profile, error) {
	username := f.username()
	p := &models.Profile{
		Email:        username + "@example.com",
		PasswordHash: f.passwordHash,
		Username:     username,
		FullName:     f.faker.Name(),
		Bio:          f.faker.Sentence(12),
		AvatarURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		SkillTags:    f.skillTags(),
		Hireable:     f.faker.Number(0, 3) == 0,
	}
	for _, override := range overrides {
		override(p)
	}
	if err := f.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("create profile %s: %w", p.Username, err)
	}
	return p, nil
}

// BuildPost returns an unsaved post by author. Roughly half carry an image.
func (f *Factory) BuildPost(author *models.Profile, overrides ...func(*models.Post)) *models.Post {
	skill := f.Skill()
	if len(author.SkillTags) > 0 && f.faker.Bool() {
		skill = f.faker.RandomString(author.SkillTags)
	}
	post := &models.Post{
		UserID:         author.ID,
		Content:        f.faker.Paragraph(1, 3, 12, "\n"),
		SkillCategory:  skill,
		PrivacySetting: models.PrivacyPublic,
		CreatedAt:      f.pastTime(),
	}
	if f.faker.Number(0, 9) == 0 {
		post.PrivacySetting = f.faker.RandomString([]string{models.PrivacyFollowers, models.PrivacyPrivate})
	}
	if f.faker.Bool() {
		post.MediaType = models.MediaTypeImage
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePosts inserts posts in batches.
func (f *Factory) CreatePosts(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.WithContext(ctx).CreateInBatches(posts, 200).Error
}

// CreatePost builds and persists a single post.
func (f *Factory) CreatePost(ctx context.Context, author *models.Profile, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a short comment by user on post.
func (f *Factory) CreateComment(ctx context.Context, user *models.Profile, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:  user.ID,
		PostID:  post.ID,
		Content: f.faker.Sentence(8),
	}
	if err := f.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike inserts a like, ignoring one that already exists. It reports
// whether a row was added.
func (f *Factory) CreateLike(ctx context.Context, user *models.Profile, post *models.Post) (bool, error) {
	res := f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Like{UserID: user.ID, PostID: post.ID})
	return res.RowsAffected > 0, res.Error
}

// CreateFollow inserts a follow edge, ignoring duplicates.
func (f *Factory) CreateFollow(ctx context.Context, follower, following *models.Profile) (bool, error) {
	res := f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID})
	return res.RowsAffected > 0, res.Error
}

// CreateMessage persists a message from sender to receiver.
func (f *Factory) CreateMessage(ctx context.Context, sender, receiver *models.Profile) (*models.Message, error) {
	msg := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    f.faker.Sentence(10),
		Read:       f.faker.Bool(),
		CreatedAt:  f.pastTime(),
	}
	if err := f.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// CreateLinkReference persists a portfolio link for owner. Documents need
// object storage and are never seeded.
func (f *Factory) CreateLinkReference(ctx context.Context, owner *models.Profile) (*models.Reference, error) {
	ref := &models.Reference{
		UserID:      owner.ID,
		Type:        models.ReferenceLink,
		Title:       f.faker.JobTitle(),
		Description: f.faker.Sentence(10),
		URL:         "https://" + f.faker.DomainName() + "/portfolio",
	}
	if err := f.db.WithContext(ctx).Create(ref).Error; err != nil {
		return nil, err
	}
	return ref, nil
}
