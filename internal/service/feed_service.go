package service

import (
	"context"
	"strings"
	"time"

	"talenta/internal/cache"
	"talenta/internal/featureflags"
	"talenta/internal/models"
	"talenta/internal/observability"
	"talenta/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	TrendingSkillsLimit  = 5
	SuggestedSkillsLimit = 10
	SearchResultsLimit   = 20
	maxSearchQueryLength = 100
)

// FeedService reads the public feeds, search results and skill aggregates.
type FeedService struct {
	posts    repository.PostRepository
	profiles repository.ProfileRepository
	likes    repository.LikeRepository
	rdb      *redis.Client
	flags    *featureflags.Manager
	now      func() time.Time
}

type FeedInput struct {
	ViewerID uint
	Sort     string
	Skill    string
	Limit    int
	Offset   int
}

// SearchResult holds both halves of a search.
type SearchResult struct {
	Profiles []*models.Profile `json:"profiles"`
	Posts    []*models.Post    `json:"posts"`
}

func NewFeedService(
	posts repository.PostRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	rdb *redis.Client,
	flags *featureflags.Manager,
) *FeedService {
	return &FeedService{
		posts:    posts,
		profiles: profiles,
		likes:    likes,
		rdb:      rdb,
		flags:    flags,
		now:      time.Now,
	}
}

// Feed returns a page of public posts with counters and the viewer's likes.
func (s *FeedService) Feed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	sort := strings.ToLower(strings.TrimSpace(in.Sort))
	switch sort {
	case "":
		sort = repository.SortRecent
	case repository.SortRecent, repository.SortPopular, repository.SortTrending:
	default:
		return nil, models.NewValidationError("sort must be recent, popular or trending")
	}
	skill := strings.TrimSpace(in.Skill)
	if skill != "" && !models.IsValidSkillCategory(skill) {
		return nil, models.NewValidationError("Unknown skill category")
	}

	q := repository.FeedQuery{
		Sort:   sort,
		Skill:  skill,
		Limit:  repository.ClampLimit(in.Limit),
		Offset: max(in.Offset, 0),
	}
	if sort == repository.SortTrending {
		q.Since = s.now().Add(-repository.TrendingWindow)
	}

	defer observability.ObserveFeed(sort)()

	var posts []*models.Post
	fetch := func() error {
		var err error
		posts, err = s.posts.List(ctx, q)
		return err
	}

	if s.cacheable(in.ViewerID, q) {
		key := cache.FeedKey(sort, skill, q.Limit)
		if err := cache.CacheAside(ctx, s.rdb, "feed", key, &posts, cache.FeedTTL, fetch); err != nil {
			return nil, err
		}
		return nonNilPosts(posts), nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	if err := s.annotateLikes(ctx, in.ViewerID, posts); err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

// Only anonymous first pages of recent and trending are shared between callers.
func (s *FeedService) cacheable(viewerID uint, q repository.FeedQuery) bool {
	if s.rdb == nil || viewerID != 0 || q.Offset != 0 {
		return false
	}
	if q.Sort != repository.SortRecent && q.Sort != repository.SortTrending {
		return false
	}
	return s.flags.Enabled(featureflags.TrendingCache, 0)
}

// annotateLikes marks the posts viewerID liked using one IN query.
func (s *FeedService) annotateLikes(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	set := make(map[uint]struct{}, len(liked))
	for _, id := range liked {
		set[id] = struct{}{}
	}
	for _, p := range posts {
		_, p.Liked = set[p.ID]
	}
	return nil
}

// GetPost returns a post visible to viewerID.
func (s *FeedService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetVisible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.annotateLikes(ctx, viewerID, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// UserPosts returns everything for the owner and public posts for others.
func (s *FeedService) UserPosts(ctx context.Context, profileID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.posts.ListByUser(ctx, profileID, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.annotateLikes(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return nonNilPosts(posts), nil
}

// TrendingSkills returns the most posted categories of the last week.
func (s *FeedService) TrendingSkills(ctx context.Context) ([]models.SkillCount, error) {
	var counts []models.SkillCount
	fetch := func() error {
		var err error
		counts, err = s.posts.SkillCounts(ctx, s.now().Add(-repository.TrendingWindow), TrendingSkillsLimit)
		return err
	}
	if s.rdb != nil && s.flags.Enabled(featureflags.TrendingCache, 0) {
		err := cache.CacheAside(ctx, s.rdb, "trending_skills", cache.TrendingSkillsKey(), &counts, cache.TrendingSkillsTTL, fetch)
		if err != nil {
			return nil, err
		}
	} else if err := fetch(); err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []models.SkillCount{}
	}
	return counts, nil
}

// SuggestedSkills ranks the whole catalog by public post count. Categories
// nobody posted in yet follow in catalog order.
func (s *FeedService) SuggestedSkills(ctx context.Context, limit int) ([]models.SkillCount, error) {
	if limit <= 0 {
		limit = SuggestedSkillsLimit
	}
	counts, err := s.posts.SkillCounts(ctx, time.Time{}, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(counts))
	out := make([]models.SkillCount, 0, len(models.SkillCategories))
	for _, c := range counts {
		if !models.IsValidSkillCategory(c.SkillCategory) {
			continue
		}
		seen[c.SkillCategory] = struct{}{}
		out = append(out, c)
	}
	for _, name := range models.SkillCategories {
		if _, ok := seen[name]; !ok {
			out = append(out, models.SkillCount{SkillCategory: name})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Search matches profiles by username or name and public posts by content or skill.
func (s *FeedService) Search(ctx context.Context, query string, viewerID uint) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	if len([]rune(query)) > maxSearchQueryLength {
		return nil, models.NewValidationError("Search query is too long")
	}

	profiles, err := s.profiles.Search(ctx, query, SearchResultsLimit)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Search(ctx, query, SearchResultsLimit)
	if err != nil {
		return nil, err
	}
	if err := s.annotateLikes(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	return &SearchResult{Profiles: profiles, Posts: nonNilPosts(posts)}, nil
}

// InvalidateFeeds drops every cached feed page.
func (s *FeedService) InvalidateFeeds(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := cache.InvalidatePattern(ctx, s.rdb, cache.FeedKeyPattern); err != nil {
		logCacheError(ctx, "invalidate_feeds", err)
	}
}

func nonNilPosts(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}
