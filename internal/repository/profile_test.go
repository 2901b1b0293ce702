package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"talenta/internal/models"
	"talenta/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProfileRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		id           uint
		mockBehavior func()
		expectedCode string
	}{
		{
			name: "Success",
			id:   1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "followers_count", "following_count", "posts_count"}).
					AddRow(1, "chef", 10, 2, 5)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT profiles.*, (SELECT COUNT(*) FROM follows WHERE follows.following_id = profiles.id) AS followers_count`)).
					WillReturnRows(rows)
			},
		},
		{
			name: "Not Found",
			id:   99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles" WHERE profiles.id = $3`)).
					WithArgs(models.PrivacyPublic, 0, 99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name: "Database Error",
			id:   2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`FROM "profiles"`)).
					WillReturnError(errors.New("connection timeout"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			profile, err := repo.GetByID(ctx, tt.id, 0)

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, models.ErrorCode(err))
				assert.Nil(t, profile)
			} else if assert.NoError(t, err) {
				assert.Equal(t, "chef", profile.Username)
				assert.Equal(t, int64(10), profile.FollowersCount)
				assert.Equal(t, int64(5), profile.PostsCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_DerivedCounters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	creator := seedProfile(t, db, "creator")
	fan := seedProfile(t, db, "fan")
	other := seedProfile(t, db, "other")

	seedPost(t, db, creator.ID)
	seedPost(t, db, creator.ID, withPrivacy(models.PrivacyPrivate))
	_, err := follows.Add(ctx, fan.ID, creator.ID)
	require.NoError(t, err)
	_, err = follows.Add(ctx, other.ID, creator.ID)
	require.NoError(t, err)
	_, err = follows.Add(ctx, creator.ID, fan.ID)
	require.NoError(t, err)

	asOwner, err := repo.GetByID(ctx, creator.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), asOwner.FollowersCount)
	assert.Equal(t, int64(1), asOwner.FollowingCount)
	assert.Equal(t, int64(2), asOwner.PostsCount)
	assert.False(t, asOwner.IsFollowing)

	asFan, err := repo.GetByID(ctx, creator.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), asFan.PostsCount)
	assert.True(t, asFan.IsFollowing)

	anon, err := repo.GetByID(ctx, creator.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), anon.PostsCount)
	assert.False(t, anon.IsFollowing)

	_, err = repo.GetByID(ctx, 4242, 0)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestProfileRepository_Upsert(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	p := seedProfile(t, db, "original")
	seedProfile(t, db, "taken")

	p.Username = "renamed"
	p.Bio = "I bake bread"
	p.SkillTags = []string{"Cooking", "Baking"}
	p.AvatarURL = "http://blobs.test/avatars/1/1.webp"
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.GetByID(ctx, p.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Username)
	assert.Equal(t, "I bake bread", got.Bio)
	assert.Equal(t, []string{"Cooking", "Baking"}, got.SkillTags)
	assert.Equal(t, "original@example.com", got.Email, "email is not an editable column")

	p.Username = "taken"
	err = repo.Upsert(ctx, p)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestProfileRepository_AccountOperations(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	p := &models.Profile{Email: "new@example.com", PasswordHash: "h1", Username: "newbie"}
	require.NoError(t, repo.Create(ctx, p))

	dup := &models.Profile{Email: "new@example.com", PasswordHash: "h2", Username: "another"}
	assert.Equal(t, models.CodeConflict, models.ErrorCode(repo.Create(ctx, dup)))

	found, err := repo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, p.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.SetHireable(ctx, p.ID, true))
	require.NoError(t, repo.UpdatePassword(ctx, p.ID, "h3"))
	found, err = repo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, found.Hireable)
	assert.Equal(t, "h3", found.PasswordHash)

	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.SetHireable(ctx, 999, true)))

	ok, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	summaries, err := repo.GetSummaries(ctx, []uint{p.ID, 999})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "newbie", summaries[p.ID].Username)
	assert.Empty(t, summaries[p.ID].PasswordHash)
}

func TestProfileRepository_Search(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	seedProfile(t, db, "potter_jane")
	seedProfile(t, db, "potterxjane")
	seedProfile(t, db, "chef")

	found, err := repo.Search(ctx, "POTTER", 20)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	// _ is not a wildcard.
	found, err = repo.Search(ctx, "potter_", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "potter_jane", found[0].Username)

	found, err = repo.Search(ctx, "full chef", 20)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
