package repository

import (
	"context"
	"regexp"
	"testing"

	"talenta/internal/models"
	"talenta/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_MarkReadScopesByRecipient(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications" SET "read"=$1 WHERE id = $2 AND user_id = $3`)).
		WithArgs(true, 8, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := repo.MarkRead(context.Background(), 8, 3)
	assert.Nil(t, n)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ReadFlow(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	alice := seedProfile(t, db, "alice")
	bob := seedProfile(t, db, "bob")

	var aliceIDs []uint
	for i := 0; i < 3; i++ {
		n := &models.Notification{UserID: alice.ID, Type: models.NotificationLike, Title: "New Like", Message: "Someone liked your post", RelatedUserID: &bob.ID}
		require.NoError(t, repo.Create(ctx, n))
		aliceIDs = append(aliceIDs, n.ID)
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: bob.ID, Type: models.NotificationWelcome, Title: "Welcome to Talenta!"}))

	list, err := repo.ListForUser(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, aliceIDs[2], list[0].ID)
	require.NotNil(t, list[0].RelatedUser)
	assert.Equal(t, "bob", list[0].RelatedUser.Username)

	t.Run("mark one read", func(t *testing.T) {
		updated, err := repo.MarkRead(ctx, aliceIDs[0], alice.ID)
		require.NoError(t, err)
		assert.True(t, updated.Read)

		unread, err := repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), unread)
		bobUnread, err := repo.CountUnread(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), bobUnread)
	})

	t.Run("marking again keeps the count", func(t *testing.T) {
		_, err := repo.MarkRead(ctx, aliceIDs[0], alice.ID)
		require.NoError(t, err)
		unread, err := repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), unread)
	})

	t.Run("other recipient cannot mark", func(t *testing.T) {
		_, err := repo.MarkRead(ctx, aliceIDs[1], bob.ID)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
		unread, err := repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), unread)
	})

	t.Run("mark all", func(t *testing.T) {
		n, err := repo.MarkAllRead(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		unread, err := repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)
		bobUnread, err := repo.CountUnread(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), bobUnread)
	})
}

func TestNotificationRepository_ListCapsAtFifty(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	u := seedProfile(t, db, "popular")
	for i := 0; i < NotificationListLimit+5; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{UserID: u.ID, Type: models.NotificationFollow, Title: "New Follower"}))
	}

	list, err := repo.ListForUser(ctx, u.ID, 500)
	require.NoError(t, err)
	assert.Len(t, list, NotificationListLimit)
}
