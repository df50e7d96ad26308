package services_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/config"
	"social-go/internal/models"
	"social-go/internal/services"
)

type feedFixture struct {
	feed     services.FeedService
	users    *fakeUserRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	notifs   *fakeNotificationRepo
	media    *fakeStorageService
}

func newFeedFixture() *feedFixture {
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	comments := newFakeCommentRepo()
	notifs := newFakeNotificationRepo()
	media := &fakeStorageService{}

	notificationService := services.NewNotificationService(notifs, users, nil, nil, config.KafkaConfig{}, 0)
	feed := services.NewFeedService(posts, users, comments, media, notificationService)

	return &feedFixture{
		feed:     feed,
		users:    users,
		posts:    posts,
		comments: comments,
		notifs:   notifs,
		media:    media,
	}
}

func TestCreatePostReturnsFullFeedNewestFirst(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	alice := fx.users.add("Alice", "Ozturk", "Istanbul", "Engineer")
	bob := fx.users.add("Bob", "Kaya", "Ankara", "Designer")

	first, err := fx.feed.CreatePost(ctx, alice.ID, "first post", "")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := fx.feed.CreatePost(ctx, bob.ID, "second post", "")
	require.NoError(t, err)
	require.Len(t, second, 2)

	// 新动态在前，且响应是完整列表而不是单条记录
	assert.Equal(t, "second post", second[0].Description)
	assert.Equal(t, "first post", second[1].Description)
	assert.Equal(t, bob.ID, second[0].UserID)
	assert.NotNil(t, second[0].Likes)
	assert.Empty(t, second[0].Likes)
}

func TestCreatePostSnapshotsAuthorFields(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Ayşe", "Yilmaz", "Izmir", "Doctor")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "hello", "")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// 之后修改资料，已有动态上的快照保持不变
	author.FirstName = "Changed"
	feed, err := fx.feed.GetFeedPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", feed[0].FirstName)
	assert.Equal(t, "Yilmaz", feed[0].LastName)
	assert.Equal(t, "Izmir", feed[0].Location)
}

func TestCreatePostUnknownAuthor(t *testing.T) {
	fx := newFeedFixture()

	_, err := fx.feed.CreatePost(context.Background(), 42, "ghost post", "")
	assert.True(t, errors.Is(err, services.ErrUserNotFound))
}

func TestLikePostToggleIsIdempotentPair(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	liker := fx.users.add("Bob", "Kaya", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "like me", "")
	require.NoError(t, err)
	postID := posts[0].ID
	likerKey := strconv.FormatUint(uint64(liker.ID), 10)

	liked, err := fx.feed.LikePost(ctx, postID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked.Likes[likerKey])
	assert.Len(t, liked.Likes, 1)

	// 再切换一次恢复原状
	unliked, err := fx.feed.LikePost(ctx, postID, liker.ID)
	require.NoError(t, err)
	assert.NotContains(t, unliked.Likes, likerKey)
	assert.Empty(t, unliked.Likes)
}

func TestLikePostFansOutOnlyForForeignLikes(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	liker := fx.users.add("Bob", "Kaya", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "like me", "")
	require.NoError(t, err)
	postID := posts[0].ID

	// 自己点赞自己的动态不产生通知
	_, err = fx.feed.LikePost(ctx, postID, author.ID)
	require.NoError(t, err)
	assert.Empty(t, fx.notifs.notifications)

	// 别人点赞产生一条通知
	_, err = fx.feed.LikePost(ctx, postID, liker.ID)
	require.NoError(t, err)
	require.Len(t, fx.notifs.notifications, 1)
	notif := fx.notifs.notifications[0]
	assert.Equal(t, author.ID, notif.UserID)
	assert.Equal(t, models.NotificationTypeLike, notif.Type)
	assert.Equal(t, liker.ID, notif.FromUserID)
	require.NotNil(t, notif.PostID)
	assert.Equal(t, postID, *notif.PostID)

	// 取消点赞不再产生通知
	_, err = fx.feed.LikePost(ctx, postID, liker.ID)
	require.NoError(t, err)
	assert.Len(t, fx.notifs.notifications, 1)
}

func TestLikePostNotFound(t *testing.T) {
	fx := newFeedFixture()
	user := fx.users.add("Alice", "Ozturk", "", "")

	_, err := fx.feed.LikePost(context.Background(), 99, user.ID)
	assert.True(t, errors.Is(err, services.ErrPostNotFound))
}

func TestGetUserLikedPosts(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	liker := fx.users.add("Bob", "Kaya", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "first", "")
	require.NoError(t, err)
	firstID := posts[0].ID
	posts, err = fx.feed.CreatePost(ctx, author.ID, "second", "")
	require.NoError(t, err)

	_, err = fx.feed.LikePost(ctx, firstID, liker.ID)
	require.NoError(t, err)

	liked, err := fx.feed.GetUserLikedPosts(ctx, liker.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, firstID, liked[0].ID)
}

func TestGetUserCommentedPostsDeduplicates(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	commenter := fx.users.add("Bob", "Kaya", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "discuss", "")
	require.NoError(t, err)
	postID := posts[0].ID

	// 同一用户在同一动态下留两条评论，动态只出现一次
	require.NoError(t, fx.comments.Create(ctx, &models.Comment{PostID: postID, UserID: commenter.ID, Comment: "one"}))
	require.NoError(t, fx.comments.Create(ctx, &models.Comment{PostID: postID, UserID: commenter.ID, Comment: "two"}))

	commented, err := fx.feed.GetUserCommentedPosts(ctx, commenter.ID)
	require.NoError(t, err)
	require.Len(t, commented, 1)
	assert.Equal(t, postID, commented[0].ID)
}

func TestDeletePostOwnerGate(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	stranger := fx.users.add("Bob", "Kaya", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "mine", "")
	require.NoError(t, err)
	postID := posts[0].ID

	err = fx.feed.DeletePost(ctx, postID, stranger.ID)
	assert.True(t, errors.Is(err, services.ErrNotPostOwner))

	// 动态仍然存在
	feed, err := fx.feed.GetFeedPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}

func TestDeletePostCascadesCommentsAndMedia(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "with media", "photo.jpg")
	require.NoError(t, err)
	postID := posts[0].ID
	require.NoError(t, fx.comments.Create(ctx, &models.Comment{PostID: postID, UserID: author.ID, Comment: "note"}))

	require.NoError(t, fx.feed.DeletePost(ctx, postID, author.ID))

	feed, err := fx.feed.GetFeedPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
	remaining, err := fx.comments.ListByPost(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, []string{"photo.jpg"}, fx.media.deleted)
}

func TestDeletePostMediaFailureDoesNotBlock(t *testing.T) {
	fx := newFeedFixture()
	ctx := context.Background()
	author := fx.users.add("Alice", "Ozturk", "", "")
	fx.media.deleteErr = errors.New("storage offline")

	posts, err := fx.feed.CreatePost(ctx, author.ID, "with media", "photo.jpg")
	require.NoError(t, err)

	// 媒体删除失败只记录日志，记录本身照常删除
	require.NoError(t, fx.feed.DeletePost(ctx, posts[0].ID, author.ID))
	feed, err := fx.feed.GetFeedPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
