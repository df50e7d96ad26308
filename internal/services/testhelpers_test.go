package services_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"social-go/internal/feedtypes"
	"social-go/internal/models"
)

// 内存版的仓储实现，行为与 GORM 实现保持一致：
// 列表按创建时间倒序，未命中返回 gorm.ErrRecordNotFound。

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(firstName, lastName, location, occupation string) *models.User {
	u := &models.User{
		FirstName:  firstName,
		LastName:   lastName,
		Location:   location,
		Occupation: occupation,
	}
	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string) ([]models.User, error) {
	q := strings.ToLower(query)
	result := []models.User{}
	for id := uint(1); id < r.nextID; id++ {
		u, ok := r.users[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.Location), q) ||
			strings.Contains(strings.ToLower(u.Occupation), q) {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.UserBasicInfo{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PicturePath: user.PicturePath,
		Occupation:  user.Occupation,
	}, nil
}

func (r *fakeUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	result := []*models.UserBasicInfo{}
	for _, id := range userIDs {
		info, err := r.GetBasicInfoByID(ctx, id)
		if err != nil {
			continue // 已删除的用户直接跳过
		}
		result = append(result, info)
	}
	return result, nil
}

type fakePostRepo struct {
	posts  []*models.Post
	likes  map[uint]map[uint]bool // postID -> 点赞用户集合
	nextID uint
	clock  time.Time
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		likes:  map[uint]map[uint]bool{},
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	post.CreatedAt = r.clock
	r.posts = append(r.posts, post)
	return nil
}

func (r *fakePostRepo) withLikes(post *models.Post) models.Post {
	copied := *post
	copied.Likes = map[string]bool{}
	for userID := range r.likes[post.ID] {
		copied.Likes[fmt.Sprintf("%d", userID)] = true
	}
	return copied
}

func (r *fakePostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	for _, p := range r.posts {
		if p.ID == id {
			copied := r.withLikes(p)
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePostRepo) listNewestFirst(match func(*models.Post) bool) []models.Post {
	result := []models.Post{}
	for i := len(r.posts) - 1; i >= 0; i-- {
		if match(r.posts[i]) {
			result = append(result, r.withLikes(r.posts[i]))
		}
	}
	return result
}

func (r *fakePostRepo) ListAll(ctx context.Context) ([]models.Post, error) {
	return r.listNewestFirst(func(*models.Post) bool { return true }), nil
}

func (r *fakePostRepo) ListByAuthor(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.listNewestFirst(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r *fakePostRepo) ListByIDs(ctx context.Context, postIDs []uint) ([]models.Post, error) {
	wanted := map[uint]struct{}{}
	for _, id := range postIDs {
		wanted[id] = struct{}{}
	}
	return r.listNewestFirst(func(p *models.Post) bool {
		_, ok := wanted[p.ID]
		return ok
	}), nil
}

func (r *fakePostRepo) ListLikedBy(ctx context.Context, userID uint) ([]models.Post, error) {
	return r.listNewestFirst(func(p *models.Post) bool { return r.likes[p.ID][userID] }), nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id uint) error {
	for i, p := range r.posts {
		if p.ID == id {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			delete(r.likes, id)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePostRepo) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	set, ok := r.likes[postID]
	if !ok {
		set = map[uint]bool{}
		r.likes[postID] = set
	}
	if set[userID] {
		delete(set, userID)
		return false, nil
	}
	set[userID] = true
	return true, nil
}

func (r *fakePostRepo) Search(ctx context.Context, query string) ([]models.Post, error) {
	q := strings.ToLower(query)
	return r.listNewestFirst(func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			strings.Contains(strings.ToLower(p.Location), q)
	}), nil
}

type fakeCommentRepo struct {
	comments []*models.Comment
	nextID   uint
	clock    time.Time
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	comment.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	comment.CreatedAt = r.clock
	r.comments = append(r.comments, comment)
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	for _, c := range r.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCommentRepo) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	result := []models.Comment{}
	for i := len(r.comments) - 1; i >= 0; i-- {
		if r.comments[i].PostID == postID {
			result = append(result, *r.comments[i])
		}
	}
	return result, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id uint) error {
	for i, c := range r.comments {
		if c.ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeCommentRepo) DeleteByPost(ctx context.Context, postID uint) error {
	kept := r.comments[:0]
	for _, c := range r.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	r.comments = kept
	return nil
}

func (r *fakeCommentRepo) DistinctPostIDsByAuthor(ctx context.Context, userID uint) ([]uint, error) {
	seen := map[uint]struct{}{}
	result := []uint{}
	for _, c := range r.comments {
		if c.UserID != userID {
			continue
		}
		if _, ok := seen[c.PostID]; ok {
			continue
		}
		seen[c.PostID] = struct{}{}
		result = append(result, c.PostID)
	}
	return result, nil
}

// fakeNotificationRepo mirrors the repository's list cap.
const fakeNotificationListLimit = 50

type fakeNotificationRepo struct {
	notifications []*models.Notification
	nextID        uint
	clock         time.Time
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		nextID: 1,
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	notification.ID = r.nextID
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	notification.CreatedAt = r.clock
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, userID uint) ([]models.Notification, error) {
	result := []models.Notification{}
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if r.notifications[i].UserID != userID {
			continue
		}
		result = append(result, *r.notifications[i])
		if len(result) == fakeNotificationListLimit {
			break
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uint) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type fakeFriendshipRepo struct {
	edges []models.Friendship
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{}
}

func (r *fakeFriendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	r.edges = append(r.edges, *friendship)
	return nil
}

func (r *fakeFriendshipRepo) Remove(ctx context.Context, userID1, userID2 uint) error {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	for i, e := range r.edges {
		if e.UserID1 == userID1 && e.UserID2 == userID2 {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeFriendshipRepo) Toggle(ctx context.Context, userID1, userID2 uint) (bool, error) {
	areFriends, err := r.AreUsersFriends(ctx, userID1, userID2)
	if err != nil {
		return false, err
	}
	if areFriends {
		return false, r.Remove(ctx, userID1, userID2)
	}
	friendship := &models.Friendship{UserID1: userID1, UserID2: userID2}
	friendship.EnsureCanonicalOrder()
	return true, r.Create(ctx, friendship)
}

func (r *fakeFriendshipRepo) AreUsersFriends(ctx context.Context, userID1, userID2 uint) (bool, error) {
	if userID1 > userID2 {
		userID1, userID2 = userID2, userID1
	}
	for _, e := range r.edges {
		if e.UserID1 == userID1 && e.UserID2 == userID2 {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendshipRepo) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	result := []uint{}
	for _, e := range r.edges {
		if e.UserID1 == userID {
			result = append(result, e.UserID2)
		} else if e.UserID2 == userID {
			result = append(result, e.UserID1)
		}
	}
	return result, nil
}

// fakeStorageService records deletions and can be told to fail them.
type fakeStorageService struct {
	deleted   []string
	deleteErr error
}

func (s *fakeStorageService) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*feedtypes.FileInfo, error) {
	return &feedtypes.FileInfo{
		URL:      "/uploads/" + fileName,
		Path:     fileName,
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}

func (s *fakeStorageService) DeleteFile(ctx context.Context, pathOrIdentifier string) error {
	s.deleted = append(s.deleted, pathOrIdentifier)
	return s.deleteErr
}

type fakeUnreadCache struct {
	entries       map[uint]int64
	invalidations int
	sets          int
	hits          int
}

func newFakeUnreadCache() *fakeUnreadCache {
	return &fakeUnreadCache{entries: map[uint]int64{}}
}

func (c *fakeUnreadCache) Get(ctx context.Context, userID uint) (int64, bool, error) {
	count, ok := c.entries[userID]
	if ok {
		c.hits++
	}
	return count, ok, nil
}

func (c *fakeUnreadCache) Set(ctx context.Context, userID uint, count int64, ttl time.Duration) error {
	c.entries[userID] = count
	c.sets++
	return nil
}

func (c *fakeUnreadCache) Invalidate(ctx context.Context, userID uint) error {
	delete(c.entries, userID)
	c.invalidations++
	return nil
}

type producedMessage struct {
	topic   string
	key     []byte
	payload []byte
}

// fakeProducer records published messages and can be told to fail.
type fakeProducer struct {
	messages []producedMessage
	sendErr  error
}

func (p *fakeProducer) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	if p.sendErr != nil {
		return p.sendErr
	}
	p.messages = append(p.messages, producedMessage{topic: topic, key: key, payload: payload})
	return nil
}

func (p *fakeProducer) Close() {}
