package handlers_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/router"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memDB is a goroutine-safe stand-in for the document store
type memDB struct {
	mu            sync.Mutex
	users         []models.User
	posts         []models.Post
	likes         []models.Like
	comments      []models.Comment
	follows       []models.Follow
	notifications []models.Notification

	failNotificationFor map[primitive.ObjectID]bool
}

func newMemDB() *memDB {
	return &memDB{failNotificationFor: map[primitive.ObjectID]bool{}}
}

func (db *memDB) repos() router.Repositories {
	return router.Repositories{
		Users:         userRepo{db},
		Posts:         postRepo{db},
		Likes:         likeRepo{db},
		Comments:      commentRepo{db},
		Follows:       followRepo{db},
		Notifications: notificationRepo{db},
	}
}

func window[T any](items []T, p models.Page) []T {
	start := p.Skip()
	if start >= int64(len(items)) {
		return nil
	}
	end := start + p.Limit
	if end > int64(len(items)) {
		end = int64(len(items))
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

func where[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (db *memDB) compactUser(id primitive.ObjectID) *models.UserCompact {
	for i := range db.users {
		if db.users[i].ID == id {
			c := db.users[i].ToCompact()
			return &c
		}
	}
	return nil
}

func (db *memDB) failNotificationsFor(userID primitive.ObjectID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failNotificationFor[userID] = true
}

func (db *memDB) notificationCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.notifications)
}

func (db *memDB) notificationsFor(userID primitive.ObjectID) []models.Notification {
	db.mu.Lock()
	defer db.mu.Unlock()
	return where(db.notifications, func(n models.Notification) bool { return n.UserID == userID })
}

// users

type userRepo struct{ db *memDB }

func (r userRepo) CreateUser(_ context.Context, u *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	u.ID, u.CreatedAt, u.LastModified = primitive.NewObjectID(), now, now
	r.db.users = append(r.db.users, *u)
	return nil
}

func (r userRepo) find(keep func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if keep(u) {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r userRepo) UpdateUser(_ context.Context, id primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.users {
		u := &r.db.users[i]
		if u.ID != id {
			continue
		}
		set := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		set(&u.Firstname, req.Firstname)
		set(&u.Lastname, req.Lastname)
		set(&u.Username, req.Username)
		set(&u.Email, req.Email)
		set(&u.Password, req.Password)
		set(&u.Photo, req.Photo)
		u.LastModified = time.Now()
		out := *u
		return &out, nil
	}
	return nil, repositories.ErrNotFound
}

func (r userRepo) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users = where(r.db.users, func(u models.User) bool { return u.ID != id })
	return nil
}

func matchesUser(u models.User, name string) bool {
	name = strings.ToLower(name)
	for _, f := range []string{u.Firstname, u.Lastname, u.Username, u.Email} {
		if strings.Contains(strings.ToLower(f), name) {
			return true
		}
	}
	return false
}

func (r userRepo) SearchUsers(_ context.Context, name string, p models.Page) ([]models.UserCompact, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.UserCompact
	for _, u := range window(where(r.db.users, func(u models.User) bool { return matchesUser(u, name) }), p) {
		out = append(out, u.ToCompact())
	}
	return out, nil
}

func (r userRepo) CountSearchUsers(_ context.Context, name string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.users, func(u models.User) bool { return matchesUser(u, name) }))), nil
}

// posts

type postRepo struct{ db *memDB }

func matchesFilter(p models.Post, f repositories.PostFilter) bool {
	if !f.AuthorID.IsZero() && p.AuthorID != f.AuthorID {
		return false
	}
	if f.Tag != "" {
		for _, t := range p.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

func (r postRepo) withAuthors(posts []models.Post) []models.Post {
	for i := range posts {
		posts[i].Author = r.db.compactUser(posts[i].AuthorID)
	}
	return posts
}

func (r postRepo) CreatePost(_ context.Context, p *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	p.ID, p.CreatedAt, p.LastModified = primitive.NewObjectID(), now, now
	r.db.posts = append(r.db.posts, *p)
	return nil
}

func (r postRepo) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	found := r.withAuthors(where(r.db.posts, func(p models.Post) bool { return p.ID == id }))
	if len(found) == 0 {
		return nil, repositories.ErrNotFound
	}
	return &found[0], nil
}

func (r postRepo) ListPosts(_ context.Context, f repositories.PostFilter, p models.Page) ([]models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.withAuthors(window(where(r.db.posts, func(x models.Post) bool { return matchesFilter(x, f) }), p)), nil
}

func (r postRepo) CountPosts(_ context.Context, f repositories.PostFilter) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.posts, func(x models.Post) bool { return matchesFilter(x, f) }))), nil
}

func (r postRepo) UpdatePost(_ context.Context, id primitive.ObjectID, req *models.UpdatePostRequest) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.posts {
		p := &r.db.posts[i]
		if p.ID != id {
			continue
		}
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Content != nil {
			p.Content = *req.Content
		}
		if req.Tags != nil {
			p.Tags = req.Tags
		}
		p.LastModified = time.Now()
		out := *p
		return &out, nil
	}
	return nil, repositories.ErrNotFound
}

func (r postRepo) DeletePost(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.posts = where(r.db.posts, func(p models.Post) bool { return p.ID != id })
	return nil
}

func matchesPost(p models.Post, keyword string) bool {
	keyword = strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(p.Title), keyword) || strings.Contains(strings.ToLower(p.Content), keyword)
}

func (r postRepo) SearchPosts(_ context.Context, keyword string, p models.Page) ([]models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.withAuthors(window(where(r.db.posts, func(x models.Post) bool { return matchesPost(x, keyword) }), p)), nil
}

func (r postRepo) CountSearchPosts(_ context.Context, keyword string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.posts, func(x models.Post) bool { return matchesPost(x, keyword) }))), nil
}

// likes

type likeRepo struct{ db *memDB }

func (r likeRepo) CreateLike(_ context.Context, l *models.Like) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	l.ID, l.CreatedAt, l.LastModified = primitive.NewObjectID(), now, now
	r.db.likes = append(r.db.likes, *l)
	return nil
}

func (r likeRepo) DeleteLike(_ context.Context, postID, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, l := range r.db.likes {
		if l.PostID == postID && l.UserID == userID {
			r.db.likes = append(r.db.likes[:i], r.db.likes[i+1:]...)
			break
		}
	}
	return nil
}

func (r likeRepo) HasUserLikedPost(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(where(r.db.likes, func(l models.Like) bool { return l.PostID == postID && l.UserID == userID })) > 0, nil
}

func (r likeRepo) GetLikesByPostID(_ context.Context, postID primitive.ObjectID, p models.Page) ([]models.Like, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return window(where(r.db.likes, func(l models.Like) bool { return l.PostID == postID }), p), nil
}

func (r likeRepo) CountLikesByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.likes, func(l models.Like) bool { return l.PostID == postID }))), nil
}

func (r likeRepo) GetLikedPosts(_ context.Context, userID primitive.ObjectID, p models.Page) ([]models.Like, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	likes := window(where(r.db.likes, func(l models.Like) bool { return l.UserID == userID }), p)
	for i := range likes {
		for _, post := range r.db.posts {
			if post.ID == likes[i].PostID {
				likes[i].Post = &post
			}
		}
	}
	return likes, nil
}

func (r likeRepo) CountLikedPosts(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.likes, func(l models.Like) bool { return l.UserID == userID }))), nil
}

func (r likeRepo) Trending(_ context.Context, limit int64) ([]models.TrendingPost, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[primitive.ObjectID]int64{}
	for _, l := range r.db.likes {
		counts[l.PostID]++
	}
	var out []models.TrendingPost
	for id, n := range counts {
		out = append(out, models.TrendingPost{PostID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].PostID.Hex() < out[j].PostID.Hex()
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// comments

type commentRepo struct{ db *memDB }

func (r commentRepo) CreateComment(_ context.Context, c *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	c.ID, c.CreatedAt, c.LastModified = primitive.NewObjectID(), now, now
	r.db.comments = append(r.db.comments, *c)
	return nil
}

func (r commentRepo) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID, p models.Page) ([]models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return window(where(r.db.comments, func(c models.Comment) bool { return c.PostID == postID }), p), nil
}

func (r commentRepo) CountCommentsByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.comments, func(c models.Comment) bool { return c.PostID == postID }))), nil
}

func (r commentRepo) UpdateComment(_ context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.comments {
		if r.db.comments[i].ID == id {
			r.db.comments[i].Content = content
			r.db.comments[i].LastModified = time.Now()
			out := r.db.comments[i]
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r commentRepo) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.comments = where(r.db.comments, func(c models.Comment) bool { return c.ID != id })
	return nil
}

// follows

type followRepo struct{ db *memDB }

func (r followRepo) CreateFollow(_ context.Context, f *models.Follow) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	f.ID, f.FollowedDate = primitive.NewObjectID(), time.Now()
	r.db.follows = append(r.db.follows, *f)
	return nil
}

func (r followRepo) DeleteFollow(_ context.Context, followerID, followingID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, f := range r.db.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.db.follows = append(r.db.follows[:i], r.db.follows[i+1:]...)
			break
		}
	}
	return nil
}

func (r followRepo) GetFollowerIDs(_ context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []primitive.ObjectID
	for _, f := range r.db.follows {
		if f.FollowingID == userID {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

func (r followRepo) GetFollowers(_ context.Context, userID primitive.ObjectID, p models.Page) ([]models.Follow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return window(where(r.db.follows, func(f models.Follow) bool { return f.FollowingID == userID }), p), nil
}

func (r followRepo) CountFollowers(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.follows, func(f models.Follow) bool { return f.FollowingID == userID }))), nil
}

func (r followRepo) GetFollowing(_ context.Context, userID primitive.ObjectID, p models.Page) ([]models.Follow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return window(where(r.db.follows, func(f models.Follow) bool { return f.FollowerID == userID }), p), nil
}

func (r followRepo) CountFollowing(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.follows, func(f models.Follow) bool { return f.FollowerID == userID }))), nil
}

// notifications

type notificationRepo struct{ db *memDB }

var errInsertFailed = errors.New("insert failed")

func (r notificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failNotificationFor[n.UserID] {
		return errInsertFailed
	}
	n.ID, n.CreatedAt, n.Read = primitive.NewObjectID(), time.Now(), false
	r.db.notifications = append(r.db.notifications, *n)
	return nil
}

func (r notificationRepo) GetByRecipientID(_ context.Context, userID primitive.ObjectID, p models.Page) ([]models.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := window(where(r.db.notifications, func(n models.Notification) bool { return n.UserID == userID }), p)
	for i := range out {
		out[i].Actor = r.db.compactUser(out[i].NotificationBy)
	}
	return out, nil
}

func (r notificationRepo) CountByRecipientID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.notifications, func(n models.Notification) bool { return n.UserID == userID }))), nil
}

func (r notificationRepo) GetUnreadCount(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return int64(len(where(r.db.notifications, func(n models.Notification) bool { return n.UserID == userID && !n.Read }))), nil
}

func (r notificationRepo) MarkAsRead(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.notifications {
		if r.db.notifications[i].ID == id {
			r.db.notifications[i].Read = true
			out := r.db.notifications[i]
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r notificationRepo) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.notifications = where(r.db.notifications, func(n models.Notification) bool { return n.ID != id })
	return nil
}
