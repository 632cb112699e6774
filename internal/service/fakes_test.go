package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"socialhub/internal/models"
	"socialhub/internal/repository"
)

type pair [2]string

// memStore is an in-memory stand-in for the relational store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	profiles map[string]*models.Profile
	posts    []models.Post
	comments []models.Comment
	likes    map[pair]bool
	follows  map[pair]bool
	clock    time.Time

	failPostCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		profiles: map[string]*models.Profile{},
		likes:    map[pair]bool{},
		follows:  map[pair]bool{},
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:    memUsers{m},
		Profile: memProfiles{m},
		Post:    memPosts{m},
		Comment: memComments{m},
		Like:    memLikes{m},
		Follow:  memFollows{m},
		Tables:  memTables{count: 6},
	}
}

func (m *memStore) userByName(username string) *models.User {
	for _, u := range m.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (m *memStore) withAuthor(p models.Post) models.Post {
	p.AuthorUsername = m.users[p.AuthorID].Username
	p.LikeCount = 0
	for k := range m.likes {
		if k[1] == p.PostID {
			p.LikeCount++
		}
	}
	return p
}

type memUsers struct{ m *memStore }

func (r memUsers) CreateUserWithProfile(_ context.Context, user *models.User, password string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.userByName(user.Username) != nil {
		return fmt.Errorf("user %s: %w", user.Username, models.ErrDuplicate)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = "plain:" + password
	user.CreatedAt = r.m.tick()

	stored := *user
	r.m.users[user.UserID] = &stored
	r.m.profiles[user.UserID] = &models.Profile{UserID: user.UserID, CreatedAt: user.CreatedAt, UpdatedAt: user.CreatedAt}
	return nil
}

func (r memUsers) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if u, ok := r.m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if u := r.m.userByName(username); u != nil {
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r memUsers) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil || user.PasswordHash != "plain:"+password {
		return nil, models.ErrAuthentication
	}
	return user, nil
}

func (r memUsers) matches(query string) []models.User {
	needle := strings.ToLower(query)
	found := []models.User{}
	for id, u := range r.m.users {
		bio := ""
		if p, ok := r.m.profiles[id]; ok {
			bio = p.Bio
		}
		if strings.Contains(strings.ToLower(u.Username), needle) || strings.Contains(strings.ToLower(bio), needle) {
			found = append(found, *u)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Username < found[j].Username })
	return found
}

func (r memUsers) Search(_ context.Context, query string, limit, offset int) ([]models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.matches(query), limit, offset), nil
}

func (r memUsers) CountSearch(_ context.Context, query string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.matches(query)), nil
}

type memProfiles struct{ m *memStore }

func (r memProfiles) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if p, ok := r.m.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r memProfiles) Update(_ context.Context, profile *models.Profile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.profiles[profile.UserID]; !ok {
		return models.ErrNotFound
	}
	profile.UpdatedAt = r.m.tick()
	copied := *profile
	r.m.profiles[profile.UserID] = &copied
	return nil
}

type memPosts struct{ m *memStore }

func (r memPosts) Create(_ context.Context, post *models.Post) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.failPostCreate {
		return fmt.Errorf("failed to create post: %w", io.ErrUnexpectedEOF)
	}

	post.PostID = uuid.New().String()
	post.CreatedAt = r.m.tick()
	r.m.posts = append(r.m.posts, *post)
	return nil
}

func (r memPosts) GetByID(_ context.Context, postID string) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, p := range r.m.posts {
		if p.PostID == postID {
			withAuthor := r.m.withAuthor(p)
			return &withAuthor, nil
		}
	}
	return nil, fmt.Errorf("post with ID %s: %w", postID, models.ErrNotFound)
}

func (r memPosts) selectPosts(keep func(models.Post) bool) []models.Post {
	found := []models.Post{}
	for _, p := range r.m.posts {
		if keep(p) {
			found = append(found, r.m.withAuthor(p))
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found
}

func (r memPosts) GetByAuthorID(_ context.Context, authorID string) ([]models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.selectPosts(func(p models.Post) bool { return p.AuthorID == authorID }), nil
}

func (r memPosts) inFeed(viewerID string) func(models.Post) bool {
	return func(p models.Post) bool {
		return p.AuthorID == viewerID || r.m.follows[pair{viewerID, p.AuthorID}]
	}
}

func (r memPosts) GetFeed(_ context.Context, viewerID string, limit, offset int) ([]models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.selectPosts(r.inFeed(viewerID)), limit, offset), nil
}

func (r memPosts) CountFeed(_ context.Context, viewerID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.selectPosts(r.inFeed(viewerID))), nil
}

type memComments struct{ m *memStore }

func (r memComments) Create(_ context.Context, comment *models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	comment.CommentID = uuid.New().String()
	comment.CreatedAt = r.m.tick()
	r.m.comments = append(r.m.comments, *comment)
	return nil
}

func (r memComments) GetByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	found := []models.Comment{}
	for _, c := range r.m.comments {
		if c.PostID == postID {
			c.AuthorUsername = r.m.users[c.AuthorID].Username
			found = append(found, c)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].CreatedAt.After(found[j].CreatedAt) })
	return found, nil
}

type memLikes struct{ m *memStore }

func (r memLikes) Toggle(_ context.Context, userID, postID string) (bool, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	key := pair{userID, postID}
	liked := !r.m.likes[key]
	if liked {
		r.m.likes[key] = true
	} else {
		delete(r.m.likes, key)
	}
	return liked, r.count(postID), nil
}

func (r memLikes) count(postID string) int {
	n := 0
	for k := range r.m.likes {
		if k[1] == postID {
			n++
		}
	}
	return n
}

func (r memLikes) Exists(_ context.Context, userID, postID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.likes[pair{userID, postID}], nil
}

func (r memLikes) CountByPost(_ context.Context, postID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.count(postID), nil
}

type memFollows struct{ m *memStore }

func (r memFollows) Toggle(_ context.Context, followerID, followingID string) (bool, int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	key := pair{followerID, followingID}
	following := !r.m.follows[key]
	if following {
		r.m.follows[key] = true
	} else {
		delete(r.m.follows, key)
	}
	return following, r.followers(followingID), nil
}

func (r memFollows) followers(userID string) int {
	n := 0
	for k := range r.m.follows {
		if k[1] == userID {
			n++
		}
	}
	return n
}

func (r memFollows) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.follows[pair{followerID, followingID}], nil
}

func (r memFollows) CountFollowers(_ context.Context, userID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.followers(userID), nil
}

func (r memFollows) CountFollowing(_ context.Context, userID string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n := 0
	for k := range r.m.follows {
		if k[0] == userID {
			n++
		}
	}
	return n, nil
}

type memTables struct {
	count int
	err   error
}

func (r memTables) CountTablesDB(context.Context) (int, error) {
	return r.count, r.err
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadImage(ctx context.Context, prefix, ownerID, fileName, contentType string, file io.Reader, size int64) (string, error) {
	args := m.Called(ctx, prefix, ownerID, fileName, contentType, file, size)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) DeleteImage(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockStorage) ObjectName(imageURL string) (string, bool) {
	args := m.Called(imageURL)
	return args.String(0), args.Bool(1)
}

// memTokens is a TokenStore backed by a map.
type memTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemTokens() *memTokens {
	return &memTokens{revoked: map[string]time.Duration{}}
}

func (t *memTokens) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.revoked[tokenID] = ttl
	return nil
}

func (t *memTokens) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return false, t.err
	}
	_, ok := t.revoked[tokenID]
	return ok, nil
}

type countingObserver struct {
	mu     sync.Mutex
	events []string
}

func (o *countingObserver) ObserveToggle(kind string, active bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, fmt.Sprintf("%s:%t", kind, active))
}
