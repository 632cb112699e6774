package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"socialhub/internal/models"
)

// postColumns selects a post with its author's username and like count.
const postColumns = `
	p.post_id, p.author_id, u.username AS author_username, p.content, p.image_url, p.created_at,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.post_id) AS like_count
`

type PostRepositoryImpl struct {
	DB *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (post_id, author_id, content, image_url, created_at)
		VALUES (:post_id, :author_id, :content, :image_url, :created_at)
	`

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.CreatedAt = time.Now()

	_, err := r.DB.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.user_id = p.author_id
		WHERE p.post_id = $1
	`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post with ID %s: %w", postID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) GetByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.user_id = p.author_id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
	`

	posts := []models.Post{}
	err := r.DB.SelectContext(ctx, &posts, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts of author: %w", err)
	}

	return posts, nil
}

// GetFeed returns posts written by the viewer or by anyone the viewer
// follows, newest first.
func (r *PostRepositoryImpl) GetFeed(ctx context.Context, viewerID string, limit, offset int) ([]models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.user_id = p.author_id
		WHERE p.author_id = $1
		   OR p.author_id IN (SELECT f.following_id FROM follows f WHERE f.follower_id = $1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`

	posts := []models.Post{}
	err := r.DB.SelectContext(ctx, &posts, query, viewerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) CountFeed(ctx context.Context, viewerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM posts p
		WHERE p.author_id = $1
		   OR p.author_id IN (SELECT f.following_id FROM follows f WHERE f.follower_id = $1)
	`

	var count int
	if err := r.DB.GetContext(ctx, &count, query, viewerID); err != nil {
		return 0, fmt.Errorf("failed to count feed: %w", err)
	}

	return count, nil
}
