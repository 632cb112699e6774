package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
)

type PostDetail struct {
	Post          *models.Post     `json:"post"`
	Comments      []models.Comment `json:"comments"`
	LikedByViewer bool             `json:"likedByViewer"`
}

type FeedPage struct {
	Posts []models.Post `json:"posts"`
	PageInfo
}

type PostService interface {
	CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error)
	GetPostDetail(ctx context.Context, postID, viewerID string) (*PostDetail, error)
	AddComment(ctx context.Context, postID, authorID string, req models.CreateCommentRequest) (*models.Comment, error)
	Feed(ctx context.Context, viewerID string, page Page) (*FeedPage, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	storage     storage.Storage
	logger      *zap.Logger
}

func NewPostService(rep *repository.Repository, storage storage.Storage, logger *zap.Logger) PostService {
	return &postService{
		postRepo:    rep.Post,
		commentRepo: rep.Comment,
		likeRepo:    rep.Like,
		storage:     storage,
		logger:      logger,
	}
}

// CreatePost stores a post written by authorID. The optional image is
// uploaded first and removed again if the insert fails.
func (p *postService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, models.NewValidationError("content", "This field is required.")
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
	}

	if req.Image != nil {
		if p.storage == nil {
			return nil, errStorageDisabled
		}

		imageURL, err := p.storage.UploadImage(ctx, storage.PostImagesPrefix, authorID,
			req.Image.FileName, req.Image.ContentType, req.Image.Reader, req.Image.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		post.ImageURL = imageURL
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.ImageURL != "" {
			removeImage(ctx, p.storage, p.logger, post.ImageURL)
		}
		return nil, err
	}

	return post, nil
}

func (p *postService) GetPostDetail(ctx context.Context, postID, viewerID string) (*PostDetail, error) {
	post, err := p.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := p.commentRepo.GetByPostID(ctx, post.PostID)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{Post: post, Comments: comments}

	if viewerID != "" {
		detail.LikedByViewer, err = p.likeRepo.Exists(ctx, viewerID, post.PostID)
		if err != nil {
			return nil, err
		}
	}

	return detail, nil
}

// AddComment attaches a comment to an existing post.
func (p *postService) AddComment(ctx context.Context, postID, authorID string, req models.CreateCommentRequest) (*models.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, models.NewValidationError("text", "This field is required.")
	}

	post, err := p.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   post.PostID,
		AuthorID: authorID,
		Text:     text,
	}

	if err := p.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// Feed lists posts by the viewer and by everyone the viewer follows,
// newest first.
func (p *postService) Feed(ctx context.Context, viewerID string, page Page) (*FeedPage, error) {
	total, err := p.postRepo.CountFeed(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := p.postRepo.GetFeed(ctx, viewerID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}

	return &FeedPage{Posts: posts, PageInfo: newPageInfo(page, total)}, nil
}

// getPost treats malformed ids as missing posts.
func (p *postService) getPost(ctx context.Context, postID string) (*models.Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, models.ErrNotFound)
	}
	return p.postRepo.GetByID(ctx, postID)
}
