package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"socialhub/internal/auth"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

// ToggleObserver is notified of every completed toggle.
type ToggleObserver interface {
	ObserveToggle(kind string, active bool)
}

type LikeState struct {
	PostID    string `json:"postId"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}

type FollowState struct {
	Username      string `json:"username"`
	Following     bool   `json:"following"`
	FollowerCount int    `json:"followerCount"`
}

type EngagementService interface {
	ToggleLike(ctx context.Context, userID, postID string) (*LikeState, error)
	ToggleFollow(ctx context.Context, actor *auth.Identity, username string) (*FollowState, error)
}

type engagementService struct {
	userRepo   repository.UserRepository
	postRepo   repository.PostRepository
	likeRepo   repository.LikeRepository
	followRepo repository.FollowRepository
	observer   ToggleObserver
}

func NewEngagementService(rep *repository.Repository, observer ToggleObserver) EngagementService {
	return &engagementService{
		userRepo:   rep.User,
		postRepo:   rep.Post,
		likeRepo:   rep.Like,
		followRepo: rep.Follow,
		observer:   observer,
	}
}

// ToggleLike likes the post if userID has not liked it yet and unlikes it
// otherwise.
func (s *engagementService) ToggleLike(ctx context.Context, userID, postID string) (*LikeState, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return nil, fmt.Errorf("post with ID %s: %w", postID, models.ErrNotFound)
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.Toggle(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	s.observe("like", liked)

	return &LikeState{PostID: postID, Liked: liked, LikeCount: count}, nil
}

// ToggleFollow follows or unfollows username on behalf of actor. Following
// yourself fails with models.ErrSelfReference and changes nothing.
func (s *engagementService) ToggleFollow(ctx context.Context, actor *auth.Identity, username string) (*FollowState, error) {
	target, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if target.UserID == actor.UserID {
		return nil, models.ErrSelfReference
	}

	following, count, err := s.followRepo.Toggle(ctx, actor.UserID, target.UserID)
	if err != nil {
		return nil, err
	}

	s.observe("follow", following)

	return &FollowState{Username: target.Username, Following: following, FollowerCount: count}, nil
}

func (s *engagementService) observe(kind string, active bool) {
	if s.observer != nil {
		s.observer.ObserveToggle(kind, active)
	}
}
