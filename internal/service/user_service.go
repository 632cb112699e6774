package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"socialhub/internal/auth"
	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
)

var errStorageDisabled = errors.New("image storage is not configured")

type ProfileView struct {
	User           *models.PublicUser `json:"user"`
	Profile        *models.Profile    `json:"profile"`
	Posts          []models.Post      `json:"posts"`
	IsFollowing    bool               `json:"isFollowing"`
	IsOwner        bool               `json:"isOwner"`
	FollowerCount  int                `json:"followerCount"`
	FollowingCount int                `json:"followingCount"`
}

type SearchResult struct {
	Query string              `json:"query"`
	Users []models.PublicUser `json:"users"`
	PageInfo
}

type UserService interface {
	GetProfile(ctx context.Context, username, viewerID string) (*ProfileView, error)
	GetEditableProfile(ctx context.Context, actor *auth.Identity, username string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, actor *auth.Identity, username string, req models.UpdateProfileRequest) (*models.Profile, error)
	Search(ctx context.Context, query string, page Page) (*SearchResult, error)
}

type userService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	storage     storage.Storage
	logger      *zap.Logger
}

func NewUserService(rep *repository.Repository, storage storage.Storage, logger *zap.Logger) UserService {
	return &userService{
		userRepo:    rep.User,
		profileRepo: rep.Profile,
		postRepo:    rep.Post,
		followRepo:  rep.Follow,
		storage:     storage,
		logger:      logger,
	}
}

// GetProfile returns the user's profile page. viewerID may be empty for
// an anonymous viewer, in which case IsFollowing is false.
func (s *userService) GetProfile(ctx context.Context, username, viewerID string) (*ProfileView, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByAuthorID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:    user.Public(),
		Profile: profile,
		Posts:   posts,
		IsOwner: viewerID != "" && viewerID == user.UserID,
	}

	if viewerID != "" && !view.IsOwner {
		view.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, user.UserID)
		if err != nil {
			return nil, err
		}
	}

	if view.FollowerCount, err = s.followRepo.CountFollowers(ctx, user.UserID); err != nil {
		return nil, err
	}
	if view.FollowingCount, err = s.followRepo.CountFollowing(ctx, user.UserID); err != nil {
		return nil, err
	}

	return view, nil
}

// GetEditableProfile returns the actor's own profile. Editing anyone
// else's profile is a permission error.
func (s *userService) GetEditableProfile(ctx context.Context, actor *auth.Identity, username string) (*models.Profile, error) {
	if actor == nil || actor.Username != username {
		return nil, fmt.Errorf("edit profile of %s: %w", username, models.ErrPermission)
	}

	return s.profileRepo.GetByUserID(ctx, actor.UserID)
}

func (s *userService) UpdateProfile(ctx context.Context, actor *auth.Identity, username string, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetEditableProfile(ctx, actor, username)
	if err != nil {
		return nil, err
	}

	oldImageURL := profile.ImageURL
	profile.Bio = strings.TrimSpace(req.Bio)

	var uploadedURL string
	switch {
	case req.Image != nil:
		uploadedURL, err = s.uploadImage(ctx, storage.ProfilePicturesPrefix, actor.UserID, req.Image)
		if err != nil {
			return nil, err
		}
		profile.ImageURL = uploadedURL
	case req.ClearImage:
		profile.ImageURL = ""
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if uploadedURL != "" {
			s.deleteImage(ctx, uploadedURL)
		}
		return nil, err
	}

	if oldImageURL != "" && oldImageURL != profile.ImageURL {
		s.deleteImage(ctx, oldImageURL)
	}

	return profile, nil
}

// Search matches the query against usernames and bios. A blank query
// matches nobody.
func (s *userService) Search(ctx context.Context, query string, page Page) (*SearchResult, error) {
	query = strings.TrimSpace(query)

	result := &SearchResult{
		Query:    query,
		Users:    []models.PublicUser{},
		PageInfo: newPageInfo(page, 0),
	}

	if query == "" {
		return result, nil
	}

	total, err := s.userRepo.CountSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.Search(ctx, query, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}

	result.Users = models.PublicUsers(users)
	result.PageInfo = newPageInfo(page, total)

	return result, nil
}

func (s *userService) uploadImage(ctx context.Context, prefix, ownerID string, image *models.ImageUpload) (string, error) {
	if s.storage == nil {
		return "", errStorageDisabled
	}

	url, err := s.storage.UploadImage(ctx, prefix, ownerID, image.FileName, image.ContentType, image.Reader, image.Size)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}

func (s *userService) deleteImage(ctx context.Context, imageURL string) {
	removeImage(ctx, s.storage, s.logger, imageURL)
}

// removeImage deletes a stored image on a best-effort basis.
func removeImage(ctx context.Context, store storage.Storage, logger *zap.Logger, imageURL string) {
	if store == nil {
		return
	}

	objectName, ok := store.ObjectName(imageURL)
	if !ok {
		return
	}

	if err := store.DeleteImage(ctx, objectName); err != nil {
		logger.Warn("failed to delete image from storage",
			zap.String("object", objectName),
			zap.Error(err))
	}
}
