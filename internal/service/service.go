package service

import (
	"go.uber.org/zap"

	"socialhub/internal/config"
	"socialhub/internal/logging"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
)

type Service struct {
	Auth       AuthService
	User       UserService
	Post       PostService
	Engagement EngagementService
	Health     HealthService
}

// Dependencies groups the infrastructure the services are built on.
type Dependencies struct {
	Repo     *repository.Repository
	Storage  storage.Storage
	Tokens   TokenStore
	DB       Checker
	Cache    CacheChecker
	Observer ToggleObserver
	Logger   *zap.Logger
}

func NewService(deps Dependencies, cfg *config.Config) *Service {
	return &Service{
		Auth:       NewAuthService(deps.Repo.User, deps.Tokens, cfg, logging.WithComponent(deps.Logger, "auth")),
		User:       NewUserService(deps.Repo, deps.Storage, logging.WithComponent(deps.Logger, "user")),
		Post:       NewPostService(deps.Repo, deps.Storage, logging.WithComponent(deps.Logger, "post")),
		Engagement: NewEngagementService(deps.Repo, deps.Observer),
		Health:     NewHealthService(deps.DB, deps.Repo.Tables, deps.Cache, logging.WithComponent(deps.Logger, "health")),
	}
}
