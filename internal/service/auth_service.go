package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialhub/internal/auth"
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

// TokenStore remembers revoked session tokens until they expire.
type TokenStore interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is a signed token issued at login.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, *Session, error)
	Logout(ctx context.Context, identity *auth.Identity) error
	ParseToken(ctx context.Context, tokenString string) (*auth.Identity, error)
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo repository.UserRepository
	tokens   TokenStore
	cfg      *config.Config
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenStore, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// Signup creates the user together with an empty profile.
func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	user := &models.User{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}

	err := s.userRepo.CreateUserWithProfile(ctx, user, req.Password1)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, models.NewValidationError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.UserID), zap.String("username", user.Username))

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*models.User, *Session, error) {
	user, err := s.userRepo.VerifyPassword(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.generateSessionToken(user)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout revokes the session token for the rest of its lifetime. Without a
// token store the token stays valid until it expires and only the cookie
// is cleared.
func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}

	err := s.tokens.RevokeToken(ctx, identity.TokenID, time.Until(identity.ExpiresAt))
	if err != nil {
		if errors.Is(err, cache.ErrCacheDisabled) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (s *authService) ParseToken(ctx context.Context, tokenString string) (*auth.Identity, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	revoked, err := s.tokens.IsTokenRevoked(ctx, claims.ID)
	if err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token has been revoked")
	}

	return &auth.Identity{
		UserID:    claims.Subject,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *authService) generateSessionToken(user *models.User) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.SessionDuration)
	tokenID := uuid.New().String()

	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: tokenString, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}
