package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"socialhub/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUserWithProfile inserts the user and its empty profile in one
// transaction, so an identity never exists without a profile.
func (r *userRepository) CreateUserWithProfile(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = string(hashedPassword)
	user.CreatedAt = time.Now()

	userQuery := `
		INSERT INTO users (user_id, username, email, first_name, last_name, password_hash, created_at)
		VALUES (:user_id, :username, :email, :first_name, :last_name, :password_hash, :created_at)
	`

	profileQuery := `
		INSERT INTO profiles (user_id, bio, image_url, created_at, updated_at)
		VALUES ($1, '', '', $2, $2)
	`

	err = withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, profileQuery, user.UserID, user.CreatedAt)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Username, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %s: %w", userID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// VerifyPassword returns models.ErrAuthentication for both an unknown username
// and a wrong password.
func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrAuthentication
		}
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, models.ErrAuthentication
	}

	return user, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	sqlQuery := `
		SELECT DISTINCT u.*
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.user_id
		WHERE u.username ILIKE $1 ESCAPE '\' OR p.bio ILIKE $1 ESCAPE '\'
		ORDER BY u.username
		LIMIT $2 OFFSET $3
	`

	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, sqlQuery, likePattern(query), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

func (r *userRepository) CountSearch(ctx context.Context, query string) (int, error) {
	sqlQuery := `
		SELECT COUNT(DISTINCT u.user_id)
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.user_id
		WHERE u.username ILIKE $1 ESCAPE '\' OR p.bio ILIKE $1 ESCAPE '\'
	`

	var count int
	if err := r.db.GetContext(ctx, &count, sqlQuery, likePattern(query)); err != nil {
		return 0, fmt.Errorf("failed to count search results: %w", err)
	}

	return count, nil
}

// likePattern turns free text into a substring ILIKE pattern, escaping the
// wildcard characters the user typed.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}
