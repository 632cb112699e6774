package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle flips the follow edge followerID -> followingID inside one
// transaction and returns the new state with the target's follower count.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, int, error) {
	var (
		following bool
		count     int
	)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockActor(ctx, tx, followerID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
		if err != nil {
			return err
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO follows (follower_id, following_id, created_at)
				VALUES ($1, $2, CURRENT_TIMESTAMP)
				ON CONFLICT (follower_id, following_id) DO NOTHING
			`, followerID, followingID)
			if err != nil {
				return err
			}
			following = true
		}

		return tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE following_id = $1`, followingID)
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle follow: %w", err)
	}

	return following, count, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, followerID, followingID); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}

	return exists, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM follows WHERE following_id = $1`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count followers: %w", err)
	}

	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM follows WHERE follower_id = $1`

	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count following: %w", err)
	}

	return count, nil
}
