package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the like of userID on postID inside one transaction and
// returns the new state together with the post's like count. The
// (user_id, post_id) primary key keeps concurrent toggles from creating
// duplicate rows; the actor lock keeps them alternating.
func (r *likeRepository) Toggle(ctx context.Context, userID, postID string) (bool, int, error) {
	var (
		liked bool
		count int
	)

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockActor(ctx, tx, userID); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = $1 AND post_id = $2`, userID, postID)
		if err != nil {
			return err
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO likes (user_id, post_id, created_at)
				VALUES ($1, $2, CURRENT_TIMESTAMP)
				ON CONFLICT (user_id, post_id) DO NOTHING
			`, userID, postID)
			if err != nil {
				return err
			}
			liked = true
		}

		return tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID)
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}

	return liked, count, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`

	if err := r.db.GetContext(ctx, &exists, query, userID, postID); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}

	return exists, nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM likes WHERE post_id = $1`

	if err := r.db.GetContext(ctx, &count, query, postID); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}
