package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert writes the directed swipe. The (actor_id, target_id) primary key makes
// concurrent upserts on one pair serialize in the database; the last write wins.
func (r *SwipeRepo) Upsert(ctx context.Context, actorID, targetID string, action enums.UserSwipeAction, now time.Time) (model.UserSwipe, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(targetID) == "" || action == "" {
		return model.UserSwipe{}, fmt.Errorf("invalid swipe payload")
	}
	if r.pool == nil {
		return model.UserSwipe{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.UserSwipe
	var storedAction string
	err := r.pool.QueryRow(ctx, `
INSERT INTO user_swipes (
	actor_id,
	target_id,
	action,
	updated_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_id, target_id) DO UPDATE SET
	action = EXCLUDED.action,
	updated_at = EXCLUDED.updated_at
RETURNING actor_id, target_id, action, updated_at
`, actorID, targetID, string(action), now.UTC()).Scan(
		&rec.ActorID,
		&rec.TargetID,
		&storedAction,
		&rec.UpdatedAt,
	)
	if err != nil {
		return model.UserSwipe{}, fmt.Errorf("upsert user swipe: %w", err)
	}
	rec.Action = enums.UserSwipeAction(storedAction)

	return rec, nil
}

func (r *SwipeRepo) Get(ctx context.Context, actorID, targetID string) (model.UserSwipe, bool, error) {
	if r.pool == nil {
		return model.UserSwipe{}, false, fmt.Errorf("postgres pool is nil")
	}

	var rec model.UserSwipe
	var storedAction string
	err := r.pool.QueryRow(ctx, `
SELECT actor_id, target_id, action, updated_at
FROM user_swipes
WHERE actor_id = $1 AND target_id = $2
`, actorID, targetID).Scan(
		&rec.ActorID,
		&rec.TargetID,
		&storedAction,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserSwipe{}, false, nil
		}
		return model.UserSwipe{}, false, fmt.Errorf("get user swipe: %w", err)
	}
	rec.Action = enums.UserSwipeAction(storedAction)

	return rec, true, nil
}

// DeletePair removes both directed rows between a and b in one transaction.
func (r *SwipeRepo) DeletePair(ctx context.Context, a, b string) (int64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, fmt.Errorf("invalid swipe delete payload")
	}

	var deleted int64
	err := WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		result, err := tx.Exec(txCtx, `
DELETE FROM user_swipes
WHERE (actor_id = $1 AND target_id = $2)
	OR (actor_id = $2 AND target_id = $1)
`, a, b)
		if err != nil {
			return fmt.Errorf("delete user swipe pair: %w", err)
		}
		deleted = result.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// ListMutualLikes derives the current matches of userID. MatchedAt is the
// moment the later of the two LIKEs was written.
func (r *SwipeRepo) ListMutualLikes(ctx context.Context, userID string, limit int) ([]model.Match, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	mine.target_id,
	GREATEST(mine.updated_at, theirs.updated_at) AS matched_at
FROM user_swipes mine
JOIN user_swipes theirs
	ON theirs.actor_id = mine.target_id
	AND theirs.target_id = mine.actor_id
WHERE
	mine.actor_id = $1
	AND mine.action = 'LIKE'
	AND theirs.action = 'LIKE'
ORDER BY matched_at DESC, mine.target_id
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mutual likes: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0, limit)
	for rows.Next() {
		item := model.Match{UserID: userID}
		if err := rows.Scan(&item.CounterpartID, &item.MatchedAt); err != nil {
			return nil, fmt.Errorf("scan mutual like: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate mutual likes: %w", rows.Err())
	}

	return items, nil
}
