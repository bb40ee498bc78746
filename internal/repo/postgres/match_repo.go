package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/swipematch/internal/domain/model"
)

// MatchRepo records which pairs already had their match announced. The row is
// keyed by the sorted pair so both directions contend for the same key.
type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// TryAnnounce inserts the pair and reports whether this call created the row.
func (r *MatchRepo) TryAnnounce(ctx context.Context, pairKey string) (bool, error) {
	userA, userB, ok := model.SplitPairKey(pairKey)
	if !ok {
		return false, fmt.Errorf("invalid pair key %q", pairKey)
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var announcedA string
	err := r.pool.QueryRow(ctx, `
INSERT INTO match_announcements (
	user_a_id,
	user_b_id,
	announced_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING user_a_id
`, userA, userB).Scan(&announcedA)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert match announcement: %w", err)
	}

	return announcedA != "", nil
}

func (r *MatchRepo) Release(ctx context.Context, pairKey string) error {
	userA, userB, ok := model.SplitPairKey(pairKey)
	if !ok {
		return fmt.Errorf("invalid pair key %q", pairKey)
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM match_announcements
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB); err != nil {
		return fmt.Errorf("delete match announcement: %w", err)
	}

	return nil
}
