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

type ProjectSwipeRepo struct {
	pool *pgxpool.Pool
}

func NewProjectSwipeRepo(pool *pgxpool.Pool) *ProjectSwipeRepo {
	return &ProjectSwipeRepo{pool: pool}
}

func (r *ProjectSwipeRepo) Upsert(ctx context.Context, actorID, projectID string, action enums.ProjectSwipeAction, now time.Time) (model.ProjectSwipe, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(projectID) == "" || action == "" {
		return model.ProjectSwipe{}, fmt.Errorf("invalid project swipe payload")
	}
	if r.pool == nil {
		return model.ProjectSwipe{}, fmt.Errorf("postgres pool is nil")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec model.ProjectSwipe
	var storedAction string
	err := r.pool.QueryRow(ctx, `
INSERT INTO project_swipes (
	actor_id,
	project_id,
	action,
	updated_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_id, project_id) DO UPDATE SET
	action = EXCLUDED.action,
	updated_at = EXCLUDED.updated_at
RETURNING actor_id, project_id, action, updated_at
`, actorID, projectID, string(action), now.UTC()).Scan(
		&rec.ActorID,
		&rec.ProjectID,
		&storedAction,
		&rec.UpdatedAt,
	)
	if err != nil {
		return model.ProjectSwipe{}, fmt.Errorf("upsert project swipe: %w", err)
	}
	rec.Action = enums.ProjectSwipeAction(storedAction)

	return rec, nil
}

func (r *ProjectSwipeRepo) Get(ctx context.Context, actorID, projectID string) (model.ProjectSwipe, bool, error) {
	if r.pool == nil {
		return model.ProjectSwipe{}, false, fmt.Errorf("postgres pool is nil")
	}

	var rec model.ProjectSwipe
	var storedAction string
	err := r.pool.QueryRow(ctx, `
SELECT actor_id, project_id, action, updated_at
FROM project_swipes
WHERE actor_id = $1 AND project_id = $2
`, actorID, projectID).Scan(
		&rec.ActorID,
		&rec.ProjectID,
		&storedAction,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProjectSwipe{}, false, nil
		}
		return model.ProjectSwipe{}, false, fmt.Errorf("get project swipe: %w", err)
	}
	rec.Action = enums.ProjectSwipeAction(storedAction)

	return rec, true, nil
}
