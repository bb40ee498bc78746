package model

import (
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
)

// UserSwipe is one directed preference between two users. There is at most
// one row per (ActorID, TargetID); re-swiping overwrites Action and UpdatedAt.
type UserSwipe struct {
	ActorID   string                `json:"actor_id"`
	TargetID  string                `json:"target_id"`
	Action    enums.UserSwipeAction `json:"action"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type ProjectSwipe struct {
	ActorID   string                   `json:"actor_id"`
	ProjectID string                   `json:"project_id"`
	Action    enums.ProjectSwipeAction `json:"action"`
	UpdatedAt time.Time                `json:"updated_at"`
}
