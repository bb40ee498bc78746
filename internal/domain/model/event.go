package model

import (
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
)

const (
	EventTypeMatch        = "match"
	EventTypeProjectLiked = "project_liked"
)

// MatchEvent is published once per newly formed match and delivered to both
// members, each copy written from the receiving member's perspective.
type MatchEvent struct {
	ID                string    `json:"event_id"`
	SubjectUserID     string    `json:"subject_user_id"`
	CounterpartUserID string    `json:"counterpart_user_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Mirror returns the same event addressed to the counterpart.
func (e MatchEvent) Mirror() MatchEvent {
	return MatchEvent{
		ID:                e.ID,
		SubjectUserID:     e.CounterpartUserID,
		CounterpartUserID: e.SubjectUserID,
		OccurredAt:        e.OccurredAt,
	}
}

type ProjectLikedEvent struct {
	ID         string                   `json:"event_id"`
	ProjectID  string                   `json:"project_id"`
	ActorID    string                   `json:"actor_id"`
	Action     enums.ProjectSwipeAction `json:"action"`
	OccurredAt time.Time                `json:"occurred_at"`
}
