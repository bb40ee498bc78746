package delivery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type matchMessage struct {
	Type              string    `json:"type"`
	SubjectUserID     string    `json:"subjectUserId"`
	CounterpartUserID string    `json:"counterpartUserId"`
	OccurredAt        time.Time `json:"occurredAt"`
	EventID           string    `json:"eventId"`
}

type projectLikedMessage struct {
	Type        string    `json:"type"`
	ProjectID   string    `json:"projectId"`
	ActorUserID string    `json:"actorUserId"`
	Action      string    `json:"action"`
	OccurredAt  time.Time `json:"occurredAt"`
	EventID     string    `json:"eventId"`
}

// Encode renders an event in the shape clients receive over their live
// connection.
func Encode(event any) ([]byte, error) {
	var msg any
	switch e := event.(type) {
	case model.MatchEvent:
		msg = matchMessage{
			Type:              model.EventTypeMatch,
			SubjectUserID:     e.SubjectUserID,
			CounterpartUserID: e.CounterpartUserID,
			OccurredAt:        e.OccurredAt.UTC(),
			EventID:           e.ID,
		}
	case model.ProjectLikedEvent:
		msg = projectLikedMessage{
			Type:        model.EventTypeProjectLiked,
			ProjectID:   e.ProjectID,
			ActorUserID: e.ActorID,
			Action:      string(e.Action),
			OccurredAt:  e.OccurredAt.UTC(),
			EventID:     e.ID,
		}
	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", event, err)
	}
	return payload, nil
}
