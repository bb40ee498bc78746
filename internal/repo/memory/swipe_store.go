package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type edge struct {
	actor  string
	target string
}

// SwipeStore keeps directed user swipes in process memory.
type SwipeStore struct {
	mu     sync.RWMutex
	swipes map[edge]model.UserSwipe
}

func NewSwipeStore() *SwipeStore {
	return &SwipeStore{swipes: make(map[edge]model.UserSwipe)}
}

func (s *SwipeStore) Upsert(_ context.Context, actorID, targetID string, action enums.UserSwipeAction, now time.Time) (model.UserSwipe, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(targetID) == "" || action == "" {
		return model.UserSwipe{}, fmt.Errorf("invalid swipe payload")
	}
	if actorID == targetID {
		return model.UserSwipe{}, fmt.Errorf("self swipe is not allowed")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rec := model.UserSwipe{
		ActorID:   actorID,
		TargetID:  targetID,
		Action:    action,
		UpdatedAt: now.UTC(),
	}

	s.mu.Lock()
	s.swipes[edge{actor: actorID, target: targetID}] = rec
	s.mu.Unlock()

	return rec, nil
}

func (s *SwipeStore) Get(_ context.Context, actorID, targetID string) (model.UserSwipe, bool, error) {
	s.mu.RLock()
	rec, ok := s.swipes[edge{actor: actorID, target: targetID}]
	s.mu.RUnlock()
	return rec, ok, nil
}

func (s *SwipeStore) DeletePair(_ context.Context, a, b string) (int64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, fmt.Errorf("invalid swipe delete payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, key := range []edge{{actor: a, target: b}, {actor: b, target: a}} {
		if _, ok := s.swipes[key]; ok {
			delete(s.swipes, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *SwipeStore) ListMutualLikes(_ context.Context, userID string, limit int) ([]model.Match, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	items := make([]model.Match, 0)
	for key, mine := range s.swipes {
		if key.actor != userID || mine.Action != enums.UserSwipeLike {
			continue
		}
		theirs, ok := s.swipes[edge{actor: key.target, target: userID}]
		if !ok || theirs.Action != enums.UserSwipeLike {
			continue
		}
		matchedAt := mine.UpdatedAt
		if theirs.UpdatedAt.After(matchedAt) {
			matchedAt = theirs.UpdatedAt
		}
		items = append(items, model.Match{
			UserID:        userID,
			CounterpartID: key.target,
			MatchedAt:     matchedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].MatchedAt.Equal(items[j].MatchedAt) {
			return items[i].MatchedAt.After(items[j].MatchedAt)
		}
		return items[i].CounterpartID < items[j].CounterpartID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

type projectEdge struct {
	actor   string
	project string
}

type ProjectSwipeStore struct {
	mu     sync.RWMutex
	swipes map[projectEdge]model.ProjectSwipe
}

func NewProjectSwipeStore() *ProjectSwipeStore {
	return &ProjectSwipeStore{swipes: make(map[projectEdge]model.ProjectSwipe)}
}

func (s *ProjectSwipeStore) Upsert(_ context.Context, actorID, projectID string, action enums.ProjectSwipeAction, now time.Time) (model.ProjectSwipe, error) {
	if strings.TrimSpace(actorID) == "" || strings.TrimSpace(projectID) == "" || action == "" {
		return model.ProjectSwipe{}, fmt.Errorf("invalid project swipe payload")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	rec := model.ProjectSwipe{
		ActorID:   actorID,
		ProjectID: projectID,
		Action:    action,
		UpdatedAt: now.UTC(),
	}

	s.mu.Lock()
	s.swipes[projectEdge{actor: actorID, project: projectID}] = rec
	s.mu.Unlock()

	return rec, nil
}

func (s *ProjectSwipeStore) Get(_ context.Context, actorID, projectID string) (model.ProjectSwipe, bool, error) {
	s.mu.RLock()
	rec, ok := s.swipes[projectEdge{actor: actorID, project: projectID}]
	s.mu.RUnlock()
	return rec, ok, nil
}
