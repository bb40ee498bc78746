package swipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
	"github.com/ivankudzin/swipematch/internal/domain/model"
	"github.com/ivankudzin/swipematch/internal/pkg/validate"
	"github.com/ivankudzin/swipematch/internal/services/eventbus"
	matchessvc "github.com/ivankudzin/swipematch/internal/services/matches"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrUnsupportedAction  = errors.New("unsupported action")
	ErrInvalidSwipeTarget = errors.New("invalid swipe target")
	ErrStoreUnavailable   = errors.New("swipe store unavailable")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type SwipeStore interface {
	Upsert(ctx context.Context, actorID, targetID string, action enums.UserSwipeAction, now time.Time) (model.UserSwipe, error)
}

type ProjectSwipeStore interface {
	Upsert(ctx context.Context, actorID, projectID string, action enums.ProjectSwipeAction, now time.Time) (model.ProjectSwipe, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type ProjectDirectory interface {
	OwnerOf(ctx context.Context, projectID string) (string, bool, error)
}

type MatchDetector interface {
	Evaluate(ctx context.Context, actorID, targetID string, action enums.UserSwipeAction) (matchessvc.Outcome, error)
}

type Publisher interface {
	Publish(topic string, event any) error
}

type RateLimiter interface {
	AllowSwipe(ctx context.Context, userID string) (int64, bool, error)
}

type Dependencies struct {
	Swipes        SwipeStore
	ProjectSwipes ProjectSwipeStore
	Users         UserDirectory
	Projects      ProjectDirectory
	Detector      MatchDetector
	Publisher     Publisher
	RateLimiter   RateLimiter
	Logger        *zap.Logger
}

type SwipeResult struct {
	Matched       bool
	CounterpartID string
}

type ProjectSwipeResult struct {
	Action enums.ProjectSwipeAction
}

// Service accepts swipes, persists them and announces the outcome on the event
// bus. Announcing is best effort: once a swipe is stored the call succeeds even
// when detection or publishing fails.
type Service struct {
	swipes        SwipeStore
	projectSwipes ProjectSwipeStore
	users         UserDirectory
	projects      ProjectDirectory
	detector      MatchDetector
	publisher     Publisher
	rateLimiter   RateLimiter
	logger        *zap.Logger
	now           func() time.Time
	newEventID    func() string
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		swipes:        deps.Swipes,
		projectSwipes: deps.ProjectSwipes,
		users:         deps.Users,
		projects:      deps.Projects,
		detector:      deps.Detector,
		publisher:     deps.Publisher,
		rateLimiter:   deps.RateLimiter,
		logger:        logger,
		now:           time.Now,
		newEventID:    uuid.NewString,
	}
}

func (s *Service) SubmitSwipe(ctx context.Context, actorID, targetID, action string) (SwipeResult, error) {
	actorID = strings.TrimSpace(actorID)
	targetID = strings.TrimSpace(targetID)
	if !validate.ID(actorID) || !validate.ID(targetID) {
		return SwipeResult{}, ErrValidation
	}
	if actorID == targetID {
		return SwipeResult{}, ErrInvalidSwipeTarget
	}

	normalizedAction, ok := enums.ParseUserSwipeAction(action)
	if !ok {
		return SwipeResult{}, ErrUnsupportedAction
	}

	if s.swipes == nil || s.users == nil || s.detector == nil || s.publisher == nil {
		return SwipeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return SwipeResult{}, fmt.Errorf("%w: lookup target: %v", ErrStoreUnavailable, err)
	}
	if !exists {
		return SwipeResult{}, ErrInvalidSwipeTarget
	}

	if err := s.checkRate(ctx, actorID); err != nil {
		return SwipeResult{}, err
	}

	now := s.now().UTC()
	if _, err := s.swipes.Upsert(ctx, actorID, targetID, normalizedAction, now); err != nil {
		return SwipeResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	outcome, err := s.detector.Evaluate(ctx, actorID, targetID, normalizedAction)
	if err != nil {
		s.logger.Warn("match detection failed, reporting no match",
			zap.String("actor_id", actorID),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
		return SwipeResult{}, nil
	}
	if !outcome.Matched {
		return SwipeResult{}, nil
	}

	event := model.MatchEvent{
		ID:                s.newEventID(),
		SubjectUserID:     actorID,
		CounterpartUserID: outcome.With,
		OccurredAt:        now,
	}
	s.publish(eventbus.UserTopic(actorID), event)
	s.publish(eventbus.UserTopic(outcome.With), event.Mirror())

	s.logger.Info("match announced",
		zap.String("event_id", event.ID),
		zap.String("actor_id", actorID),
		zap.String("counterpart_id", outcome.With),
	)

	return SwipeResult{Matched: true, CounterpartID: outcome.With}, nil
}

// SubmitProjectSwipe stores a swipe on a project. Positive swipes notify the
// project's listeners and its owner; project swipes never form matches.
func (s *Service) SubmitProjectSwipe(ctx context.Context, actorID, projectID, action string) (ProjectSwipeResult, error) {
	actorID = strings.TrimSpace(actorID)
	projectID = strings.TrimSpace(projectID)
	if !validate.ID(actorID) || !validate.ID(projectID) {
		return ProjectSwipeResult{}, ErrValidation
	}

	normalizedAction, ok := enums.ParseProjectSwipeAction(action)
	if !ok {
		return ProjectSwipeResult{}, ErrUnsupportedAction
	}

	if s.projectSwipes == nil || s.projects == nil || s.publisher == nil {
		return ProjectSwipeResult{}, fmt.Errorf("project swipe dependencies are not configured")
	}

	ownerID, found, err := s.projects.OwnerOf(ctx, projectID)
	if err != nil {
		return ProjectSwipeResult{}, fmt.Errorf("%w: lookup project: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return ProjectSwipeResult{}, ErrInvalidSwipeTarget
	}

	if err := s.checkRate(ctx, actorID); err != nil {
		return ProjectSwipeResult{}, err
	}

	now := s.now().UTC()
	if _, err := s.projectSwipes.Upsert(ctx, actorID, projectID, normalizedAction, now); err != nil {
		return ProjectSwipeResult{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if normalizedAction.IsPositive() {
		event := model.ProjectLikedEvent{
			ID:         s.newEventID(),
			ProjectID:  projectID,
			ActorID:    actorID,
			Action:     normalizedAction,
			OccurredAt: now,
		}
		s.publish(eventbus.ProjectTopic(projectID), event)
		if ownerID != "" && ownerID != actorID {
			s.publish(eventbus.UserTopic(ownerID), event)
		}
	}

	return ProjectSwipeResult{Action: normalizedAction}, nil
}

func (s *Service) checkRate(ctx context.Context, actorID string) error {
	if s.rateLimiter == nil {
		return nil
	}

	retryAfter, allowed, err := s.rateLimiter.AllowSwipe(ctx, actorID)
	if err != nil {
		s.logger.Warn("swipe rate limiter unavailable, allowing swipe",
			zap.String("actor_id", actorID),
			zap.Error(err),
		)
		return nil
	}
	if !allowed {
		return TooFastError{RetryAfterSec: retryAfter}
	}
	return nil
}

func (s *Service) publish(topic string, event any) {
	if err := s.publisher.Publish(topic, event); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
