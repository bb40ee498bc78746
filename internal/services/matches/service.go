package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ivankudzin/swipematch/internal/domain/model"
	"github.com/ivankudzin/swipematch/internal/pkg/validate"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListMutualLikes(ctx context.Context, userID string, limit int) ([]model.Match, error)
	DeletePair(ctx context.Context, a, b string) (int64, error)
}

type Dependencies struct {
	MatchStore MatchStore
	Guard      AnnounceGuard
	Logger     *zap.Logger
}

// Service serves the full-state view of a user's matches. Clients reconcile
// against it after missing live events.
type Service struct {
	matchStore MatchStore
	guard      AnnounceGuard
	logger     *zap.Logger
}

type MatchItem struct {
	TargetUserID string
	MatchedAt    time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		matchStore: deps.MatchStore,
		guard:      deps.Guard,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]MatchItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.matchStore.ListMutualLikes(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			TargetUserID: row.CounterpartID,
			MatchedAt:    row.MatchedAt,
		})
	}
	return items, nil
}

// Unmatch drops both swipes of the pair and re-arms its announcement, so two
// fresh LIKEs announce a new match.
func (s *Service) Unmatch(ctx context.Context, userID, targetID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	targetID = strings.TrimSpace(targetID)
	if !validate.ID(userID) || !validate.ID(targetID) || userID == targetID {
		return false, ErrValidation
	}
	if s.matchStore == nil || s.guard == nil {
		return false, fmt.Errorf("unmatch dependencies are not configured")
	}

	deleted, err := s.matchStore.DeletePair(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	pairKey := model.PairKey(userID, targetID)
	if err := s.guard.Release(ctx, pairKey); err != nil {
		s.logger.Warn("release match announcement failed",
			zap.String("pair", pairKey),
			zap.Error(err),
		)
	}

	return deleted > 0, nil
}
