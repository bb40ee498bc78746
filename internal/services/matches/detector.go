package matches

import (
	"context"
	"fmt"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
	"github.com/ivankudzin/swipematch/internal/domain/model"
)

type SwipeReader interface {
	Get(ctx context.Context, actorID, targetID string) (model.UserSwipe, bool, error)
}

// AnnounceGuard is an atomic check-and-set over unordered pairs. TryAnnounce
// returns true for exactly one caller per pair until Release.
type AnnounceGuard interface {
	TryAnnounce(ctx context.Context, pairKey string) (bool, error)
	Release(ctx context.Context, pairKey string) error
}

// Outcome of evaluating one swipe. With is set only when Matched.
type Outcome struct {
	Matched bool
	With    string
}

type Detector struct {
	swipes SwipeReader
	guard  AnnounceGuard
}

func NewDetector(swipes SwipeReader, guard AnnounceGuard) *Detector {
	return &Detector{swipes: swipes, guard: guard}
}

// Evaluate must run after the actor's swipe was persisted. Of two concurrent
// LIKEs that close the same pair only one observes Matched.
func (d *Detector) Evaluate(ctx context.Context, actorID, targetID string, action enums.UserSwipeAction) (Outcome, error) {
	if action != enums.UserSwipeLike {
		return Outcome{}, nil
	}
	if actorID == "" || targetID == "" || actorID == targetID {
		return Outcome{}, nil
	}
	if d.swipes == nil || d.guard == nil {
		return Outcome{}, fmt.Errorf("match detector dependencies are not configured")
	}

	reverse, found, err := d.swipes.Get(ctx, targetID, actorID)
	if err != nil {
		return Outcome{}, fmt.Errorf("read reverse swipe: %w", err)
	}
	if !found || reverse.Action != enums.UserSwipeLike {
		return Outcome{}, nil
	}

	won, err := d.guard.TryAnnounce(ctx, model.PairKey(actorID, targetID))
	if err != nil {
		return Outcome{}, fmt.Errorf("announce match: %w", err)
	}
	if !won {
		return Outcome{}, nil
	}

	return Outcome{Matched: true, With: targetID}, nil
}
