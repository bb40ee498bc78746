package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ivankudzin/swipematch/internal/domain/enums"
)

func TestSwipeStoreUpsertIsLastWriteWins(t *testing.T) {
	store := NewSwipeStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	if _, err := store.Upsert(ctx, "a", "b", enums.UserSwipeLike, base); err != nil {
		t.Fatalf("upsert like: %v", err)
	}
	if _, err := store.Upsert(ctx, "a", "b", enums.UserSwipePass, base.Add(time.Second)); err != nil {
		t.Fatalf("upsert pass: %v", err)
	}

	rec, found, err := store.Get(ctx, "a", "b")
	if err != nil || !found {
		t.Fatalf("get swipe: found=%v err=%v", found, err)
	}
	if rec.Action != enums.UserSwipePass {
		t.Fatalf("expected last write to win, got %s", rec.Action)
	}
	if _, found, _ := store.Get(ctx, "b", "a"); found {
		t.Fatalf("reverse edge must not exist")
	}
}

func TestSwipeStoreRejectsSelfSwipe(t *testing.T) {
	if _, err := NewSwipeStore().Upsert(context.Background(), "a", "a", enums.UserSwipeLike, time.Now()); err == nil {
		t.Fatalf("expected error for self swipe")
	}
}

func TestSwipeStoreListMutualLikesAndDeletePair(t *testing.T) {
	store := NewSwipeStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	mustUpsert := func(actor, target string, action enums.UserSwipeAction, at time.Time) {
		t.Helper()
		if _, err := store.Upsert(ctx, actor, target, action, at); err != nil {
			t.Fatalf("upsert %s->%s: %v", actor, target, err)
		}
	}
	mustUpsert("a", "b", enums.UserSwipeLike, base)
	mustUpsert("b", "a", enums.UserSwipeLike, base.Add(time.Minute))
	mustUpsert("a", "c", enums.UserSwipeLike, base)
	mustUpsert("c", "a", enums.UserSwipePass, base)
	mustUpsert("a", "d", enums.UserSwipeLike, base.Add(2*time.Minute))
	mustUpsert("d", "a", enums.UserSwipeLike, base.Add(3*time.Minute))

	items, err := store.ListMutualLikes(ctx, "a", 10)
	if err != nil {
		t.Fatalf("list mutual likes: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
	if items[0].CounterpartID != "d" || items[1].CounterpartID != "b" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !items[1].MatchedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("matched_at should be the later like, got %s", items[1].MatchedAt)
	}

	deleted, err := store.DeletePair(ctx, "b", "a")
	if err != nil {
		t.Fatalf("delete pair: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected both directions deleted, got %d", deleted)
	}

	items, err = store.ListMutualLikes(ctx, "a", 10)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(items) != 1 || items[0].CounterpartID != "d" {
		t.Fatalf("unexpected matches after delete: %+v", items)
	}
}

func TestAnnounceGuardSingleWinnerAndRelease(t *testing.T) {
	guard := NewAnnounceGuard()
	ctx := context.Background()

	first, _ := guard.TryAnnounce(ctx, "a|b")
	second, _ := guard.TryAnnounce(ctx, "a|b")
	if !first || second {
		t.Fatalf("expected only first announce to win: first=%v second=%v", first, second)
	}

	_ = guard.Release(ctx, "a|b")
	if again, _ := guard.TryAnnounce(ctx, "a|b"); !again {
		t.Fatalf("announce after release should win")
	}
}

func TestDirectoryProjectOwnerIsKnownUser(t *testing.T) {
	dir := NewDirectory()
	dir.AddProject("p1", "owner")

	owner, found, _ := dir.OwnerOf(context.Background(), "p1")
	if !found || owner != "owner" {
		t.Fatalf("unexpected owner lookup: owner=%q found=%v", owner, found)
	}
	if ok, _ := dir.Exists(context.Background(), "owner"); !ok {
		t.Fatalf("project owner should exist as a user")
	}
	if _, found, _ := dir.OwnerOf(context.Background(), "missing"); found {
		t.Fatalf("missing project must not be found")
	}
}
