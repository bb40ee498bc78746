package enums

import "strings"

type UserSwipeAction string

const (
	UserSwipeLike UserSwipeAction = "LIKE"
	UserSwipePass UserSwipeAction = "PASS"
)

type ProjectSwipeAction string

const (
	ProjectSwipeLike      ProjectSwipeAction = "LIKE"
	ProjectSwipeSkip      ProjectSwipeAction = "SKIP"
	ProjectSwipeSuperLike ProjectSwipeAction = "SUPERLIKE"
)

// ParseUserSwipeAction accepts "like", " Pass ", "PASS" and the like. SKIP is
// read as PASS.
func ParseUserSwipeAction(input string) (UserSwipeAction, bool) {
	switch value := UserSwipeAction(normalize(input)); value {
	case UserSwipeLike, UserSwipePass:
		return value, true
	case UserSwipeAction(ProjectSwipeSkip):
		return UserSwipePass, true
	default:
		return "", false
	}
}

func ParseProjectSwipeAction(input string) (ProjectSwipeAction, bool) {
	switch value := ProjectSwipeAction(normalize(input)); value {
	case ProjectSwipeLike, ProjectSwipeSkip, ProjectSwipeSuperLike:
		return value, true
	default:
		return "", false
	}
}

// IsPositive reports whether the action should notify the project owner.
func (a ProjectSwipeAction) IsPositive() bool {
	return a == ProjectSwipeLike || a == ProjectSwipeSuperLike
}

func normalize(input string) string {
	value := strings.ToUpper(strings.TrimSpace(input))
	return strings.ReplaceAll(value, "_", "")
}
