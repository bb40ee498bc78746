package dto

type SwipeRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

type SwipeResponse struct {
	OK            bool   `json:"ok"`
	Matched       bool   `json:"matched"`
	CounterpartID string `json:"counterpart_id,omitempty"`
}

type ProjectSwipeRequest struct {
	Action string `json:"action"`
}

type ProjectSwipeResponse struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
}
