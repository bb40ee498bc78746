package dto

import "time"

type MatchItemResponse struct {
	UserID    string    `json:"user_id"`
	MatchedAt time.Time `json:"matched_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type UnmatchRequest struct {
	TargetID string `json:"target_id"`
}

type UnmatchResponse struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}

type HealthResponse struct {
	OK          bool `json:"ok"`
	Connections int  `json:"connections"`
	Users       int  `json:"users"`
}
