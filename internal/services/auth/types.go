package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

type AccessClaims struct {
	UserID    string
	SID       string
	ExpiresAt time.Time
}

type IssuedToken struct {
	AccessToken string
	ExpiresAt   time.Time
	SID         string
}
