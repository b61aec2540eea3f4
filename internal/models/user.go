package models

import "time"

// LoginRequest authenticates the single operator of this instance.
type LoginRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	PlayerID  string    `json:"player_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MeResponse struct {
	PlayerID string `json:"player_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
