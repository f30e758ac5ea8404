package transport

import "github.com/daylogapp/daylog/domain"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

type LogoutRequest struct {
	SessionID string `json:"session_id"`
}

type TodoCreateRequest struct {
	Title       string `json:"title"`
	IsCompleted bool   `json:"is_completed"`
	Priority    int    `json:"priority"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user,omitempty"`
}
