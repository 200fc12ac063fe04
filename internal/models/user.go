package models

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"senha"`
}

type AuthResponse struct {
	User  UserInfo `json:"user"`
	Token string   `json:"token"`
}

// UserInfo is the public part of a user returned on login
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
