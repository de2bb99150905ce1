package models

import "time"

type LoginLog struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	UserName  string     `json:"user_name,omitempty"` // Joined from users
	Email     string     `json:"email"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	Success   bool       `json:"success"`
	LoginAt   time.Time  `json:"login_at"`
	LogoutAt  *time.Time `json:"logout_at,omitempty"`
}
