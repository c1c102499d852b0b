package models

import "time"

// Session is the lightweight local authentication marker. The engine only
// consumes "is the user currently authenticated" from it; the remote
// authentication flow itself lives outside this subsystem.
type Session struct {
	UserID  int64     `json:"user_id"`
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}
