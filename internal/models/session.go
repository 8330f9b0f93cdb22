package models

// Persisted session keys. Values are plain strings.
const (
	KeyLoggedIn = "isLoggedIn"
	KeyCredits  = "credits"
)

// Session is what a signed-in client sees about itself.
type Session struct {
	ID       string `json:"id"`
	LoggedIn bool   `json:"logged_in"`
	Balance  int    `json:"balance"`
}
