package controller

// Session is the identity state supplied by the identity provider for one user.
type Session struct {
	UserID   string `json:"user_id"`
	SignedIn bool   `json:"signed_in"`
}
