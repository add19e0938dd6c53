package models

// User is the minimal identity projection used for participants and
// acting users. ID is the stable external (Telegram) identity; it is
// asserted by the caller, not verified here.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}
