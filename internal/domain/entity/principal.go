package entity

// Principal is the public-safe identity carried by a session.
type Principal struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	IsUserVerified     bool   `json:"isUserVerified"`
	IsAcceptingMessage bool   `json:"isAcceptingMessage"`
}

func (u *User) Principal() Principal {
	return Principal{
		ID:                 u.ID,
		Username:           u.Username,
		IsUserVerified:     u.IsUserVerified,
		IsAcceptingMessage: u.IsAcceptingMessage,
	}
}
