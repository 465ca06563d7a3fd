package domain

// User is the profile carried by a verified Google ID token and mirrored
// into the users table on each login.
type User struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	PictureURL string `json:"picture"`
}

func (u User) IsValid() bool {
	return u.Email != ""
}
