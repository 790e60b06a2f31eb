package identity

import "time"

// Record is a user profile as the record service stores it. The password
// is plaintext because that is what the backing mock API keeps and
// compares against.
type Record struct {
	ID        string
	Username  string
	Name      string
	Password  string
	CreatedAt time.Time
}

// DisplayName falls back to the username when no name was provided at
// signup.
func (r Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Username
}
