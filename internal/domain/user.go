package domain

import "time"

// User is created by the registration service and is immutable here.
// Nickname doubles as the external identity claim.
type User struct {
	ID        int
	Nickname  string
	CreatedAt time.Time
}
