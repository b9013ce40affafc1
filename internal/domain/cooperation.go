package domain

// Cooperation is the membership edge linking a user to a team. The team
// admin always has exactly one edge, inserted atomically with the team.
type Cooperation struct {
	TeamID int
	UserID int
}
