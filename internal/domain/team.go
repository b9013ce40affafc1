package domain

import "time"

// Team is a named collaboration group with exactly one administrator.
// AdminID is fixed at creation time and never reassigned.
type Team struct {
	ID        int
	Name      string
	AdminID   int
	CreatedAt time.Time
}

// Member is the projection of a user through the team's membership edge.
type Member struct {
	ID       int
	Nickname string
}

// TeamProject is the projection used by team queries. Projects are written
// by the project-management service; this service reads them only.
type TeamProject struct {
	ID            int
	Name          string
	AdminNickname string
}
