package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTeamCreated       EventType = "team_created"
	EventTeamMemberInvited EventType = "team_member_invited"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TeamID    int         `json:"team_id"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TeamCreatedPayload payload.
type TeamCreatedPayload struct {
	TeamName string `json:"team_name"`
	AdminID  int    `json:"admin_id"`
}

// TeamMemberInvitedPayload payload.
type TeamMemberInvitedPayload struct {
	UserID   int    `json:"user_id"`
	Nickname string `json:"nickname"`
}
