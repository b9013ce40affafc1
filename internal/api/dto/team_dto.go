package dto

import (
	"time"

	"github.com/spec-kit/team-service/internal/service"
)

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Username string `json:"username"`
	TeamName string `json:"teamName"`
}

// InviteMemberRequest payload.
type InviteMemberRequest struct {
	Username   string `json:"username"`
	TeamID     int    `json:"teamId"`
	InviteName string `json:"inviteName"`
}

// MemberView is one entry in a team's member list.
type MemberView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// ProjectView is one entry in a team's project list.
type ProjectView struct {
	ProjectID   int    `json:"projectId"`
	ProjectName string `json:"projectName"`
	AdminName   string `json:"adminName"`
}

// TeamView is the team payload shared by query and create responses.
// TeamProjects is omitted on creation, where no projects can exist yet.
type TeamView struct {
	TeamID       int           `json:"teamId"`
	TeamName     string        `json:"teamName"`
	CreateTime   time.Time     `json:"createTime"`
	AdminName    string        `json:"adminName"`
	Members      []MemberView  `json:"members"`
	TeamProjects []ProjectView `json:"teamProjects,omitempty"`
}

// TeamData wraps a team view in the success data block.
type TeamData struct {
	IsSuccess bool     `json:"isSuccess"`
	Msg       string   `json:"msg"`
	Team      TeamView `json:"team"`
}

// AckData is the bare success acknowledgment.
type AckData struct {
	IsSuccess bool   `json:"isSuccess"`
	Msg       string `json:"msg"`
}

// TeamResponse is the success envelope carrying a team payload.
type TeamResponse struct {
	ErrCode int      `json:"err_code"`
	Data    TeamData `json:"data"`
}

// AckResponse is the success envelope carrying a bare acknowledgment.
type AckResponse struct {
	ErrCode int     `json:"err_code"`
	Data    AckData `json:"data"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	ErrCode int    `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// NewQueryTeamResponse shapes a queried team, members and projects included.
func NewQueryTeamResponse(detail *service.TeamDetail) TeamResponse {
	view := teamView(detail)
	view.TeamProjects = make([]ProjectView, 0, len(detail.Projects))
	for _, p := range detail.Projects {
		view.TeamProjects = append(view.TeamProjects, ProjectView{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			AdminName:   p.AdminNickname,
		})
	}
	return TeamResponse{Data: TeamData{IsSuccess: true, Team: view}}
}

// NewCreateTeamResponse shapes a freshly created team with its founder as
// the only member.
func NewCreateTeamResponse(detail *service.TeamDetail) TeamResponse {
	return TeamResponse{Data: TeamData{IsSuccess: true, Team: teamView(detail)}}
}

// NewAckResponse acknowledges a mutation with no payload.
func NewAckResponse() AckResponse {
	return AckResponse{Data: AckData{IsSuccess: true}}
}

// NewErrorResponse builds the failure envelope.
func NewErrorResponse(code int, message string) ErrorResponse {
	return ErrorResponse{ErrCode: code, ErrMsg: message}
}

func teamView(detail *service.TeamDetail) TeamView {
	members := make([]MemberView, 0, len(detail.Members))
	for _, m := range detail.Members {
		members = append(members, MemberView{ID: m.ID, Username: m.Nickname})
	}
	return TeamView{
		TeamID:     detail.ID,
		TeamName:   detail.Name,
		CreateTime: detail.CreatedAt,
		AdminName:  detail.AdminName,
		Members:    members,
	}
}
