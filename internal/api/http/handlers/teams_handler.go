package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/team-service/internal/api/dto"
	"github.com/spec-kit/team-service/internal/service"
)

// TeamsHandler exposes the team lifecycle endpoints.
type TeamsHandler struct {
	teams *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teamService *service.TeamService) *TeamsHandler {
	return &TeamsHandler{teams: teamService}
}

// QueryTeam handles GET /api/mesh/team.
func (h *TeamsHandler) QueryTeam(c *fiber.Ctx) error {
	username := c.Query("username")
	teamID := c.QueryInt("teamId")

	detail, err := h.teams.QueryTeam(c.UserContext(), username, teamID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQueryTeamResponse(detail))
}

// CreateTeam handles POST /api/mesh/team.
func (h *TeamsHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.CreateTeamRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	// Legacy clients send these as query parameters.
	if req.Username == "" {
		req.Username = c.Query("username")
	}
	if req.TeamName == "" {
		req.TeamName = c.Query("teamName")
	}

	detail, err := h.teams.CreateTeam(c.UserContext(), req.Username, req.TeamName)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCreateTeamResponse(detail))
}

// InviteNewTeamMember handles POST /api/mesh/team/invite.
func (h *TeamsHandler) InviteNewTeamMember(c *fiber.Ctx) error {
	var req dto.InviteMemberRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" {
		req.Username = c.Query("username")
	}
	if req.TeamID == 0 {
		req.TeamID = c.QueryInt("teamId")
	}
	if req.InviteName == "" {
		req.InviteName = c.Query("inviteName")
	}

	if err := h.teams.InviteNewTeamMember(c.UserContext(), req.Username, req.TeamID, req.InviteName); err != nil {
		return err
	}
	return c.JSON(dto.NewAckResponse())
}
