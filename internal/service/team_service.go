package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/team-service/internal/domain"
	"github.com/spec-kit/team-service/internal/events"
	"github.com/spec-kit/team-service/internal/identity"
	"github.com/spec-kit/team-service/internal/repository"
	apperrors "github.com/spec-kit/team-service/pkg/util"
)

// TeamService coordinates team creation, query and invitation workflows.
type TeamService struct {
	gate       *identity.Gate
	teams      repository.TeamRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TeamDependencies bundles collaborators for the team service.
type TeamDependencies struct {
	Gate       *identity.Gate
	TeamRepo   repository.TeamRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TeamDetail is the assembled view of a team returned by queries and by
// creation (where the member list holds only the founder).
type TeamDetail struct {
	ID        int
	Name      string
	CreatedAt time.Time
	AdminName string
	Members   []domain.Member
	Projects  []domain.TeamProject
}

// NewTeamService constructs the service.
func NewTeamService(deps TeamDependencies) *TeamService {
	return &TeamService{
		gate:       deps.Gate,
		teams:      deps.TeamRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// QueryTeam returns the full team view: admin nickname, member list and the
// team's projects. Pure read.
func (s *TeamService) QueryTeam(ctx context.Context, username string, teamID int) (*TeamDetail, error) {
	if _, err := s.gate.Validate(ctx, username); err != nil {
		return nil, err
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidTeamID()
		}
		return nil, s.internal("query team", err)
	}

	admin, err := s.users.GetByID(ctx, team.AdminID)
	if err != nil {
		return nil, s.internal("load team admin", err)
	}
	members, err := s.teams.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, s.internal("list team members", err)
	}
	projects, err := s.teams.ListTeamProjects(ctx, team.ID)
	if err != nil {
		return nil, s.internal("list team projects", err)
	}

	return &TeamDetail{
		ID:        team.ID,
		Name:      team.Name,
		CreatedAt: team.CreatedAt,
		AdminName: admin.Nickname,
		Members:   members,
		Projects:  projects,
	}, nil
}

// CreateTeam creates a team with the caller as admin and founding member.
// The team row and the founding cooperation edge are written atomically.
func (s *TeamService) CreateTeam(ctx context.Context, username, teamName string) (*TeamDetail, error) {
	if _, err := s.gate.Validate(ctx, username); err != nil {
		return nil, err
	}

	if _, err := s.teams.GetByName(ctx, teamName); err == nil {
		return nil, apperrors.NewTeamNameExists()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, s.internal("check team name", err)
	}

	// Identity already validated, so the user record is expected to exist.
	founder, err := s.users.GetByNickname(ctx, username)
	if err != nil {
		return nil, s.internal("resolve founder", err)
	}

	team, err := s.teams.CreateTeamWithFounder(ctx, teamName, founder.ID)
	if err != nil {
		// A lost name race hits the unique index rather than the pre-check.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewTeamNameExists()
		}
		return nil, s.internal("create team", err)
	}

	s.publish(ctx, events.Event{
		Type:   events.EventTeamCreated,
		TeamID: team.ID,
		Actor:  username,
		Payload: events.TeamCreatedPayload{
			TeamName: team.Name,
			AdminID:  team.AdminID,
		},
	})

	return &TeamDetail{
		ID:        team.ID,
		Name:      team.Name,
		CreatedAt: team.CreatedAt,
		AdminName: founder.Nickname,
		Members:   []domain.Member{{ID: founder.ID, Nickname: founder.Nickname}},
	}, nil
}

// InviteNewTeamMember adds the invitee to the team's membership.
// The invite succeeds only when the invitee is the team's admin; this
// mirrors the existing contract and is pending product clarification.
func (s *TeamService) InviteNewTeamMember(ctx context.Context, username string, teamID int, inviteName string) error {
	if _, err := s.gate.Validate(ctx, username); err != nil {
		return err
	}
	if !identity.ValidName(inviteName) {
		return apperrors.NewInvalidInviteName()
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewTeamNotExist()
		}
		return s.internal("load team", err)
	}

	invitee, err := s.users.GetByNickname(ctx, inviteName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInviteeNotFound()
		}
		return s.internal("resolve invitee", err)
	}

	if invitee.ID != team.AdminID {
		return apperrors.NewPermissionDenied()
	}

	if err := s.teams.AddMember(ctx, team.ID, invitee.ID); err != nil {
		// Already a member: the invite is treated as applied.
		if !errors.Is(err, repository.ErrDuplicate) {
			return s.internal("add member", err)
		}
	}

	s.publish(ctx, events.Event{
		Type:   events.EventTeamMemberInvited,
		TeamID: team.ID,
		Actor:  username,
		Payload: events.TeamMemberInvitedPayload{
			UserID:   invitee.ID,
			Nickname: invitee.Nickname,
		},
	})
	return nil
}

func (s *TeamService) internal(op string, err error) error {
	if s.logger != nil {
		s.logger.Error(op, zap.Error(err))
	}
	return apperrors.NewInternalError(err)
}

func (s *TeamService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
