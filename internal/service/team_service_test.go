package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/team-service/internal/domain"
	"github.com/spec-kit/team-service/internal/events"
	"github.com/spec-kit/team-service/internal/identity"
	"github.com/spec-kit/team-service/internal/repository"
	apperrors "github.com/spec-kit/team-service/pkg/util"
)

type fakeSessionStore struct {
	active map[string]bool
	err    error
	calls  int
}

func (f *fakeSessionStore) IsActive(ctx context.Context, username string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.active[username], nil
}

type fakeUserRepo struct {
	byID       map[int]*domain.User
	byNickname map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byID:       make(map[int]*domain.User),
		byNickname: make(map[string]*domain.User),
	}
	for _, u := range users {
		repo.byID[u.ID] = u
		repo.byNickname[u.Nickname] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	if u, ok := f.byNickname[nickname]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeTeamRepo struct {
	byID     map[int]*domain.Team
	byName   map[string]*domain.Team
	members  map[int][]domain.Member
	projects map[int][]domain.TeamProject

	errOnCreate error
	errOnAdd    error

	nextID      int
	createCalls int
	addCalls    []domain.Cooperation
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		byID:     make(map[int]*domain.Team),
		byName:   make(map[string]*domain.Team),
		members:  make(map[int][]domain.Member),
		projects: make(map[int][]domain.TeamProject),
		nextID:   1,
	}
}

func (f *fakeTeamRepo) GetByID(ctx context.Context, id int) (*domain.Team, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeamRepo) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	if t, ok := f.byName[name]; ok {
		return t, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTeamRepo) ListMembers(ctx context.Context, teamID int) ([]domain.Member, error) {
	return append([]domain.Member(nil), f.members[teamID]...), nil
}

func (f *fakeTeamRepo) ListTeamProjects(ctx context.Context, teamID int) ([]domain.TeamProject, error) {
	return append([]domain.TeamProject(nil), f.projects[teamID]...), nil
}

func (f *fakeTeamRepo) CreateTeamWithFounder(ctx context.Context, name string, adminID int) (*domain.Team, error) {
	f.createCalls++
	if f.errOnCreate != nil {
		// all-or-nothing: a failed create leaves no trace
		return nil, f.errOnCreate
	}
	team := &domain.Team{
		ID:        f.nextID,
		Name:      name,
		AdminID:   adminID,
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.nextID++
	f.byID[team.ID] = team
	f.byName[team.Name] = team
	f.members[team.ID] = []domain.Member{{ID: adminID}}
	return team, nil
}

func (f *fakeTeamRepo) AddMember(ctx context.Context, teamID, userID int) error {
	if f.errOnAdd != nil {
		return f.errOnAdd
	}
	f.addCalls = append(f.addCalls, domain.Cooperation{TeamID: teamID, UserID: userID})
	f.members[teamID] = append(f.members[teamID], domain.Member{ID: userID})
	return nil
}

type fakeDispatcher struct {
	published []events.Event
}

func (f *fakeDispatcher) Publish(ctx context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

type serviceFixture struct {
	svc        *TeamService
	sessions   *fakeSessionStore
	teams      *fakeTeamRepo
	users      *fakeUserRepo
	dispatcher *fakeDispatcher
}

func newFixture(users ...*domain.User) *serviceFixture {
	sessions := &fakeSessionStore{active: make(map[string]bool)}
	teams := newFakeTeamRepo()
	userRepo := newFakeUserRepo(users...)
	dispatcher := &fakeDispatcher{}
	svc := NewTeamService(TeamDependencies{
		Gate:       identity.NewGate(sessions),
		TeamRepo:   teams,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return &serviceFixture{svc: svc, sessions: sessions, teams: teams, users: userRepo, dispatcher: dispatcher}
}

func wireCode(t *testing.T, err error) int {
	t.Helper()
	var statusErr *apperrors.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	return statusErr.Code
}

func TestQueryTeam_InvalidUsernameBeforeStores(t *testing.T) {
	fx := newFixture()

	for _, username := range []string{"", strings.Repeat("a", 51)} {
		_, err := fx.svc.QueryTeam(context.Background(), username, 1)
		if code := wireCode(t, err); code != apperrors.CodeInvalidUsername {
			t.Fatalf("username %q: code = %d, want %d", username, code, apperrors.CodeInvalidUsername)
		}
	}
	if fx.sessions.calls != 0 {
		t.Fatalf("session store consulted %d times before format check", fx.sessions.calls)
	}
}

func TestQueryTeam_NoActiveSession(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.QueryTeam(context.Background(), "alice", 1)
	if code := wireCode(t, err); code != apperrors.CodeUnauthenticated {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeUnauthenticated)
	}
}

func TestQueryTeam_TeamNotFound(t *testing.T) {
	fx := newFixture()
	fx.sessions.active["alice"] = true

	_, err := fx.svc.QueryTeam(context.Background(), "alice", 42)
	if code := wireCode(t, err); code != apperrors.CodeTeamNotFound {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeTeamNotFound)
	}
}

func TestQueryTeam_SuccessAndIdempotent(t *testing.T) {
	alice := &domain.User{ID: 7, Nickname: "alice"}
	bob := &domain.User{ID: 8, Nickname: "bob"}
	fx := newFixture(alice, bob)
	fx.sessions.active["bob"] = true

	fx.teams.byID[3] = &domain.Team{ID: 3, Name: "Avengers", AdminID: 7, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	fx.teams.members[3] = []domain.Member{{ID: 7, Nickname: "alice"}, {ID: 8, Nickname: "bob"}}
	fx.teams.projects[3] = []domain.TeamProject{{ID: 11, Name: "mesh", AdminNickname: "alice"}}

	first, err := fx.svc.QueryTeam(context.Background(), "bob", 3)
	if err != nil {
		t.Fatalf("QueryTeam() unexpected error: %v", err)
	}
	if first.AdminName != "alice" {
		t.Fatalf("AdminName = %q, want %q", first.AdminName, "alice")
	}
	if len(first.Members) != 2 || len(first.Projects) != 1 {
		t.Fatalf("members/projects = %d/%d, want 2/1", len(first.Members), len(first.Projects))
	}

	second, err := fx.svc.QueryTeam(context.Background(), "bob", 3)
	if err != nil {
		t.Fatalf("second QueryTeam() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated query diverged.\n got: %+v\nwant: %+v", second, first)
	}
}

func TestCreateTeam_NameConflict(t *testing.T) {
	alice := &domain.User{ID: 1, Nickname: "alice"}
	fx := newFixture(alice)
	fx.sessions.active["alice"] = true
	fx.teams.byName["Avengers"] = &domain.Team{ID: 9, Name: "Avengers", AdminID: 2}

	_, err := fx.svc.CreateTeam(context.Background(), "alice", "Avengers")
	if code := wireCode(t, err); code != apperrors.CodeTeamNameConflict {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeTeamNameConflict)
	}
	if fx.teams.createCalls != 0 {
		t.Fatalf("create attempted %d times despite conflict", fx.teams.createCalls)
	}
}

func TestCreateTeam_Success(t *testing.T) {
	alice := &domain.User{ID: 5, Nickname: "alice"}
	fx := newFixture(alice)
	fx.sessions.active["alice"] = true

	detail, err := fx.svc.CreateTeam(context.Background(), "alice", "Avengers")
	if err != nil {
		t.Fatalf("CreateTeam() unexpected error: %v", err)
	}
	if detail.Name != "Avengers" || detail.AdminName != "alice" {
		t.Fatalf("detail = %+v", detail)
	}
	wantMembers := []domain.Member{{ID: 5, Nickname: "alice"}}
	if !reflect.DeepEqual(detail.Members, wantMembers) {
		t.Fatalf("Members = %+v, want %+v", detail.Members, wantMembers)
	}

	created, err := fx.teams.GetByName(context.Background(), "Avengers")
	if err != nil {
		t.Fatalf("team not persisted: %v", err)
	}
	if created.AdminID != 5 {
		t.Fatalf("AdminID = %d, want 5", created.AdminID)
	}
	if got := fx.teams.members[created.ID]; len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("founding membership = %+v, want single edge for user 5", got)
	}

	if len(fx.dispatcher.published) != 1 || fx.dispatcher.published[0].Type != events.EventTeamCreated {
		t.Fatalf("published events = %+v", fx.dispatcher.published)
	}
}

func TestCreateTeam_StorageFailureLeavesNoTeam(t *testing.T) {
	alice := &domain.User{ID: 5, Nickname: "alice"}
	fx := newFixture(alice)
	fx.sessions.active["alice"] = true
	fx.teams.errOnCreate = errors.New("cooperation insert failed")

	_, err := fx.svc.CreateTeam(context.Background(), "alice", "Avengers")
	if code := wireCode(t, err); code != apperrors.CodeInternal {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeInternal)
	}
	if _, err := fx.teams.GetByName(context.Background(), "Avengers"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("team visible after rolled-back create: %v", err)
	}
	if len(fx.dispatcher.published) != 0 {
		t.Fatalf("event published for failed create: %+v", fx.dispatcher.published)
	}
}

func TestCreateTeam_LostNameRaceMapsToConflict(t *testing.T) {
	alice := &domain.User{ID: 5, Nickname: "alice"}
	fx := newFixture(alice)
	fx.sessions.active["alice"] = true
	fx.teams.errOnCreate = repository.ErrDuplicate

	_, err := fx.svc.CreateTeam(context.Background(), "alice", "Avengers")
	if code := wireCode(t, err); code != apperrors.CodeTeamNameConflict {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeTeamNameConflict)
	}
}

func TestInvite_InvalidInviteName(t *testing.T) {
	fx := newFixture()
	fx.sessions.active["alice"] = true

	for _, inviteName := range []string{"", strings.Repeat("b", 51)} {
		err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, inviteName)
		if code := wireCode(t, err); code != apperrors.CodeInvalidInvite {
			t.Fatalf("inviteName %q: code = %d, want %d", inviteName, code, apperrors.CodeInvalidInvite)
		}
	}
}

func TestInvite_TeamNotFound(t *testing.T) {
	fx := newFixture()
	fx.sessions.active["alice"] = true

	err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 99, "bob")
	if code := wireCode(t, err); code != apperrors.CodeTeamNotFound {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeTeamNotFound)
	}
}

func TestInvite_InviteeNotFound(t *testing.T) {
	fx := newFixture()
	fx.sessions.active["alice"] = true
	fx.teams.byID[1] = &domain.Team{ID: 1, Name: "Avengers", AdminID: 2}

	err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, "ghost")
	var statusErr *apperrors.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != apperrors.CodeInvalidInvite {
		t.Fatalf("code = %d, want %d", statusErr.Code, apperrors.CodeInvalidInvite)
	}
	if statusErr.Message != "Username or inviteName not exists." {
		t.Fatalf("message = %q", statusErr.Message)
	}
}

func TestInvite_InviteeNotAdminIsDenied(t *testing.T) {
	bob := &domain.User{ID: 3, Nickname: "bob"}
	fx := newFixture(bob)
	fx.sessions.active["alice"] = true
	fx.teams.byID[1] = &domain.Team{ID: 1, Name: "Avengers", AdminID: 2}

	err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, "bob")
	if code := wireCode(t, err); code != apperrors.CodePermissionDenied {
		t.Fatalf("code = %d, want %d", code, apperrors.CodePermissionDenied)
	}
	if len(fx.teams.addCalls) != 0 {
		t.Fatalf("membership written despite denial: %+v", fx.teams.addCalls)
	}
}

func TestInvite_AdminInviteeSucceeds(t *testing.T) {
	admin := &domain.User{ID: 2, Nickname: "carol"}
	fx := newFixture(admin)
	fx.sessions.active["alice"] = true
	fx.teams.byID[1] = &domain.Team{ID: 1, Name: "Avengers", AdminID: 2}

	if err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, "carol"); err != nil {
		t.Fatalf("InviteNewTeamMember() unexpected error: %v", err)
	}
	want := []domain.Cooperation{{TeamID: 1, UserID: 2}}
	if !reflect.DeepEqual(fx.teams.addCalls, want) {
		t.Fatalf("addCalls = %+v, want %+v", fx.teams.addCalls, want)
	}
	if len(fx.dispatcher.published) != 1 || fx.dispatcher.published[0].Type != events.EventTeamMemberInvited {
		t.Fatalf("published events = %+v", fx.dispatcher.published)
	}
}

func TestInvite_DuplicateMembershipIsApplied(t *testing.T) {
	admin := &domain.User{ID: 2, Nickname: "carol"}
	fx := newFixture(admin)
	fx.sessions.active["alice"] = true
	fx.teams.byID[1] = &domain.Team{ID: 1, Name: "Avengers", AdminID: 2}
	fx.teams.errOnAdd = repository.ErrDuplicate

	if err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, "carol"); err != nil {
		t.Fatalf("duplicate invite should succeed, got %v", err)
	}
}

func TestInvite_StorageFailure(t *testing.T) {
	admin := &domain.User{ID: 2, Nickname: "carol"}
	fx := newFixture(admin)
	fx.sessions.active["alice"] = true
	fx.teams.byID[1] = &domain.Team{ID: 1, Name: "Avengers", AdminID: 2}
	fx.teams.errOnAdd = errors.New("connection reset")

	err := fx.svc.InviteNewTeamMember(context.Background(), "alice", 1, "carol")
	if code := wireCode(t, err); code != apperrors.CodeInternal {
		t.Fatalf("code = %d, want %d", code, apperrors.CodeInternal)
	}
}
