package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/team-service/internal/domain"
)

// ErrDuplicate reports a unique-constraint violation (SQLSTATE 23505).
// Callers decide whether it is a conflict or an idempotent no-op.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

// TeamRepository manages persistence for teams and their membership edges.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Team, error)
	GetByName(ctx context.Context, name string) (*domain.Team, error)
	ListMembers(ctx context.Context, teamID int) ([]domain.Member, error)
	ListTeamProjects(ctx context.Context, teamID int) ([]domain.TeamProject, error)
	CreateTeamWithFounder(ctx context.Context, name string, adminID int) (*domain.Team, error)
	AddMember(ctx context.Context, teamID, userID int) error
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) GetByID(ctx context.Context, id int) (*domain.Team, error) {
	const query = `
        SELECT id, name, admin_id, created_at
        FROM teams WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	const query = `
        SELECT id, name, admin_id, created_at
        FROM teams WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *teamRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Team, error) {
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&team.ID,
		&team.Name,
		&team.AdminID,
		&team.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID int) ([]domain.Member, error) {
	const query = `
        SELECT u.id, u.nickname
        FROM users u
        JOIN cooperations c ON c.user_id = u.id
        WHERE c.team_id = $1
        ORDER BY u.id`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(&member.ID, &member.Nickname); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}

func (r *teamRepository) ListTeamProjects(ctx context.Context, teamID int) ([]domain.TeamProject, error) {
	const query = `
        SELECT p.id, p.name, u.nickname
        FROM projects p
        JOIN users u ON u.id = p.admin_id
        WHERE p.team_id = $1
        ORDER BY p.id`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamProject
	for rows.Next() {
		var project domain.TeamProject
		if err := rows.Scan(&project.ID, &project.Name, &project.AdminNickname); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}

// CreateTeamWithFounder inserts the team row and the founding cooperation
// edge in one transaction. Either both rows land or neither does.
func (r *teamRepository) CreateTeamWithFounder(ctx context.Context, name string, adminID int) (*domain.Team, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertTeam = `
        INSERT INTO teams (name, admin_id)
        VALUES ($1, $2)
        RETURNING id, created_at`
	team := domain.Team{Name: name, AdminID: adminID}
	if err := tx.QueryRow(ctx, insertTeam, name, adminID).Scan(&team.ID, &team.CreatedAt); err != nil {
		return nil, mapDuplicate(err)
	}

	const insertCooperation = `
        INSERT INTO cooperations (team_id, user_id)
        VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, insertCooperation, team.ID, adminID); err != nil {
		return nil, mapDuplicate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &team, nil
}

// AddMember inserts a single cooperation edge. A duplicate edge surfaces as
// ErrDuplicate so the caller can treat the invite as already applied.
func (r *teamRepository) AddMember(ctx context.Context, teamID, userID int) error {
	const query = `
        INSERT INTO cooperations (team_id, user_id)
        VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, teamID, userID); err != nil {
		return mapDuplicate(err)
	}
	return nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
