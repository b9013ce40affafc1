package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/team-service/internal/domain"
)

// UserRepository defines read access to user records. Users are created by
// the registration service and are never written here.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByNickname(ctx context.Context, nickname string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	const query = `
        SELECT id, nickname, created_at
        FROM users WHERE id=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Nickname,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	const query = `
        SELECT id, nickname, created_at
        FROM users WHERE nickname=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, nickname).Scan(
		&user.ID,
		&user.Nickname,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
