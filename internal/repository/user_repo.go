package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wabot/internal/domain"
)

type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) error
	GetByPhone(ctx context.Context, phone string) (domain.User, error)
}

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Upsert creates the user on first contact and refreshes profile name and
// last_seen_at afterwards.
func (r *PgUserRepository) Upsert(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, phone, profile_name, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (phone) DO UPDATE
		SET profile_name = COALESCE(NULLIF(EXCLUDED.profile_name, ''), users.profile_name),
		    last_seen_at = EXCLUDED.last_seen_at
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Phone,
		user.ProfileName,
		user.LastSeenAt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	const query = `
		SELECT id, phone, COALESCE(profile_name, ''), last_seen_at, created_at
		FROM users
		WHERE phone = $1
	`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&user.ID,
		&user.Phone,
		&user.ProfileName,
		&user.LastSeenAt,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
