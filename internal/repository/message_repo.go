package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wabot/internal/domain"
)

var ErrNotFound = errors.New("repository: not found")

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	UpdateStatus(ctx context.Context, waMessageID, status, statusTimestamp string) (bool, error)
	GetByWaID(ctx context.Context, waMessageID string) (domain.Message, error)
	ListByPhone(ctx context.Context, phone string, limit int) ([]domain.Message, error)
	Stats(ctx context.Context) (domain.MessageStats, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, wa_message_id, phone, direction, type, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.WaMessageID,
		message.Phone,
		message.Direction,
		message.Type,
		message.Body,
		message.Status,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) UpdateStatus(ctx context.Context, waMessageID, status, statusTimestamp string) (bool, error) {
	const query = `
		UPDATE messages
		SET status = $2, status_timestamp = $3
		WHERE wa_message_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, waMessageID, status, statusTimestamp)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgMessageRepository) GetByWaID(ctx context.Context, waMessageID string) (domain.Message, error) {
	const query = `
		SELECT id, wa_message_id, phone, direction, type, body, status, COALESCE(status_timestamp, ''), created_at
		FROM messages
		WHERE wa_message_id = $1
	`

	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, waMessageID).Scan(
		&msg.ID,
		&msg.WaMessageID,
		&msg.Phone,
		&msg.Direction,
		&msg.Type,
		&msg.Body,
		&msg.Status,
		&msg.StatusTimestamp,
		&msg.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, ErrNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (r *PgMessageRepository) ListByPhone(ctx context.Context, phone string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, wa_message_id, phone, direction, type, body, status, COALESCE(status_timestamp, ''), created_at
		FROM messages
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, query, phone, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.WaMessageID,
			&msg.Phone,
			&msg.Direction,
			&msg.Type,
			&msg.Body,
			&msg.Status,
			&msg.StatusTimestamp,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) Stats(ctx context.Context) (domain.MessageStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE direction = 'incoming'),
			COUNT(*) FILTER (WHERE direction = 'outgoing')
		FROM messages
	`

	var stats domain.MessageStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Incoming, &stats.Outgoing)
	if err != nil {
		return domain.MessageStats{}, err
	}
	return stats, nil
}
