package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admarket/backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, m *models.Message) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, contract_id, sender_id, content, attachment_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, m.ID, m.ContractID, m.SenderID, m.Content, m.AttachmentKey).Scan(&m.CreatedAt)
}

// ListByContract returns the contract's messages oldest first (chat order).
func (r *MessageRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contract_id, sender_id, content, attachment_key, is_read, created_at
		FROM messages WHERE contract_id = $1 ORDER BY created_at ASC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ContractID, &m.SenderID, &m.Content, &m.AttachmentKey, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// MarkRead marks every message on the contract not sent by reader as read.
func (r *MessageRepo) MarkRead(ctx context.Context, contractID, readerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE contract_id = $1 AND sender_id <> $2 AND NOT is_read
	`, contractID, readerID)
	return err
}
