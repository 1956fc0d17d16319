package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository"
)

type MessageRepository struct {
	pool poolIface
}

func NewMessageRepository(pool poolIface) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, m.ID, m.UserID, m.Content).Scan(&m.CreatedAt)
	if err != nil {
		return oops.Code("MESSAGE_CREATE_FAILED").With("user_id", m.UserID).Wrap(err)
	}
	return nil
}

// ListByUser returns the inbox newest first.
func (r *MessageRepository) ListByUser(ctx context.Context, userID string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, content, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	defer rows.Close()

	out := make([]entity.Message, 0)
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, oops.Code("MESSAGE_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MESSAGE_LIST_FAILED").With("operation", "iterate").Wrap(err)
	}
	return out, nil
}

var _ repository.MessageRepository = (*MessageRepository)(nil)
