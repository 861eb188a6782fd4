package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"roomchat/internal/app/chat"
	"roomchat/internal/pkg/errs"
)

const messageColumns = `id, chat_id, user_id, content, date_send`

func collectMessages(rows pgx.Rows) ([]chat.Message, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (chat.Message, error) {
		var m chat.Message
		err := row.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Content, &m.SentAt)
		return m, err
	})
}

// CreateMessage commits a message and returns it with its assigned id and send time.
func (s *Store) CreateMessage(ctx context.Context, chatID, userID int64, content string) (*chat.Message, error) {
	var m chat.Message
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (chat_id, user_id, content) VALUES ($1, $2, $3) RETURNING `+messageColumns,
		chatID, userID, content,
	).Scan(&m.ID, &m.RoomID, &m.UserID, &m.Content, &m.SentAt)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return &m, nil
}

// ListMessagesFrom returns up to limit messages with id >= start in ascending id order.
func (s *Store) ListMessagesFrom(ctx context.Context, chatID, start int64, limit int) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id = $1 AND id >= $2 ORDER BY id ASC LIMIT $3`,
		chatID, start, limit,
	)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}

	messages, err := collectMessages(rows)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return messages, nil
}

// ListLatestMessages returns up to limit newest messages in descending id order.
func (s *Store) ListLatestMessages(ctx context.Context, chatID int64, limit int) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE chat_id = $1 ORDER BY id DESC LIMIT $2`,
		chatID, limit,
	)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}

	messages, err := collectMessages(rows)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return messages, nil
}
