package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"roomchat/internal/app/chat"
	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

// CreateChat inserts a chat and makes creatorID its first member in one transaction.
func (s *Store) CreateChat(ctx context.Context, name string, creatorID int64) (*chat.Chat, error) {
	var c chat.Chat

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO chats (name) VALUES ($1) RETURNING id, name`, name,
		).Scan(&c.ID, &c.Name); err != nil {
			return fmt.Errorf("insert chat: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_chats (user_id, chat_id) VALUES ($1, $2)`, creatorID, c.ID,
		); err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}

	return &c, nil
}

// AddUserToChat adds a membership. Adding an existing member is a no-op;
// an unknown user yields ErrUserNotFound.
func (s *Store) AddUserToChat(ctx context.Context, chatID, userID int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_chats (user_id, chat_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, chatID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return errs.NewError(errs.ErrUserNotFound, err)
		}
		return errs.NewError(errs.ErrCrud, err)
	}
	return nil
}

// GetChat returns the chat or nil when absent.
func (s *Store) GetChat(ctx context.Context, id int64) (*chat.Chat, error) {
	var c chat.Chat
	err := s.pool.QueryRow(ctx, `SELECT id, name FROM chats WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return &c, nil
}

// IsMember reports whether userID belongs to chatID. A missing chat has no members.
func (s *Store) IsMember(ctx context.Context, userID, chatID int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_chats WHERE user_id = $1 AND chat_id = $2)`,
		userID, chatID,
	).Scan(&ok)
	if err != nil {
		return false, errs.NewError(errs.ErrCrud, err)
	}
	return ok, nil
}

// ListUserChats returns the chats userID is a member of, ordered by id.
func (s *Store) ListUserChats(ctx context.Context, userID int64) ([]chat.Chat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.name
		   FROM chats c
		   JOIN user_chats uc ON uc.chat_id = c.id
		  WHERE uc.user_id = $1
		  ORDER BY c.id`,
		userID,
	)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}

	chats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (chat.Chat, error) {
		var c chat.Chat
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return chats, nil
}

// ListChatUsers returns the members of chatID, ordered by id.
func (s *Store) ListChatUsers(ctx context.Context, chatID int64) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.username, u.passhash, u.first_name, u.last_name, u.date_created
		   FROM users u
		   JOIN user_chats uc ON uc.user_id = u.id
		  WHERE uc.chat_id = $1
		  ORDER BY u.id`,
		chatID,
	)
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return user.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return users, nil
}
