package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"roomchat/internal/app/user"
	"roomchat/internal/pkg/errs"
)

const userColumns = `id, username, passhash, first_name, last_name, date_created`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PassHash, &u.FirstName, &u.LastName, &u.DateCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account. A taken username yields ErrUserAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, username, passHash string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, passhash) VALUES ($1, $2) RETURNING `+userColumns,
		username, passHash,
	)

	u, err := scanUser(row)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, errs.NewError(errs.ErrUserAlreadyExists, err)
		}
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return u, nil
}

// GetUserByName returns the user or nil when absent.
func (s *Store) GetUserByName(ctx context.Context, username string) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetUserByID returns the user or nil when absent.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*user.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errs.NewError(errs.ErrCrud, err)
	}
	return u, nil
}

// UpdateUser applies the non-nil fields of params and returns the updated row.
func (s *Store) UpdateUser(ctx context.Context, id int64, params user.UpdateParams) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET
			username   = COALESCE($2, username),
			first_name = COALESCE($3, first_name),
			last_name  = COALESCE($4, last_name)
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, params.Username, params.FirstName, params.LastName,
	)

	u, err := scanUser(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, errs.NewError(errs.ErrUserNotFound)
		case IsUniqueViolation(err):
			return nil, errs.NewError(errs.ErrUserAlreadyExists, err)
		default:
			return nil, errs.NewError(errs.ErrCrud, err)
		}
	}
	return u, nil
}
