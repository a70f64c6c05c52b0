// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/codetrack/internal/platform/database/schema"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/pointer"
)

var (
	ua = schema.UserAccount
	ur = schema.UserAccountRole

	// selectUsers aggregates the role rows into one array per account.
	selectUsers = fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s, a.%s,
		       COALESCE(ARRAY_AGG(r.%s ORDER BY r.%s) FILTER (WHERE r.%s IS NOT NULL), '{}')
		FROM %s a
		LEFT JOIN %s r ON r.%s = a.%s`,
		ua.ID, ua.Username, ua.Email, ua.PasswordHash, ua.IsOAuth2User,
		ua.IsActive, ua.LastLoginAt, ua.CreatedAt, ua.UpdatedAt,
		ur.Role, ur.Role, ur.Role,
		ua.Table, ur.Table, ur.AccountID, ua.ID,
	)

	groupUsers = fmt.Sprintf(` GROUP BY a.%s`, ua.ID)
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	user := &User{}
	var passwordHash *string
	var roles []string

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &passwordHash, &user.IsOAuth2User,
		&user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &roles,
	)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = pointer.Val(passwordHash)
	user.Roles = make([]sec.UserRole, 0, len(roles))
	for _, raw := range roles {
		if role, ok := sec.ParseRole(raw); ok {
			user.Roles = append(user.Roles, role)
		}
	}
	return user, nil
}

func (repository *PostgresUserRepository) findOne(context context.Context, action, where string, arg any) (*User, error) {
	query := selectUsers + ` WHERE ` + where + groupUsers

	user, err := scanUser(repository.pool.QueryRow(context, query, arg))
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}

// FindByID returns the account with the given ID.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, "find_user_by_id", fmt.Sprintf("a.%s = $1", ua.ID), id)
}

// FindByUsername matches the username case-insensitively.
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, "find_user_by_username", fmt.Sprintf("LOWER(a.%s) = LOWER($1)", ua.Username), username)
}

// FindByEmail matches the email case-insensitively.
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, "find_user_by_email", fmt.Sprintf("LOWER(a.%s) = LOWER($1)", ua.Email), email)
}

func (repository *PostgresUserRepository) exists(context context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE LOWER(%s) = LOWER($1))`, ua.Table, column)

	var found bool
	if err := repository.pool.QueryRow(context, query, value).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "user_exists")
	}
	return found, nil
}

// ExistsByUsername reports whether the username is taken.
func (repository *PostgresUserRepository) ExistsByUsername(context context.Context, username string) (bool, error) {
	return repository.exists(context, ua.Username, username)
}

// ExistsByEmail reports whether the email is registered.
func (repository *PostgresUserRepository) ExistsByEmail(context context.Context, email string) (bool, error) {
	return repository.exists(context, ua.Email, email)
}

/*
Create inserts the account row and its role rows in one transaction.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: dberr.ErrConflict or validation errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	user.touch(time.Now().UTC())
	if err := user.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ua.Table,
		ua.ID, ua.Username, ua.Email, ua.PasswordHash, ua.IsOAuth2User,
		ua.IsActive, ua.LastLoginAt, ua.CreatedAt, ua.UpdatedAt,
	)

	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(context, query,
			user.ID,
			user.Username,
			user.Email,
			pointer.NonEmpty(user.PasswordHash),
			user.IsOAuth2User,
			user.IsActive,
			user.LastLoginAt,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertRoles(context, tx, user)
	})
	return dberr.Wrap(err, "create_user")
}

/*
Update saves the mutable account fields and replaces the role set.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: dberr.ErrNotFound, dberr.ErrConflict or validation errors
*/
func (repository *PostgresUserRepository) Update(context context.Context, user *User) error {
	user.touch(time.Now().UTC())
	if err := user.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8
		WHERE %s = $1`,
		ua.Table,
		ua.Username, ua.Email, ua.PasswordHash, ua.IsOAuth2User, ua.IsActive, ua.LastLoginAt, ua.UpdatedAt,
		ua.ID,
	)
	clearRoles := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, ur.Table, ur.AccountID)

	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(context, query,
			user.ID,
			user.Username,
			user.Email,
			pointer.NonEmpty(user.PasswordHash),
			user.IsOAuth2User,
			user.IsActive,
			user.LastLoginAt,
			user.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if _, err := tx.Exec(context, clearRoles, user.ID); err != nil {
			return err
		}
		return insertRoles(context, tx, user)
	})
	return dberr.Wrap(err, "update_user")
}

func insertRoles(context context.Context, tx pgx.Tx, user *User) error {
	if len(user.Roles) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, UNNEST($2::text[])
		ON CONFLICT DO NOTHING`,
		ur.Table, ur.AccountID, ur.Role,
	)
	_, err := tx.Exec(context, query, user.ID, user.RoleNames())
	return err
}

// Delete removes the account; role rows cascade.
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, ua.Table, ua.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_user")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// List returns one page of accounts, oldest first.
func (repository *PostgresUserRepository) List(context context.Context, params pagination.Params) ([]*User, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, ua.Table)
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_users")
	}

	query := selectUsers + groupUsers + fmt.Sprintf(` ORDER BY a.%s ASC, a.%s ASC LIMIT $1 OFFSET $2`, ua.CreatedAt, ua.ID)
	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "list_users")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_users")
	}
	return users, total, nil
}
