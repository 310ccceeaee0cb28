package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fernlight/passage/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, username, email, first_name, last_name, password_hash,
	roles, security_stamp, is_blocked, email_confirmed, failed_logins,
	lockout_until, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u            domain.User
		firstName    sql.NullString
		lastName     sql.NullString
		roles        string
		lockoutUntil sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &firstName, &lastName, &u.PasswordHash,
		&roles, &u.SecurityStamp, &u.IsBlocked, &u.EmailConfirmed,
		&u.FailedLogins, &lockoutUntil, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.FirstName = mapNullStringPtr(firstName)
	u.LastName = mapNullStringPtr(lastName)
	u.Roles = splitAndFilter(roles)
	u.LockoutUntil = mapNullTimePtr(lockoutUntil)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (
			id, username, email, first_name, last_name, password_hash,
			roles, security_stamp, is_blocked, email_confirmed, failed_logins,
			lockout_until, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email,
		mapOptionalString(u.FirstName), mapOptionalString(u.LastName),
		u.PasswordHash, strings.Join(u.Roles, " "), u.SecurityStamp,
		u.IsBlocked, u.EmailConfirmed, u.FailedLogins,
		mapOptionalTime(u.LockoutUntil), u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash, securityStamp string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET password_hash = ?, security_stamp = ?, updated_at = ?
		 WHERE id = ?`,
		newHash, securityStamp, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) RecordFailedLogin(ctx context.Context, userID string, lockoutUntil *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET failed_logins = failed_logins + 1,
		     lockout_until = COALESCE(?, lockout_until),
		     updated_at = ?
		 WHERE id = ?`,
		mapOptionalTime(lockoutUntil), time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) ResetFailedLogins(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET failed_logins = 0, lockout_until = NULL, updated_at = ?
		 WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_blocked = ?, updated_at = ? WHERE id = ?`,
		blocked, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) SetEmailConfirmed(ctx context.Context, userID string, confirmed bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_confirmed = ?, updated_at = ? WHERE id = ?`,
		confirmed, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
