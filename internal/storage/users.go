package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"spentify/internal/core"
)

const userColumns = `id, COALESCE(subject_id, ''), email, name, image_url, created_at, updated_at`

// UserBySubject implements ports.UserStore
func (r *SQLiteRepository) UserBySubject(ctx context.Context, subjectID string) (core.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE subject_id = ?`, subjectID)
}

// UserByEmail implements ports.UserStore
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// AttachSubject implements ports.UserStore
func (r *SQLiteRepository) AttachSubject(ctx context.Context, email string, p core.Principal) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET subject_id = ?, name = ?, image_url = ?, updated_at = ? WHERE email = ?`,
		p.SubjectID, p.DisplayName(), p.ImageURL, formatTimestamp(r.now()), email)
	if err != nil {
		return core.User{}, fmt.Errorf("attach subject: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.User{}, core.ErrNotFound
	}
	return r.UserByEmail(ctx, email)
}

// CreateUser implements ports.UserStore. A missing id is generated.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	var subject any
	if u.SubjectID != "" {
		subject = u.SubjectID
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, subject_id, email, name, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, subject, u.Email, u.Name, u.ImageURL, formatTimestamp(u.CreatedAt), formatTimestamp(u.UpdatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) queryUser(ctx context.Context, query string, arg any) (core.User, error) {
	var (
		u                    core.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.SubjectID, &u.Email, &u.Name, &u.ImageURL, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("query user: %w", err)
	}

	if u.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return core.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return core.User{}, fmt.Errorf("parse user updated_at: %w", err)
	}
	return u, nil
}
