package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneul/studydesk/internal/models"
)

// UpsertProfile records (or refreshes) a user's profile row. The
// approved flag applies only on first insert; re-upserts never reset an
// existing approval.
func (db *DB) UpsertProfile(ctx context.Context, u models.User, approved bool) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO profiles (id, email, is_anonymous, approved)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email        = excluded.email,
			is_anonymous = excluded.is_anonymous
	`, u.ID, u.Email, u.Anonymous, approved)
	if err != nil {
		return fmt.Errorf("store: upsert profile: %w", err)
	}
	return nil
}

// SetApproved flips the approval gate for a user.
func (db *DB) SetApproved(ctx context.Context, userID string, approved bool) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE profiles SET approved = ? WHERE id = ?
	`, approved, userID)
	if err != nil {
		return fmt.Errorf("store: set approved: %w", err)
	}
	return requireAffected(res)
}

// IsApproved reports whether the user has passed the approval gate.
// Unknown users are not approved.
func (db *DB) IsApproved(ctx context.Context, userID string) (bool, error) {
	var approved bool
	err := db.conn.QueryRowContext(ctx, `
		SELECT approved FROM profiles WHERE id = ?
	`, userID).Scan(&approved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: is approved: %w", err)
	}
	return approved, nil
}

// ListProjects returns the user's projects, newest first.
func (db *DB) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM projects
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertProject creates a project and returns its id.
func (db *DB) InsertProject(ctx context.Context, userID, name string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO projects (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`, id, userID, name, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert project: %w", err)
	}
	return id, nil
}
