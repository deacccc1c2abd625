package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
)

// ListCategories returns the user's categories in canonical order
// (sort_order ascending, created_at ascending).
func (db *DB) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, name, sort_order, created_at
		FROM categories
		WHERE user_id = ?
		ORDER BY sort_order ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertCategory creates a new category and returns its id.
func (db *DB) InsertCategory(ctx context.Context, userID, name string, sortOrder int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, name, sortOrder, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert category: %w", err)
	}
	return id, nil
}

// RenameCategory updates the category name in place.
func (db *DB) RenameCategory(ctx context.Context, id, userID, name string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE categories SET name = ? WHERE id = ? AND user_id = ?
	`, name, id, userID)
	if err != nil {
		return fmt.Errorf("store: rename category: %w", err)
	}
	return requireAffected(res)
}

// UpdateCategoryRank writes a single category's sort_order. This is one
// independent write of the ordering engine's multi-write sequences; it is
// deliberately not part of any larger transaction.
func (db *DB) UpdateCategoryRank(ctx context.Context, id, userID string, rank int) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE categories SET sort_order = ? WHERE id = ? AND user_id = ?
	`, rank, id, userID)
	if err != nil {
		return fmt.Errorf("store: update category rank: %w", err)
	}
	return requireAffected(res)
}

// DeleteCategory removes a category and detaches every note that
// referenced it, through the relation table or the legacy field. Notes
// are never left pointing at a dangling id.
func (db *DB) DeleteCategory(ctx context.Context, id, userID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM note_categories WHERE category_id = ?
	`, id); err != nil {
		return fmt.Errorf("store: detach relation rows: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, `
		UPDATE notes SET category_id = NULL WHERE category_id = ? AND user_id = ?
	`, id, userID); err != nil {
		return fmt.Errorf("store: detach legacy field: %w", err)
	}
	return nil
}

func requireAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
