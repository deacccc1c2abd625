package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
)

const noteColumns = `id, user_id, title, category_id, is_favorite, file_path, project_id, status, created_at`

func scanNote(sc interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	var categoryID, filePath, projectID sql.NullString
	err := sc.Scan(&n.ID, &n.UserID, &n.Title, &categoryID, &n.IsFavorite,
		&filePath, &projectID, &n.Status, &n.CreatedAt)
	if err != nil {
		return n, err
	}
	n.CategoryID = fromNull(categoryID)
	n.FilePath = fromNull(filePath)
	n.ProjectID = fromNull(projectID)
	return n, nil
}

// ListNotes returns the user's notes, newest first.
func (db *DB) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM notes
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNote fetches a note by id regardless of owner. Callers decide
// whether a user mismatch is forbidden; the row itself must not leak.
func (db *DB) GetNote(ctx context.Context, id string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM notes WHERE id = ?
	`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return &n, nil
}

// InsertNote creates a note and returns its id.
func (db *DB) InsertNote(ctx context.Context, n models.Note) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, category_id, is_favorite, file_path, project_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, n.UserID, n.Title, nullable(n.CategoryID), n.IsFavorite,
		nullable(n.FilePath), nullable(n.ProjectID), n.Status, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert note: %w", err)
	}
	return id, nil
}

// UpdateNoteLegacyCategory writes the legacy single-valued category
// field. An empty categoryID clears it to NULL.
func (db *DB) UpdateNoteLegacyCategory(ctx context.Context, noteID, userID, categoryID string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE notes SET category_id = ? WHERE id = ? AND user_id = ?
	`, nullable(categoryID), noteID, userID)
	if err != nil {
		return fmt.Errorf("store: update legacy category: %w", err)
	}
	return requireAffected(res)
}

// UpdateNoteFavorite toggles the favorite flag.
func (db *DB) UpdateNoteFavorite(ctx context.Context, noteID, userID string, favorite bool) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE notes SET is_favorite = ? WHERE id = ? AND user_id = ?
	`, favorite, noteID, userID)
	if err != nil {
		return fmt.Errorf("store: update favorite: %w", err)
	}
	return requireAffected(res)
}

// DeleteNote removes the note row and detaches its relation rows and
// any study links pointing at it.
func (db *DB) DeleteNote(ctx context.Context, noteID, userID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM notes WHERE id = ? AND user_id = ?
	`, noteID, userID)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	_, _ = db.conn.ExecContext(ctx, `DELETE FROM note_categories WHERE note_id = ?`, noteID)
	_, _ = db.conn.ExecContext(ctx, `UPDATE study_links SET note_id = NULL WHERE note_id = ?`, noteID)
	return nil
}

// ReplaceNoteCategories rewrites a note's relation rows: delete all,
// then insert one row per id. Not diff-based; duplicates in ids are
// inserted as given.
func (db *DB) ReplaceNoteCategories(ctx context.Context, noteID string, categoryIDs []string) error {
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM note_categories WHERE note_id = ?
	`, noteID); err != nil {
		return fmt.Errorf("store: clear note categories: %w", err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	stmt, err := db.conn.PrepareContext(ctx, `
		INSERT INTO note_categories (note_id, category_id) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: prepare relation insert: %w", err)
	}
	defer stmt.Close()
	for _, cid := range categoryIDs {
		if _, err := stmt.ExecContext(ctx, noteID, cid); err != nil {
			return fmt.Errorf("store: insert relation row: %w", err)
		}
	}
	return nil
}

// ListNoteCategories returns every relation row for the user's notes.
func (db *DB) ListNoteCategories(ctx context.Context, userID string) ([]models.NoteCategory, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT nc.note_id, nc.category_id
		FROM note_categories nc
		JOIN notes n ON n.id = nc.note_id
		WHERE n.user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list note categories: %w", err)
	}
	defer rows.Close()

	var out []models.NoteCategory
	for rows.Next() {
		var nc models.NoteCategory
		if err := rows.Scan(&nc.NoteID, &nc.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}
