package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneul/studydesk/internal/models"
)

// ListStudyLinks returns the user's links in fetch order
// (created_at ascending), which the projector preserves within buckets.
func (db *DB) ListStudyLinks(ctx context.Context, userID string) ([]models.StudyLink, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, title, url, description, group_id, subgroup_id, note_id, created_at
		FROM study_links
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list study links: %w", err)
	}
	defer rows.Close()

	var out []models.StudyLink
	for rows.Next() {
		var l models.StudyLink
		var desc, groupID, subgroupID, noteID sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.Title, &l.URL, &desc,
			&groupID, &subgroupID, &noteID, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Description = fromNull(desc)
		l.GroupID = fromNull(groupID)
		l.SubgroupID = fromNull(subgroupID)
		l.NoteID = fromNull(noteID)
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertStudyLink creates a link and returns its id.
func (db *DB) InsertStudyLink(ctx context.Context, l models.StudyLink) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO study_links (id, user_id, title, url, description, group_id, subgroup_id, note_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, l.UserID, l.Title, l.URL, nullable(l.Description),
		nullable(l.GroupID), nullable(l.SubgroupID), nullable(l.NoteID), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert study link: %w", err)
	}
	return id, nil
}

// UpdateStudyLink rewrites all mutable fields of a link.
func (db *DB) UpdateStudyLink(ctx context.Context, l models.StudyLink) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE study_links
		SET title = ?, url = ?, description = ?, group_id = ?, subgroup_id = ?, note_id = ?
		WHERE id = ? AND user_id = ?
	`, l.Title, l.URL, nullable(l.Description), nullable(l.GroupID),
		nullable(l.SubgroupID), nullable(l.NoteID), l.ID, l.UserID)
	if err != nil {
		return fmt.Errorf("store: update study link: %w", err)
	}
	return requireAffected(res)
}

// DeleteStudyLink removes a link.
func (db *DB) DeleteStudyLink(ctx context.Context, id, userID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM study_links WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete study link: %w", err)
	}
	return requireAffected(res)
}
