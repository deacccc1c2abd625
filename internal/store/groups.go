package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/haneul/studydesk/internal/models"
)

// ListLinkGroups returns the user's link groups in canonical order.
func (db *DB) ListLinkGroups(ctx context.Context, userID string) ([]models.LinkGroup, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, name, sort_order, created_at
		FROM link_groups
		WHERE user_id = ?
		ORDER BY sort_order ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list link groups: %w", err)
	}
	defer rows.Close()

	var out []models.LinkGroup
	for rows.Next() {
		var g models.LinkGroup
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.SortOrder, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// InsertLinkGroup creates a group and returns its id.
func (db *DB) InsertLinkGroup(ctx context.Context, userID, name string, sortOrder int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO link_groups (id, user_id, name, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, name, sortOrder, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert link group: %w", err)
	}
	return id, nil
}

// RenameLinkGroup updates the group name in place.
func (db *DB) RenameLinkGroup(ctx context.Context, id, userID, name string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE link_groups SET name = ? WHERE id = ? AND user_id = ?
	`, name, id, userID)
	if err != nil {
		return fmt.Errorf("store: rename link group: %w", err)
	}
	return requireAffected(res)
}

// UpdateLinkGroupRank writes a single group's sort_order.
func (db *DB) UpdateLinkGroupRank(ctx context.Context, id, userID string, rank int) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE link_groups SET sort_order = ? WHERE id = ? AND user_id = ?
	`, rank, id, userID)
	if err != nil {
		return fmt.Errorf("store: update link group rank: %w", err)
	}
	return requireAffected(res)
}

// DeleteLinkGroup removes a group. Links belonging to the group (and to
// its subgroups) are detached, not deleted; the subgroup rows themselves
// are removed since a subgroup cannot exist without its group.
func (db *DB) DeleteLinkGroup(ctx context.Context, id, userID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM link_groups WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete link group: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, `
		UPDATE study_links SET group_id = NULL, subgroup_id = NULL
		WHERE group_id = ? AND user_id = ?
	`, id, userID); err != nil {
		return fmt.Errorf("store: detach group links: %w", err)
	}
	if _, err := db.conn.ExecContext(ctx, `
		DELETE FROM link_subgroups WHERE group_id = ? AND user_id = ?
	`, id, userID); err != nil {
		return fmt.Errorf("store: delete orphan subgroups: %w", err)
	}
	return nil
}

// ListLinkSubgroups returns the user's subgroups across all groups in
// canonical order. Callers filter by group id when resolving names.
func (db *DB) ListLinkSubgroups(ctx context.Context, userID string) ([]models.LinkSubgroup, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, group_id, user_id, name, sort_order, created_at
		FROM link_subgroups
		WHERE user_id = ?
		ORDER BY sort_order ASC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list link subgroups: %w", err)
	}
	defer rows.Close()

	var out []models.LinkSubgroup
	for rows.Next() {
		var sg models.LinkSubgroup
		if err := rows.Scan(&sg.ID, &sg.GroupID, &sg.UserID, &sg.Name, &sg.SortOrder, &sg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// InsertLinkSubgroup creates a subgroup inside groupID and returns its id.
func (db *DB) InsertLinkSubgroup(ctx context.Context, groupID, userID, name string, sortOrder int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO link_subgroups (id, group_id, user_id, name, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, groupID, userID, name, sortOrder, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert link subgroup: %w", err)
	}
	return id, nil
}

// RenameLinkSubgroup updates the subgroup name in place.
func (db *DB) RenameLinkSubgroup(ctx context.Context, id, userID, name string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE link_subgroups SET name = ? WHERE id = ? AND user_id = ?
	`, name, id, userID)
	if err != nil {
		return fmt.Errorf("store: rename link subgroup: %w", err)
	}
	return requireAffected(res)
}

// UpdateLinkSubgroupRank writes a single subgroup's sort_order.
func (db *DB) UpdateLinkSubgroupRank(ctx context.Context, id, userID string, rank int) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE link_subgroups SET sort_order = ? WHERE id = ? AND user_id = ?
	`, rank, id, userID)
	if err != nil {
		return fmt.Errorf("store: update link subgroup rank: %w", err)
	}
	return requireAffected(res)
}

// DeleteLinkSubgroup removes a subgroup and detaches its links.
func (db *DB) DeleteLinkSubgroup(ctx context.Context, id, userID string) error {
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM link_subgroups WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete link subgroup: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := db.conn.ExecContext(ctx, `
		UPDATE study_links SET subgroup_id = NULL WHERE subgroup_id = ? AND user_id = ?
	`, id, userID); err != nil {
		return fmt.Errorf("store: detach subgroup links: %w", err)
	}
	return nil
}
