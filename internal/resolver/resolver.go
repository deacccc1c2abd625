// Package resolver implements idempotent find-or-create resolution of
// free-text group and subgroup names.
//
// Resolution is client-side: the caller passes its current in-memory
// collection, the resolver matches against it and only inserts on a
// miss. Two concurrent resolutions of the same new name can therefore
// both miss and create duplicate rows — an accepted limitation without
// a uniqueness constraint at the store.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/ordering"
)

// Store is the subset of store operations resolution needs.
type Store interface {
	ListLinkGroups(ctx context.Context, userID string) ([]models.LinkGroup, error)
	InsertLinkGroup(ctx context.Context, userID, name string, sortOrder int) (string, error)
	ListLinkSubgroups(ctx context.Context, userID string) ([]models.LinkSubgroup, error)
	InsertLinkSubgroup(ctx context.Context, groupID, userID, name string, sortOrder int) (string, error)
}

// Resolver resolves names against a Store.
type Resolver struct {
	db Store
}

// New creates a resolver backed by db.
func New(db Store) *Resolver {
	return &Resolver{db: db}
}

// ResolveGroup returns the id of the group named rawName, creating it
// when absent. An empty trimmed name resolves to "" without any write.
// The returned slice is the caller's collection, refreshed from the
// store after a create so server-assigned fields are visible.
func (r *Resolver) ResolveGroup(ctx context.Context, groups []models.LinkGroup, userID, rawName string) (string, []models.LinkGroup, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", groups, nil
	}
	for _, g := range groups {
		if g.Name == name {
			return g.ID, groups, nil
		}
	}

	rank := ordering.NextRank(ordering.Items(groups, func(g models.LinkGroup) ordering.Item {
		return ordering.Item{ID: g.ID, SortOrder: g.SortOrder, CreatedAt: g.CreatedAt}
	}))
	id, err := r.db.InsertLinkGroup(ctx, userID, name, rank)
	if err != nil {
		return "", groups, fmt.Errorf("resolver: create group %q: %w", name, err)
	}
	refreshed, err := r.db.ListLinkGroups(ctx, userID)
	if err != nil {
		return id, groups, fmt.Errorf("resolver: refresh groups: %w", err)
	}
	return id, refreshed, nil
}

// ResolveSubgroup is the subgroup form of ResolveGroup, scoped to an
// already-resolved parent group. Matching and rank computation only
// consider subgroups of groupID.
func (r *Resolver) ResolveSubgroup(ctx context.Context, subgroups []models.LinkSubgroup, userID, groupID, rawName string) (string, []models.LinkSubgroup, error) {
	name := strings.TrimSpace(rawName)
	if name == "" || groupID == "" {
		return "", subgroups, nil
	}
	var scope []models.LinkSubgroup
	for _, sg := range subgroups {
		if sg.GroupID == groupID {
			if sg.Name == name {
				return sg.ID, subgroups, nil
			}
			scope = append(scope, sg)
		}
	}

	rank := ordering.NextRank(ordering.Items(scope, func(sg models.LinkSubgroup) ordering.Item {
		return ordering.Item{ID: sg.ID, SortOrder: sg.SortOrder, CreatedAt: sg.CreatedAt}
	}))
	id, err := r.db.InsertLinkSubgroup(ctx, groupID, userID, name, rank)
	if err != nil {
		return "", subgroups, fmt.Errorf("resolver: create subgroup %q: %w", name, err)
	}
	refreshed, err := r.db.ListLinkSubgroups(ctx, userID)
	if err != nil {
		return id, subgroups, fmt.Errorf("resolver: refresh subgroups: %w", err)
	}
	return id, refreshed, nil
}
