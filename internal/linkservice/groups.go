package linkservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/ordering"
	"github.com/haneul/studydesk/internal/store"
)

func groupItems(groups []models.LinkGroup) []ordering.Item {
	return ordering.Items(groups, func(g models.LinkGroup) ordering.Item {
		return ordering.Item{ID: g.ID, SortOrder: g.SortOrder, CreatedAt: g.CreatedAt}
	})
}

func subgroupItems(subs []models.LinkSubgroup) []ordering.Item {
	return ordering.Items(subs, func(sg models.LinkSubgroup) ordering.Item {
		return ordering.Item{ID: sg.ID, SortOrder: sg.SortOrder, CreatedAt: sg.CreatedAt}
	})
}

// RenameGroup updates a group's name in place.
func (s *Service) RenameGroup(ctx context.Context, user models.User, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if err := s.db.RenameLinkGroup(ctx, id, user.ID, name); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableLinkGroups, user.ID)
	return nil
}

// DeleteGroup removes a group. Links pointing at it become ungrouped
// and its subgroups are deleted by the store.
func (s *Service) DeleteGroup(ctx context.Context, user models.User, id string) error {
	if err := s.db.DeleteLinkGroup(ctx, id, user.ID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableLinkGroups, user.ID)
	s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	s.notify.PublishChange(store.TableStudyLinks, user.ID)
	return nil
}

// MoveGroup swaps the group at index with its neighbor in the given
// direction. Either write of the swap can land without the other;
// clients re-fetch to observe true state.
func (s *Service) MoveGroup(ctx context.Context, user models.User, index int, direction string) error {
	groups, err := s.db.ListLinkGroups(ctx, user.ID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateLinkGroupRank(ctx, id, user.ID, rank)
	})
	items := groupItems(groups)
	switch direction {
	case "up":
		err = engine.MoveUp(ctx, items, index)
	case "down":
		err = engine.MoveDown(ctx, items, index)
	default:
		return fmt.Errorf("%w: direction must be up or down", apperr.ErrValidation)
	}
	s.notify.PublishChange(store.TableLinkGroups, user.ID)
	return err
}

// ReorderGroups moves the group at from to position to and rewrites
// every rank to its dense positional index.
func (s *Service) ReorderGroups(ctx context.Context, user models.User, from, to int) error {
	groups, err := s.db.ListLinkGroups(ctx, user.ID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateLinkGroupRank(ctx, id, user.ID, rank)
	})
	err = engine.Reorder(ctx, groupItems(groups), from, to)
	s.notify.PublishChange(store.TableLinkGroups, user.ID)
	return err
}

// RenameSubgroup updates a subgroup's name in place.
func (s *Service) RenameSubgroup(ctx context.Context, user models.User, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if err := s.db.RenameLinkSubgroup(ctx, id, user.ID, name); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	return nil
}

// DeleteSubgroup removes a subgroup; its links stay in the parent
// group without a subgroup.
func (s *Service) DeleteSubgroup(ctx context.Context, user models.User, id string) error {
	if err := s.db.DeleteLinkSubgroup(ctx, id, user.ID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	s.notify.PublishChange(store.TableStudyLinks, user.ID)
	return nil
}

// siblingSubgroups returns the subgroups sharing the given parent
// group, in canonical order. Move and reorder operate on this slice,
// never on the full per-user list.
func (s *Service) siblingSubgroups(ctx context.Context, user models.User, groupID string) ([]models.LinkSubgroup, error) {
	all, err := s.db.ListLinkSubgroups(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	siblings := make([]models.LinkSubgroup, 0, len(all))
	for _, sg := range all {
		if sg.GroupID == groupID {
			siblings = append(siblings, sg)
		}
	}
	return siblings, nil
}

// MoveSubgroup swaps the subgroup at index with its neighbor among the
// siblings of groupID.
func (s *Service) MoveSubgroup(ctx context.Context, user models.User, groupID string, index int, direction string) error {
	siblings, err := s.siblingSubgroups(ctx, user, groupID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateLinkSubgroupRank(ctx, id, user.ID, rank)
	})
	items := subgroupItems(siblings)
	switch direction {
	case "up":
		err = engine.MoveUp(ctx, items, index)
	case "down":
		err = engine.MoveDown(ctx, items, index)
	default:
		return fmt.Errorf("%w: direction must be up or down", apperr.ErrValidation)
	}
	s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	return err
}

// ReorderSubgroups reorders the siblings of groupID, rewriting each
// sibling's rank to its dense positional index.
func (s *Service) ReorderSubgroups(ctx context.Context, user models.User, groupID string, from, to int) error {
	siblings, err := s.siblingSubgroups(ctx, user, groupID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateLinkSubgroupRank(ctx, id, user.ID, rank)
	})
	err = engine.Reorder(ctx, subgroupItems(siblings), from, to)
	s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	return err
}
