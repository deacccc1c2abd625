package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/ordering"
	"github.com/haneul/studydesk/internal/store"
)

func categoryItems(cats []models.Category) []ordering.Item {
	return ordering.Items(cats, func(c models.Category) ordering.Item {
		return ordering.Item{ID: c.ID, SortOrder: c.SortOrder, CreatedAt: c.CreatedAt}
	})
}

// Categories returns the user's categories in canonical order.
func (s *Service) Categories(ctx context.Context, user models.User) ([]models.Category, error) {
	return s.db.ListCategories(ctx, user.ID)
}

// CreateCategory appends a new category at the end of the user's list.
func (s *Service) CreateCategory(ctx context.Context, user models.User, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	existing, err := s.db.ListCategories(ctx, user.ID)
	if err != nil {
		return "", err
	}
	id, err := s.db.InsertCategory(ctx, user.ID, name, ordering.NextRank(categoryItems(existing)))
	if err != nil {
		return "", err
	}
	s.notify.PublishChange(store.TableCategories, user.ID)
	return id, nil
}

// RenameCategory updates a category's name in place.
func (s *Service) RenameCategory(ctx context.Context, user models.User, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if err := s.db.RenameCategory(ctx, id, user.ID, name); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableCategories, user.ID)
	return nil
}

// DeleteCategory removes a category; notes referencing it become
// uncategorized (both the relation rows and the legacy field are
// cleared by the store).
func (s *Service) DeleteCategory(ctx context.Context, user models.User, id string) error {
	if err := s.db.DeleteCategory(ctx, id, user.ID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableCategories, user.ID)
	s.notify.PublishChange(store.TableNotes, user.ID)
	return nil
}

// MoveCategory swaps the category at index with its neighbor in the
// given direction ("up" or "down"). Even on error the swap's first
// write may have landed; clients re-fetch to observe true state.
func (s *Service) MoveCategory(ctx context.Context, user models.User, index int, direction string) error {
	cats, err := s.db.ListCategories(ctx, user.ID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateCategoryRank(ctx, id, user.ID, rank)
	})
	items := categoryItems(cats)
	switch direction {
	case "up":
		err = engine.MoveUp(ctx, items, index)
	case "down":
		err = engine.MoveDown(ctx, items, index)
	default:
		return fmt.Errorf("%w: direction must be up or down", apperr.ErrValidation)
	}
	s.notify.PublishChange(store.TableCategories, user.ID)
	return err
}

// ReorderCategories moves the category at from to position to and
// rewrites every rank to its dense positional index.
func (s *Service) ReorderCategories(ctx context.Context, user models.User, from, to int) error {
	cats, err := s.db.ListCategories(ctx, user.ID)
	if err != nil {
		return err
	}
	engine := ordering.NewEngine(func(ctx context.Context, id string, rank int) error {
		return s.db.UpdateCategoryRank(ctx, id, user.ID, rank)
	})
	err = engine.Reorder(ctx, categoryItems(cats), from, to)
	s.notify.PublishChange(store.TableCategories, user.ID)
	return err
}
