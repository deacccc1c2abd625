// Package ordering maintains the total order of ranked sibling entities
// (categories, link groups, link subgroups). Siblings carry an integer
// sort_order; the canonical display order is sort_order ascending with
// created_at ascending as the tie-break.
//
// Multi-write operations here are intentionally not transactional: each
// rank write is persisted independently, and a failure partway through
// leaves earlier writes in place. Callers surface the error and re-fetch
// to resynchronize. Per-user sibling counts are small, so the full-array
// rewrite on drag-and-drop stays cheap.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/haneul/studydesk/internal/apperr"
)

// Item is the minimal view of a ranked sibling.
type Item struct {
	ID        string
	SortOrder int
	CreatedAt time.Time
}

// RankWriter persists one sibling's rank. Implementations scope the
// write by both entity id and user id.
type RankWriter func(ctx context.Context, id string, rank int) error

// Items projects an arbitrary slice into ordering items.
func Items[T any](xs []T, f func(T) Item) []Item {
	out := make([]Item, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// Less is the canonical sibling comparator.
func Less(a, b Item) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Sort sorts siblings into canonical order in place. The sort is stable
// so equal (rank, created_at) pairs keep their fetch order.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return Less(items[i], items[j]) })
}

// NextRank returns the rank for a new sibling appended to the scope:
// max(existing sort_order) + 1, or 0 when the scope is empty.
func NextRank(items []Item) int {
	next := 0
	for _, it := range items {
		if it.SortOrder >= next {
			next = it.SortOrder + 1
		}
	}
	return next
}

// Engine applies move and reorder operations through a RankWriter.
type Engine struct {
	write RankWriter
}

// NewEngine creates an engine that persists ranks via write.
func NewEngine(write RankWriter) *Engine {
	return &Engine{write: write}
}

// MoveUp swaps the rank of siblings[index] with its predecessor. A
// boundary index is a no-op. The two writes are independent: if the
// second fails after the first succeeded, the first is not rolled back
// and the joined error is returned.
func (e *Engine) MoveUp(ctx context.Context, siblings []Item, index int) error {
	if index <= 0 || index >= len(siblings) {
		return nil
	}
	return e.swap(ctx, siblings[index], siblings[index-1])
}

// MoveDown swaps the rank of siblings[index] with its successor. A
// boundary index is a no-op; failure semantics match MoveUp.
func (e *Engine) MoveDown(ctx context.Context, siblings []Item, index int) error {
	if index < 0 || index >= len(siblings)-1 {
		return nil
	}
	return e.swap(ctx, siblings[index], siblings[index+1])
}

func (e *Engine) swap(ctx context.Context, curr, other Item) error {
	err1 := e.write(ctx, curr.ID, other.SortOrder)
	err2 := e.write(ctx, other.ID, curr.SortOrder)
	return errors.Join(err1, err2)
}

// Reorder removes the sibling at from and reinserts it at to, then
// rewrites every sibling's rank to its new 0-based positional index.
// All writes are attempted even after a failure; already-applied writes
// are never reverted, and the caller should re-fetch after an error.
func (e *Engine) Reorder(ctx context.Context, siblings []Item, from, to int) error {
	n := len(siblings)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: from index %d out of range [0,%d)", apperr.ErrValidation, from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: to index %d out of range [0,%d)", apperr.ErrValidation, to, n)
	}
	if from == to {
		return nil
	}

	rest := make([]Item, 0, n-1)
	rest = append(rest, siblings[:from]...)
	rest = append(rest, siblings[from+1:]...)

	reordered := make([]Item, 0, n)
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, siblings[from])
	reordered = append(reordered, rest[to:]...)

	var errs []error
	for i, it := range reordered {
		if err := e.write(ctx, it.ID, i); err != nil {
			errs = append(errs, fmt.Errorf("ordering: write rank %d for %s: %w", i, it.ID, err))
		}
	}
	return errors.Join(errs...)
}
