// Package syncer keeps per-user in-memory collections consistent with
// the store. Each watched collection has one change-event subscription;
// any received event (or a focus trigger) enqueues a full refetch of
// that collection, and the local copy is replaced wholesale. There is
// no per-row patching and no conflict resolution: the last full read
// wins.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/store"
)

// Source is the read side of the store the reconciler refetches from.
type Source interface {
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	ListLinkGroups(ctx context.Context, userID string) ([]models.LinkGroup, error)
	ListLinkSubgroups(ctx context.Context, userID string) ([]models.LinkSubgroup, error)
	ListStudyLinks(ctx context.Context, userID string) ([]models.StudyLink, error)
}

// EventSource is the subscription surface of the realtime broker.
type EventSource interface {
	Subscribe(userID string) chan []byte
	Unsubscribe(ch chan []byte)
}

// watched lists the collections the reconciler mirrors.
var watched = []string{
	store.TableStudyLinks,
	store.TableCategories,
	store.TableNotes,
	store.TableLinkGroups,
	store.TableLinkSubgroups,
}

// subscription is one per-collection event listener. Closing it is
// independent of the other subscriptions.
type subscription struct {
	table  string
	ch     chan []byte
	events EventSource
	done   chan struct{}
}

func (s *subscription) close() error {
	select {
	case <-s.done:
		return fmt.Errorf("syncer: subscription for %s already closed", s.table)
	default:
		close(s.done)
	}
	s.events.Unsubscribe(s.ch)
	return nil
}

// Reconciler mirrors one user's collections.
type Reconciler struct {
	db     Source
	events EventSource
	userID string
	logger *slog.Logger

	taskCh chan string
	subs   []*subscription
	wg     sync.WaitGroup

	mu         sync.RWMutex
	links      []models.StudyLink
	categories []models.Category
	notes      []models.Note
	groups     []models.LinkGroup
	subgroups  []models.LinkSubgroup
}

// New creates a reconciler for userID. Call Start to populate the
// collections and begin watching.
func New(db Source, events EventSource, userID string, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		db:     db,
		events: events,
		userID: userID,
		logger: logger,
		taskCh: make(chan string, 64),
	}
}

// Start performs the initial fetch of every collection, establishes one
// subscription per collection, and starts the single refresh worker.
// It runs until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) error {
	for _, table := range watched {
		if err := r.Refresh(ctx, table); err != nil {
			return fmt.Errorf("syncer: initial fetch %s: %w", table, err)
		}
	}

	for _, table := range watched {
		sub := &subscription{
			table:  table,
			ch:     r.events.Subscribe(r.userID),
			events: r.events,
			done:   make(chan struct{}),
		}
		r.subs = append(r.subs, sub)
		r.wg.Add(1)
		go r.listen(sub)
	}

	r.wg.Add(1)
	go r.work(ctx)
	return nil
}

// listen filters one subscription's raw event frames down to its table
// and enqueues refresh tasks.
func (r *Reconciler) listen(sub *subscription) {
	defer r.wg.Done()
	marker := []byte("event: " + sub.table + ".changed\n")
	for {
		select {
		case <-sub.done:
			return
		case msg, ok := <-sub.ch:
			if !ok {
				return
			}
			if !bytes.HasPrefix(msg, marker) {
				continue
			}
			select {
			case r.taskCh <- sub.table:
			default:
				// Queue full: a refresh for some table is already
				// pending; dropping is safe because every refresh is
				// a full unconditional refetch.
			}
		}
	}
}

// work is the single-threaded refresh queue. Refreshes never run
// concurrently with each other, mirroring an event-loop client.
func (r *Reconciler) work(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case table := <-r.taskCh:
			if err := r.Refresh(ctx, table); err != nil {
				r.logger.Warn("syncer: refresh failed",
					slog.String("table", table),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Refresh refetches one collection in canonical order and replaces the
// local copy unconditionally.
func (r *Reconciler) Refresh(ctx context.Context, table string) error {
	switch table {
	case store.TableStudyLinks:
		rows, err := r.db.ListStudyLinks(ctx, r.userID)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.links = rows
		r.mu.Unlock()
	case store.TableCategories:
		rows, err := r.db.ListCategories(ctx, r.userID)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.categories = rows
		r.mu.Unlock()
	case store.TableNotes:
		rows, err := r.db.ListNotes(ctx, r.userID)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.notes = rows
		r.mu.Unlock()
	case store.TableLinkGroups:
		rows, err := r.db.ListLinkGroups(ctx, r.userID)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.groups = rows
		r.mu.Unlock()
	case store.TableLinkSubgroups:
		rows, err := r.db.ListLinkSubgroups(ctx, r.userID)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.subgroups = rows
		r.mu.Unlock()
	default:
		return fmt.Errorf("syncer: unknown table %q", table)
	}
	return nil
}

// Focus enqueues a refresh of every watched collection, the same way a
// window-focus listener would.
func (r *Reconciler) Focus() {
	for _, table := range watched {
		select {
		case r.taskCh <- table:
		default:
		}
	}
}

// Close tears down every subscription. Each teardown is attempted
// independently; one failure does not block the others.
func (r *Reconciler) Close() error {
	var errs []error
	for _, sub := range r.subs {
		if err := sub.close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Links returns the current links snapshot.
func (r *Reconciler) Links() []models.StudyLink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.links
}

// Categories returns the current categories snapshot.
func (r *Reconciler) Categories() []models.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories
}

// Notes returns the current notes snapshot.
func (r *Reconciler) Notes() []models.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notes
}

// LinkGroups returns the current link groups snapshot.
func (r *Reconciler) LinkGroups() []models.LinkGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups
}

// LinkSubgroups returns the current link subgroups snapshot.
func (r *Reconciler) LinkSubgroups() []models.LinkSubgroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subgroups
}
