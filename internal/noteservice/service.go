// Package noteservice coordinates note mutations: categorization (both
// the many-to-many relation and the legacy single-category field),
// favorites, deletion with storage cleanup, and file comparison.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/projection"
	"github.com/haneul/studydesk/internal/storage"
	"github.com/haneul/studydesk/internal/store"
)

// Notifier publishes table change events after successful mutations.
type Notifier interface {
	PublishChange(table, userID string)
}

// Service coordinates store, file storage, and change notification.
type Service struct {
	db     store.Store
	files  storage.Provider
	notify Notifier
	logger *slog.Logger
}

// NewService creates a note service.
func NewService(db store.Store, files storage.Provider, notify Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, files: files, notify: notify, logger: logger}
}

// ownedNote fetches the note and verifies the caller owns it. A missing
// note is ErrNotFound; someone else's note is ErrForbidden, and the row
// is not returned in that case.
func (s *Service) ownedNote(ctx context.Context, noteID string, user models.User) (*models.Note, error) {
	n, err := s.db.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n.UserID != user.ID {
		return nil, apperr.ErrForbidden
	}
	return n, nil
}

// NoteView is a note enriched with its effective category set.
type NoteView struct {
	models.Note
	CategoryIDs []string `json:"category_ids"`
}

// ListNotes returns the user's notes with projected category sets.
func (s *Service) ListNotes(ctx context.Context, user models.User) ([]NoteView, error) {
	notes, err := s.db.ListNotes(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.ListNoteCategories(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]NoteView, len(notes))
	for i, n := range notes {
		ids := projection.EffectiveCategoryIDs(n, rows)
		if ids == nil {
			ids = []string{}
		}
		out[i] = NoteView{Note: n, CategoryIDs: ids}
	}
	return out, nil
}

// CreateNote stores the uploaded file content (when present) and
// inserts the note row. The file path must live under the caller's own
// prefix; a path under anyone else's prefix is rejected before any
// write happens, which keeps the later best-effort delete safe too.
func (s *Service) CreateNote(ctx context.Context, user models.User, title string, content []byte, filePath string) (string, error) {
	if filePath != "" && !strings.HasPrefix(filePath, user.ID+"/") {
		return "", fmt.Errorf("%w: file path must be under %s/", apperr.ErrValidation, user.ID)
	}
	if filePath != "" && content != nil {
		if err := s.files.Write(filePath, content); err != nil {
			return "", fmt.Errorf("noteservice: store file: %w", err)
		}
	}
	id, err := s.db.InsertNote(ctx, models.Note{
		UserID:   user.ID,
		Title:    title,
		FilePath: filePath,
	})
	if err != nil {
		return "", err
	}
	s.notify.PublishChange(store.TableNotes, user.ID)
	return id, nil
}

// SetNoteCategories replaces a note's category set. All relation rows
// for the note are deleted, one row per id is inserted, and the legacy
// category_id field is written to the first id (or cleared when the
// list is empty) so single-category consumers stay consistent.
func (s *Service) SetNoteCategories(ctx context.Context, noteID string, categoryIDs []string, user models.User) error {
	if _, err := s.ownedNote(ctx, noteID, user); err != nil {
		return err
	}
	ids := make([]string, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := s.db.ReplaceNoteCategories(ctx, noteID, ids); err != nil {
		return err
	}
	primary := ""
	if len(ids) > 0 {
		primary = ids[0]
	}
	if err := s.db.UpdateNoteLegacyCategory(ctx, noteID, user.ID, primary); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableNotes, user.ID)
	return nil
}

// SetLegacyCategory is the single-category entry point for callers not
// yet using the multi-category form. Same delete-then-insert pattern;
// an empty categoryID clears both representations.
func (s *Service) SetLegacyCategory(ctx context.Context, noteID, categoryID string, user models.User) error {
	if _, err := s.ownedNote(ctx, noteID, user); err != nil {
		return err
	}
	var ids []string
	if categoryID != "" {
		ids = []string{categoryID}
	}
	if err := s.db.ReplaceNoteCategories(ctx, noteID, ids); err != nil {
		return err
	}
	if err := s.db.UpdateNoteLegacyCategory(ctx, noteID, user.ID, categoryID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableNotes, user.ID)
	return nil
}

// SetFavorite toggles the favorite flag, independently of any
// categorization change in the same request.
func (s *Service) SetFavorite(ctx context.Context, noteID string, favorite bool, user models.User) error {
	if _, err := s.ownedNote(ctx, noteID, user); err != nil {
		return err
	}
	if err := s.db.UpdateNoteFavorite(ctx, noteID, user.ID, favorite); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableNotes, user.ID)
	return nil
}

// DeleteNote removes the note. The stored file, when one is recorded,
// is deleted first as best effort: a storage failure is logged and the
// row deletion still proceeds. A row deletion failure is surfaced.
func (s *Service) DeleteNote(ctx context.Context, noteID string, user models.User) error {
	n, err := s.ownedNote(ctx, noteID, user)
	if err != nil {
		return err
	}
	if n.FilePath != "" {
		if err := s.files.Delete(n.FilePath); err != nil {
			s.logger.Warn("noteservice: file cleanup failed",
				slog.String("note_id", noteID),
				slog.String("path", n.FilePath),
				slog.String("error", err.Error()))
		}
	}
	if err := s.db.DeleteNote(ctx, noteID, user.ID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableNotes, user.ID)
	return nil
}

// Comparison holds two notes side by side with their file contents.
type Comparison struct {
	Note1    NoteView `json:"note1"`
	Note2    NoteView `json:"note2"`
	Content1 string   `json:"content1"`
	Content2 string   `json:"content2"`
}

// Compare loads both notes (owner-checked) and their file contents.
// A file download failure yields empty content, not an error.
func (s *Service) Compare(ctx context.Context, id1, id2 string, user models.User) (*Comparison, error) {
	n1, err := s.ownedNote(ctx, id1, user)
	if err != nil {
		return nil, err
	}
	n2, err := s.ownedNote(ctx, id2, user)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.ListNoteCategories(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Note1: NoteView{Note: *n1, CategoryIDs: projection.EffectiveCategoryIDs(*n1, rows)},
		Note2: NoteView{Note: *n2, CategoryIDs: projection.EffectiveCategoryIDs(*n2, rows)},
	}
	cmp.Content1 = s.download(n1.FilePath)
	cmp.Content2 = s.download(n2.FilePath)
	return cmp, nil
}

func (s *Service) download(path string) string {
	if path == "" {
		return ""
	}
	data, err := s.files.Download(path)
	if err != nil {
		s.logger.Warn("noteservice: file download failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return ""
	}
	return string(data)
}
