package store

import (
	"context"

	"github.com/haneul/studydesk/internal/models"
)

// Table names, as used for change-event routing.
const (
	TableCategories    = "categories"
	TableNotes         = "notes"
	TableLinkGroups    = "link_groups"
	TableLinkSubgroups = "link_subgroups"
	TableStudyLinks    = "study_links"
)

// Store defines the relational operations the rest of the application
// depends on. Consumers should accept this interface rather than the
// concrete *DB type to facilitate testing with fakes.
type Store interface {
	// Categories.
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
	InsertCategory(ctx context.Context, userID, name string, sortOrder int) (string, error)
	RenameCategory(ctx context.Context, id, userID, name string) error
	UpdateCategoryRank(ctx context.Context, id, userID string, rank int) error
	DeleteCategory(ctx context.Context, id, userID string) error

	// Notes and the note↔category relation.
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	InsertNote(ctx context.Context, n models.Note) (string, error)
	UpdateNoteLegacyCategory(ctx context.Context, noteID, userID, categoryID string) error
	UpdateNoteFavorite(ctx context.Context, noteID, userID string, favorite bool) error
	DeleteNote(ctx context.Context, noteID, userID string) error
	ReplaceNoteCategories(ctx context.Context, noteID string, categoryIDs []string) error
	ListNoteCategories(ctx context.Context, userID string) ([]models.NoteCategory, error)

	// Link groups and subgroups.
	ListLinkGroups(ctx context.Context, userID string) ([]models.LinkGroup, error)
	InsertLinkGroup(ctx context.Context, userID, name string, sortOrder int) (string, error)
	RenameLinkGroup(ctx context.Context, id, userID, name string) error
	UpdateLinkGroupRank(ctx context.Context, id, userID string, rank int) error
	DeleteLinkGroup(ctx context.Context, id, userID string) error
	ListLinkSubgroups(ctx context.Context, userID string) ([]models.LinkSubgroup, error)
	InsertLinkSubgroup(ctx context.Context, groupID, userID, name string, sortOrder int) (string, error)
	RenameLinkSubgroup(ctx context.Context, id, userID, name string) error
	UpdateLinkSubgroupRank(ctx context.Context, id, userID string, rank int) error
	DeleteLinkSubgroup(ctx context.Context, id, userID string) error

	// Study links.
	ListStudyLinks(ctx context.Context, userID string) ([]models.StudyLink, error)
	InsertStudyLink(ctx context.Context, l models.StudyLink) (string, error)
	UpdateStudyLink(ctx context.Context, l models.StudyLink) error
	DeleteStudyLink(ctx context.Context, id, userID string) error

	// Profiles and projects.
	UpsertProfile(ctx context.Context, u models.User, approved bool) error
	SetApproved(ctx context.Context, userID string, approved bool) error
	IsApproved(ctx context.Context, userID string) (bool, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	InsertProject(ctx context.Context, userID, name string) (string, error)

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
