// Package linkservice coordinates study link mutations and the link
// group/subgroup hierarchy: free-text name resolution, sibling
// ordering, and detaching deletes.
package linkservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
	"github.com/haneul/studydesk/internal/projection"
	"github.com/haneul/studydesk/internal/resolver"
	"github.com/haneul/studydesk/internal/store"
)

// Notifier publishes table change events after successful mutations.
type Notifier interface {
	PublishChange(table, userID string)
}

// Service coordinates the store, name resolver, and notifications.
type Service struct {
	db     store.Store
	res    *resolver.Resolver
	notify Notifier
	logger *slog.Logger
}

// NewService creates a link service.
func NewService(db store.Store, notify Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, res: resolver.New(db), notify: notify, logger: logger}
}

// LinkInput is the payload for creating or updating a study link.
// Group and subgroup are free-text names resolved (find-or-create)
// during the write; a subgroup name without a group name is ignored.
type LinkInput struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	GroupName    string `json:"group_name"`
	SubgroupName string `json:"subgroup_name"`
	NoteID       string `json:"note_id"`
}

// Validate checks the input shape.
func (in LinkInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.URL, validation.Required, is.URL),
	)
}

// Links returns the user's links in fetch order.
func (s *Service) Links(ctx context.Context, user models.User) ([]models.StudyLink, error) {
	return s.db.ListStudyLinks(ctx, user.ID)
}

// Groups returns the user's link groups in canonical order.
func (s *Service) Groups(ctx context.Context, user models.User) ([]models.LinkGroup, error) {
	return s.db.ListLinkGroups(ctx, user.ID)
}

// Subgroups returns the user's link subgroups in canonical order.
func (s *Service) Subgroups(ctx context.Context, user models.User) ([]models.LinkSubgroup, error) {
	return s.db.ListLinkSubgroups(ctx, user.ID)
}

// GroupedLinks returns the two-level display tree of the user's links.
func (s *Service) GroupedLinks(ctx context.Context, user models.User) ([]projection.GroupBucket, error) {
	links, err := s.db.ListStudyLinks(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	groups, err := s.db.ListLinkGroups(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	subgroups, err := s.db.ListLinkSubgroups(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return projection.GroupLinks(links, groups, subgroups), nil
}

// resolveNames turns the input's free-text group/subgroup names into
// ids, creating rows as needed. The subgroup is resolved only inside
// the already-resolved group, which is what keeps a link's subgroup
// consistent with its group by construction.
func (s *Service) resolveNames(ctx context.Context, user models.User, in LinkInput) (groupID, subgroupID string, created bool, err error) {
	groups, err := s.db.ListLinkGroups(ctx, user.ID)
	if err != nil {
		return "", "", false, err
	}
	before := len(groups)
	groupID, groups, err = s.res.ResolveGroup(ctx, groups, user.ID, in.GroupName)
	if err != nil {
		return "", "", false, err
	}
	created = len(groups) != before

	if groupID != "" && strings.TrimSpace(in.SubgroupName) != "" {
		subgroups, serr := s.db.ListLinkSubgroups(ctx, user.ID)
		if serr != nil {
			return "", "", created, serr
		}
		sgBefore := len(subgroups)
		subgroupID, subgroups, serr = s.res.ResolveSubgroup(ctx, subgroups, user.ID, groupID, in.SubgroupName)
		if serr != nil {
			return "", "", created, serr
		}
		created = created || len(subgroups) != sgBefore
	}
	return groupID, subgroupID, created, nil
}

// CreateLink validates the input, resolves group/subgroup names, and
// inserts the link.
func (s *Service) CreateLink(ctx context.Context, user models.User, in LinkInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	groupID, subgroupID, created, err := s.resolveNames(ctx, user, in)
	if err != nil {
		return "", err
	}
	id, err := s.db.InsertStudyLink(ctx, models.StudyLink{
		UserID:      user.ID,
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
		GroupID:     groupID,
		SubgroupID:  subgroupID,
		NoteID:      strings.TrimSpace(in.NoteID),
	})
	if err != nil {
		return "", err
	}
	s.notify.PublishChange(store.TableStudyLinks, user.ID)
	if created {
		s.notify.PublishChange(store.TableLinkGroups, user.ID)
		s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	}
	return id, nil
}

// UpdateLink rewrites a link's fields, re-resolving names.
func (s *Service) UpdateLink(ctx context.Context, user models.User, id string, in LinkInput) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	groupID, subgroupID, created, err := s.resolveNames(ctx, user, in)
	if err != nil {
		return err
	}
	err = s.db.UpdateStudyLink(ctx, models.StudyLink{
		ID:          id,
		UserID:      user.ID,
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
		GroupID:     groupID,
		SubgroupID:  subgroupID,
		NoteID:      strings.TrimSpace(in.NoteID),
	})
	if err != nil {
		return err
	}
	s.notify.PublishChange(store.TableStudyLinks, user.ID)
	if created {
		s.notify.PublishChange(store.TableLinkGroups, user.ID)
		s.notify.PublishChange(store.TableLinkSubgroups, user.ID)
	}
	return nil
}

// DeleteLink removes a link.
func (s *Service) DeleteLink(ctx context.Context, user models.User, id string) error {
	if err := s.db.DeleteStudyLink(ctx, id, user.ID); err != nil {
		return err
	}
	s.notify.PublishChange(store.TableStudyLinks, user.ID)
	return nil
}
