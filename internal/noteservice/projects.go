package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/haneul/studydesk/internal/apperr"
	"github.com/haneul/studydesk/internal/models"
)

// Projects returns the user's projects, newest first. Projects are
// opaque parents for notes; only membership is tracked here.
func (s *Service) Projects(ctx context.Context, user models.User) ([]models.Project, error) {
	return s.db.ListProjects(ctx, user.ID)
}

// CreateProject registers a new project for the user.
func (s *Service) CreateProject(ctx context.Context, user models.User, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	return s.db.InsertProject(ctx, user.ID, name)
}
