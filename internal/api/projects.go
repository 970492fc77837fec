package api

import (
	"context"

	"github.com/pmdash/pmdash/internal/model"
)

// ProjectsService operates on the projects resource and its nested phases.
type ProjectsService struct {
	c *Client
}

// ProjectListOptions filter a project listing.
type ProjectListOptions struct {
	Page     int
	Limit    int
	ClientID string
	Status   string
	Query    string
}

// ProjectList is a page of projects plus its pagination envelope.
type ProjectList struct {
	Projects   []model.Project  `json:"projects"`
	Pagination model.Pagination `json:"pagination"`
}

// PhaseList is a page of phases plus its pagination envelope.
type PhaseList struct {
	Phases     []model.Phase    `json:"phases"`
	Pagination model.Pagination `json:"pagination"`
}

// List returns one page of projects.
func (s *ProjectsService) List(ctx context.Context, opts ProjectListOptions) (*ProjectList, error) {
	params := listParams(opts.Page, opts.Limit)
	if opts.ClientID != "" {
		params.Set("client_id", opts.ClientID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	var out ProjectList
	if err := s.c.get(ctx, "/api/projects", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShortList returns minimal id/title pairs for selection controls.
func (s *ProjectsService) ShortList(ctx context.Context) ([]model.ProjectRef, error) {
	var out struct {
		Projects []model.ProjectRef `json:"projects"`
	}
	if err := s.c.get(ctx, "/api/projects/shortList", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// Get returns one project by id.
func (s *ProjectsService) Get(ctx context.Context, id string) (*model.Project, error) {
	var out model.Project
	if err := s.c.get(ctx, "/api/projects/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new project.
func (s *ProjectsService) Create(ctx context.Context, in model.CreateProjectInput) (*model.Project, error) {
	var out model.Project
	if err := s.c.post(ctx, "/api/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update to an existing project.
func (s *ProjectsService) Update(ctx context.Context, id string, in model.CreateProjectInput) (*model.Project, error) {
	var out model.Project
	if err := s.c.put(ctx, "/api/projects/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a project.
func (s *ProjectsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/api/projects/"+id)
}

// Payments returns every payment recorded against the project.
func (s *ProjectsService) Payments(ctx context.Context, id string) ([]model.Payment, error) {
	var out struct {
		Payments []model.Payment `json:"payments"`
	}
	if err := s.c.get(ctx, "/api/projects/"+id+"/payments", nil, &out); err != nil {
		return nil, err
	}
	return out.Payments, nil
}

// ListPhases returns one page of phases for the project.
func (s *ProjectsService) ListPhases(ctx context.Context, projectID string, page, limit int) (*PhaseList, error) {
	var out PhaseList
	if err := s.c.get(ctx, "/api/projects/"+projectID+"/phases", listParams(page, limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPhase returns one phase by id.
func (s *ProjectsService) GetPhase(ctx context.Context, projectID, phaseID string) (*model.Phase, error) {
	var out model.Phase
	if err := s.c.get(ctx, "/api/projects/"+projectID+"/phases/"+phaseID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePhase stores a new phase under the project.
func (s *ProjectsService) CreatePhase(ctx context.Context, projectID string, in model.CreatePhaseInput) (*model.Phase, error) {
	var out model.Phase
	if err := s.c.post(ctx, "/api/projects/"+projectID+"/phases", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePhase applies a partial update to an existing phase.
func (s *ProjectsService) UpdatePhase(ctx context.Context, projectID, phaseID string, in model.CreatePhaseInput) (*model.Phase, error) {
	var out model.Phase
	if err := s.c.put(ctx, "/api/projects/"+projectID+"/phases/"+phaseID, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePhase removes a phase.
func (s *ProjectsService) DeletePhase(ctx context.Context, projectID, phaseID string) error {
	return s.c.delete(ctx, "/api/projects/"+projectID+"/phases/"+phaseID)
}
