package api

import (
	"context"

	"github.com/pmdash/pmdash/internal/model"
)

// ClientsService operates on the clients resource.
type ClientsService struct {
	c *Client
}

// ClientListOptions filter a client listing. Filters pass through to the
// server unchanged.
type ClientListOptions struct {
	Page  int
	Limit int
	Query string
}

// ClientList is a page of clients plus its pagination envelope.
type ClientList struct {
	Clients    []model.Client   `json:"clients"`
	Pagination model.Pagination `json:"pagination"`
}

// List returns one page of clients.
func (s *ClientsService) List(ctx context.Context, opts ClientListOptions) (*ClientList, error) {
	params := listParams(opts.Page, opts.Limit)
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	var out ClientList
	if err := s.c.get(ctx, "/api/clients", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ShortList returns minimal id/name pairs for selection controls.
func (s *ClientsService) ShortList(ctx context.Context) ([]model.ClientRef, error) {
	var out struct {
		Clients []model.ClientRef `json:"clients"`
	}
	if err := s.c.get(ctx, "/api/clients/shortList", nil, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// Get returns one client by id.
func (s *ClientsService) Get(ctx context.Context, id string) (*model.Client, error) {
	var out model.Client
	if err := s.c.get(ctx, "/api/clients/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new client.
func (s *ClientsService) Create(ctx context.Context, in model.CreateClientInput) (*model.Client, error) {
	var out model.Client
	if err := s.c.post(ctx, "/api/clients", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update to an existing client.
func (s *ClientsService) Update(ctx context.Context, id string, in model.CreateClientInput) (*model.Client, error) {
	var out model.Client
	if err := s.c.put(ctx, "/api/clients/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a client.
func (s *ClientsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/api/clients/"+id)
}

// PaymentSummary returns the client's payment rollup. The three fields
// are the authoritative contract; the path mirrors the backend routes.
func (s *ClientsService) PaymentSummary(ctx context.Context, id string) (*model.PaymentSummary, error) {
	var out model.PaymentSummary
	if err := s.c.get(ctx, "/api/clients/"+id+"/payment-summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
