package api

import (
	"context"

	"github.com/pmdash/pmdash/internal/model"
)

// PaymentsService operates on the payments resource.
type PaymentsService struct {
	c *Client
}

// PaymentListOptions filter a payment listing.
type PaymentListOptions struct {
	Page      int
	Limit     int
	ProjectID string
	ClientID  string
	FromDate  string
	ToDate    string
}

// PaymentList is a page of payments plus its pagination envelope.
type PaymentList struct {
	Payments   []model.Payment  `json:"payments"`
	Pagination model.Pagination `json:"pagination"`
}

// List returns one page of payments.
func (s *PaymentsService) List(ctx context.Context, opts PaymentListOptions) (*PaymentList, error) {
	params := listParams(opts.Page, opts.Limit)
	if opts.ProjectID != "" {
		params.Set("project_id", opts.ProjectID)
	}
	if opts.ClientID != "" {
		params.Set("client_id", opts.ClientID)
	}
	if opts.FromDate != "" {
		params.Set("from_date", opts.FromDate)
	}
	if opts.ToDate != "" {
		params.Set("to_date", opts.ToDate)
	}
	var out PaymentList
	if err := s.c.get(ctx, "/api/payments", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one payment by id.
func (s *PaymentsService) Get(ctx context.Context, id string) (*model.Payment, error) {
	var out model.Payment
	if err := s.c.get(ctx, "/api/payments/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create records a new payment.
func (s *PaymentsService) Create(ctx context.Context, in model.CreatePaymentInput) (*model.Payment, error) {
	var out model.Payment
	if err := s.c.post(ctx, "/api/payments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update to an existing payment.
func (s *PaymentsService) Update(ctx context.Context, id string, in model.CreatePaymentInput) (*model.Payment, error) {
	var out model.Payment
	if err := s.c.put(ctx, "/api/payments/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a payment.
func (s *PaymentsService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/api/payments/"+id)
}
