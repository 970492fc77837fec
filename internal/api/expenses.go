package api

import (
	"context"

	"github.com/pmdash/pmdash/internal/model"
)

// ExpensesService operates on the expenses resource.
type ExpensesService struct {
	c *Client
}

// ExpenseListOptions filter an expense listing.
type ExpenseListOptions struct {
	Page     int
	Limit    int
	Type     string
	FromDate string
	ToDate   string
	Query    string
}

// ExpenseList is a page of expenses plus its pagination envelope.
type ExpenseList struct {
	Expenses   []model.Expense  `json:"expenses"`
	Pagination model.Pagination `json:"pagination"`
}

// List returns one page of expenses.
func (s *ExpensesService) List(ctx context.Context, opts ExpenseListOptions) (*ExpenseList, error) {
	params := listParams(opts.Page, opts.Limit)
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.FromDate != "" {
		params.Set("from_date", opts.FromDate)
	}
	if opts.ToDate != "" {
		params.Set("to_date", opts.ToDate)
	}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	var out ExpenseList
	if err := s.c.get(ctx, "/api/expenses", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns one expense by id.
func (s *ExpensesService) Get(ctx context.Context, id string) (*model.Expense, error) {
	var out model.Expense
	if err := s.c.get(ctx, "/api/expenses/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create records a new expense.
func (s *ExpensesService) Create(ctx context.Context, in model.CreateExpenseInput) (*model.Expense, error) {
	var out model.Expense
	if err := s.c.post(ctx, "/api/expenses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update to an existing expense.
func (s *ExpensesService) Update(ctx context.Context, id string, in model.CreateExpenseInput) (*model.Expense, error) {
	var out model.Expense
	if err := s.c.put(ctx, "/api/expenses/"+id, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an expense.
func (s *ExpensesService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/api/expenses/"+id)
}
