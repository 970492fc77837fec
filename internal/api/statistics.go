package api

import (
	"context"
	"net/url"

	"github.com/pmdash/pmdash/internal/model"
)

// StatisticsService exposes the read-only aggregate endpoints.
type StatisticsService struct {
	c *Client
}

func rangeParams(r model.DateRange) url.Values {
	params := url.Values{}
	if r.FromDate != "" {
		params.Set("from_date", r.FromDate)
	}
	if r.ToDate != "" {
		params.Set("to_date", r.ToDate)
	}
	return params
}

// Dashboard returns the full dashboard aggregate, optionally bounded by r.
func (s *StatisticsService) Dashboard(ctx context.Context, r model.DateRange) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := s.c.get(ctx, "/api/statistics", rangeParams(r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Financial returns the profit and margin breakdown, optionally bounded by r.
func (s *StatisticsService) Financial(ctx context.Context, r model.DateRange) (*model.FinancialStats, error) {
	var out model.FinancialStats
	if err := s.c.get(ctx, "/api/statistics/financial", rangeParams(r), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Overview returns the lightweight counters-only aggregate.
func (s *StatisticsService) Overview(ctx context.Context) (*model.OverviewStats, error) {
	var out model.OverviewStats
	if err := s.c.get(ctx, "/api/statistics/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
