package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/model"
)

// ViewRepository reads database views
type ViewRepository interface {
	Fetch(ctx context.Context, view model.View) (*model.Table, error)
}

// ViewService renders the precomputed views
type ViewService struct {
	repo   ViewRepository
	logger *zap.Logger
}

// NewViewService creates a new view service
func NewViewService(repo ViewRepository, logger *zap.Logger) *ViewService {
	return &ViewService{
		repo:   repo,
		logger: logger,
	}
}

// Render returns all rows of the view in result-set column order
func (s *ViewService) Render(ctx context.Context, view model.View) (*model.Table, error) {
	table, err := s.repo.Fetch(ctx, view)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("View rendered", zap.String("view", string(view)), zap.Int("rows", table.Len()))
	return table, nil
}
