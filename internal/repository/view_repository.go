package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
)

// ViewRepository reads the precomputed database views
type ViewRepository struct {
	provider *database.Provider
	logger   *zap.Logger
}

// NewViewRepository creates a new view repository
func NewViewRepository(provider *database.Provider, logger *zap.Logger) *ViewRepository {
	return &ViewRepository{
		provider: provider,
		logger:   logger,
	}
}

// Fetch returns every row of the view
func (r *ViewRepository) Fetch(ctx context.Context, view model.View) (*model.Table, error) {
	if _, ok := model.ParseView(string(view)); !ok {
		return nil, fmt.Errorf("unknown view %q", view)
	}

	query := "SELECT * FROM " + view.Relation()

	var table *model.Table
	err := r.provider.With(ctx, "fetch "+view.Relation(), func(conn *database.Conn) error {
		rows, err := conn.QueryxContext(ctx, query)
		if err != nil {
			return err
		}
		table, err = scanTable(rows)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to fetch view", zap.String("view", view.Relation()), zap.Error(err))
		return nil, err
	}

	return table, nil
}
