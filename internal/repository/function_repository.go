package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
)

// FunctionRepository invokes the read-only database functions
type FunctionRepository struct {
	provider *database.Provider
	logger   *zap.Logger
}

// NewFunctionRepository creates a new function repository
func NewFunctionRepository(provider *database.Provider, logger *zap.Logger) *FunctionRepository {
	return &FunctionRepository{
		provider: provider,
		logger:   logger,
	}
}

// SignalCount calls GetSignalCountByStrategyCurrencyAndDateRange
func (r *FunctionRepository) SignalCount(ctx context.Context, strategy, currency string, start, end time.Time) (sql.NullInt64, error) {
	return r.scalar(ctx, model.FunctionSignalCount, strategy, currency, start, end)
}

// FollowersCount calls GetStrategyFollowersCount
func (r *FunctionRepository) FollowersCount(ctx context.Context, strategy string) (sql.NullInt64, error) {
	return r.scalar(ctx, model.FunctionStrategyFollowersCount, strategy)
}

// UsersByStrategyAndCurrency calls the GetUsersByStrategyAndCurrency table function
func (r *FunctionRepository) UsersByStrategyAndCurrency(ctx context.Context, strategy, currency string) (*model.Table, error) {
	fn := model.FunctionUsersByStrategyCurrency
	query := r.provider.Dialect().SelectFromFunction(fn.Routine(), 2)

	var table *model.Table
	err := r.provider.With(ctx, fn.Routine(), func(conn *database.Conn) error {
		rows, err := conn.QueryxContext(ctx, query, strategy, currency)
		if err != nil {
			return err
		}
		table, err = scanTable(rows)
		return err
	})
	if err != nil {
		r.logger.Error("Failed to call function", zap.String("function", fn.Routine()), zap.Error(err))
		return nil, err
	}

	return table, nil
}

func (r *FunctionRepository) scalar(ctx context.Context, fn model.Function, args ...any) (sql.NullInt64, error) {
	query := r.provider.Dialect().SelectScalar(fn.Routine(), fn.Alias(), len(args))

	var result sql.NullInt64
	err := r.provider.With(ctx, fn.Routine(), func(conn *database.Conn) error {
		return conn.QueryRowxContext(ctx, query, args...).Scan(&result)
	})
	if err != nil {
		r.logger.Error("Failed to call function", zap.String("function", fn.Routine()), zap.Error(err))
		return sql.NullInt64{}, err
	}

	return result, nil
}
