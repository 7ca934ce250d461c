package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/validator"
)

var (
	// ErrNullResult is returned when a count function yields NULL
	ErrNullResult = errors.New("function returned NULL")
	// ErrNegativeResult is returned when a count function yields a negative number
	ErrNegativeResult = errors.New("function returned a negative count")
)

// FunctionRepository invokes the database functions
type FunctionRepository interface {
	SignalCount(ctx context.Context, strategy, currency string, start, end time.Time) (sql.NullInt64, error)
	FollowersCount(ctx context.Context, strategy string) (sql.NullInt64, error)
	UsersByStrategyAndCurrency(ctx context.Context, strategy, currency string) (*model.Table, error)
}

// FunctionService validates function parameters and checks results
type FunctionService struct {
	repo   FunctionRepository
	logger *zap.Logger
}

// NewFunctionService creates a new function service
func NewFunctionService(repo FunctionRepository, logger *zap.Logger) *FunctionService {
	return &FunctionService{
		repo:   repo,
		logger: logger,
	}
}

// SignalCount counts signals for a strategy/currency pair in a date range
func (s *FunctionService) SignalCount(ctx context.Context, req model.SignalCountRequest) (int64, error) {
	if err := validator.Struct(req); err != nil {
		return 0, err
	}

	start, end, err := req.Range()
	if err != nil {
		return 0, &validator.ValidationError{Err: err}
	}

	result, err := s.repo.SignalCount(ctx, req.Strategy, req.Currency, start, end)
	if err != nil {
		return 0, err
	}

	return count(model.FunctionSignalCount, result)
}

// FollowersCount counts the followers of a strategy
func (s *FunctionService) FollowersCount(ctx context.Context, req model.StrategyFollowersRequest) (int64, error) {
	if err := validator.Struct(req); err != nil {
		return 0, err
	}

	result, err := s.repo.FollowersCount(ctx, req.Strategy)
	if err != nil {
		return 0, err
	}

	return count(model.FunctionStrategyFollowersCount, result)
}

// UsersByStrategyAndCurrency lists the users following a strategy/currency pair.
// An empty table is a valid result.
func (s *FunctionService) UsersByStrategyAndCurrency(ctx context.Context, req model.UsersByStrategyCurrencyRequest) (*model.Table, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	return s.repo.UsersByStrategyAndCurrency(ctx, req.Strategy, req.Currency)
}

func count(fn model.Function, result sql.NullInt64) (int64, error) {
	if !result.Valid {
		return 0, &database.ExecutionError{Op: fn.Routine(), Err: ErrNullResult}
	}
	if result.Int64 < 0 {
		return 0, &database.ExecutionError{Op: fn.Routine(), Err: ErrNegativeResult}
	}
	return result.Int64, nil
}
