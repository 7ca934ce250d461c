package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
)

// ProcedureRepository calls the mutating stored procedures. Each call runs in
// its own transaction. Arguments are never logged since they carry credentials.
type ProcedureRepository struct {
	provider *database.Provider
	logger   *zap.Logger
}

// NewProcedureRepository creates a new procedure repository
func NewProcedureRepository(provider *database.Provider, logger *zap.Logger) *ProcedureRepository {
	return &ProcedureRepository{
		provider: provider,
		logger:   logger,
	}
}

// AddExchangeForUser calls Add_Exchange_For_User
func (r *ProcedureRepository) AddExchangeForUser(ctx context.Context, req model.AddExchangeRequest) error {
	return r.call(ctx, model.ProcedureAddExchangeForUser,
		req.UserID, req.ExchangeID, req.APIKey, req.APISecret, req.TotalBalance)
}

// AddStrategyForUser calls Add_Strategy_For_User
func (r *ProcedureRepository) AddStrategyForUser(ctx context.Context, req model.AddStrategyRequest) error {
	return r.call(ctx, model.ProcedureAddStrategyForUser,
		req.UserID, req.StrategyCurrencyID, req.SubBalance)
}

// EnableUserStrategy calls Enabling_User_Strategy
func (r *ProcedureRepository) EnableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	return r.call(ctx, model.ProcedureEnableUserStrategy, req.UserID, req.StrategyCurrencyID)
}

// DisableUserStrategy calls Disabling_User_Strategy
func (r *ProcedureRepository) DisableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	return r.call(ctx, model.ProcedureDisableUserStrategy, req.UserID, req.StrategyCurrencyID)
}

// DeleteExchange calls Delete_Exchange
func (r *ProcedureRepository) DeleteExchange(ctx context.Context, req model.DeleteExchangeRequest) error {
	return r.call(ctx, model.ProcedureDeleteExchange, req.ExchangeID)
}

func (r *ProcedureRepository) call(ctx context.Context, proc model.Procedure, args ...any) error {
	query := r.provider.Dialect().CallProcedure(proc.Routine(), len(args))

	err := r.provider.With(ctx, proc.Routine(), func(conn *database.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				r.logger.Warn("Failed to roll back transaction", zap.String("procedure", proc.Routine()), zap.Error(err))
			}
		}()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		r.logger.Error("Failed to call procedure", zap.String("procedure", proc.Routine()), zap.Error(err))
		return err
	}

	return nil
}
