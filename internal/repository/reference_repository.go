package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
)

const (
	listStrategiesQuery = `SELECT DISTINCT strategy_name FROM Strategy_Type ORDER BY strategy_name`

	listCurrenciesQuery = `SELECT DISTINCT currency_symbol FROM Currencies ORDER BY currency_symbol`

	listStrategyCurrenciesQuery = `
		SELECT sc.strategy_currency_id, st.strategy_name, c.currency_symbol
		FROM Strategy_Currency sc
		JOIN Strategy_Type st ON sc.strategy_type_id = st.strategy_type_id
		JOIN Currencies c ON sc.currency_id = c.currency_id
		ORDER BY sc.strategy_currency_id`

	listExchangesQuery = `SELECT exchange_id, exchange_name FROM Exchanges ORDER BY exchange_id`
)

// ReferenceRepository reads the lookup lists. Every call acquires its own
// connection, so one failing list does not affect the others.
type ReferenceRepository struct {
	provider *database.Provider
	logger   *zap.Logger
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(provider *database.Provider, logger *zap.Logger) *ReferenceRepository {
	return &ReferenceRepository{
		provider: provider,
		logger:   logger,
	}
}

// ListStrategies returns the distinct strategy names
func (r *ReferenceRepository) ListStrategies(ctx context.Context) ([]string, error) {
	strategies := []string{}
	err := r.provider.With(ctx, "list strategies", func(conn *database.Conn) error {
		return conn.SelectContext(ctx, &strategies, listStrategiesQuery)
	})
	if err != nil {
		r.logger.Error("Failed to list strategies", zap.Error(err))
		return nil, err
	}

	return strategies, nil
}

// ListCurrencies returns the distinct currency symbols
func (r *ReferenceRepository) ListCurrencies(ctx context.Context) ([]string, error) {
	currencies := []string{}
	err := r.provider.With(ctx, "list currencies", func(conn *database.Conn) error {
		return conn.SelectContext(ctx, &currencies, listCurrenciesQuery)
	})
	if err != nil {
		r.logger.Error("Failed to list currencies", zap.Error(err))
		return nil, err
	}

	return currencies, nil
}

// ListStrategyCurrencies returns the strategy/currency pairings with their labels
func (r *ReferenceRepository) ListStrategyCurrencies(ctx context.Context) ([]model.StrategyCurrency, error) {
	var rows []model.StrategyCurrencyRow
	err := r.provider.With(ctx, "list strategy currencies", func(conn *database.Conn) error {
		return conn.SelectContext(ctx, &rows, listStrategyCurrenciesQuery)
	})
	if err != nil {
		r.logger.Error("Failed to list strategy currencies", zap.Error(err))
		return nil, err
	}

	return model.UniquePairings(rows), nil
}

// ListExchanges returns the live exchanges
func (r *ReferenceRepository) ListExchanges(ctx context.Context) ([]model.Exchange, error) {
	exchanges := []model.Exchange{}
	err := r.provider.With(ctx, "list exchanges", func(conn *database.Conn) error {
		return conn.SelectContext(ctx, &exchanges, listExchangesQuery)
	})
	if err != nil {
		r.logger.Error("Failed to list exchanges", zap.Error(err))
		return nil, err
	}

	return exchanges, nil
}
