package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
)

// ReferenceRepository reads the lookup lists
type ReferenceRepository interface {
	ListStrategies(ctx context.Context) ([]string, error)
	ListCurrencies(ctx context.Context) ([]string, error)
	ListStrategyCurrencies(ctx context.Context) ([]model.StrategyCurrency, error)
	ListExchanges(ctx context.Context) ([]model.Exchange, error)
}

// ReferenceService loads the reference lists for a render pass
type ReferenceService struct {
	repo   ReferenceRepository
	logger *zap.Logger
}

// NewReferenceService creates a new reference service
func NewReferenceService(repo ReferenceRepository, logger *zap.Logger) *ReferenceService {
	return &ReferenceService{
		repo:   repo,
		logger: logger,
	}
}

// Load runs the three list reads one after another. A failed read leaves its
// list empty and adds a message to Errors; the other reads still run.
func (s *ReferenceService) Load(ctx context.Context) model.ReferenceData {
	data := model.NewReferenceData()

	if strategies, err := s.repo.ListStrategies(ctx); err != nil {
		data.Errors = append(data.Errors, "Error fetching strategies: "+ErrorMessage(err))
	} else {
		data.Strategies = strategies
	}

	if currencies, err := s.repo.ListCurrencies(ctx); err != nil {
		data.Errors = append(data.Errors, "Error fetching currencies: "+ErrorMessage(err))
	} else {
		data.Currencies = currencies
	}

	if pairs, err := s.repo.ListStrategyCurrencies(ctx); err != nil {
		data.Errors = append(data.Errors, "Error fetching strategy currencies: "+ErrorMessage(err))
	} else {
		data.StrategyCurrencies = pairs
	}

	if len(data.Errors) > 0 {
		s.logger.Warn("Reference data partially loaded", zap.Strings("errors", data.Errors))
	}

	return data
}

// Exchanges returns the live exchanges
func (s *ReferenceService) Exchanges(ctx context.Context) ([]model.Exchange, error) {
	return s.repo.ListExchanges(ctx)
}

// ErrorMessage returns the text shown to the operator for err. Execution
// errors show the database's own message.
func ErrorMessage(err error) string {
	var execErr *database.ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Message()
	}
	return err.Error()
}
