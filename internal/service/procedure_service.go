package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/audit"
	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/validator"
)

// ProcedureRepository calls the stored procedures
type ProcedureRepository interface {
	AddExchangeForUser(ctx context.Context, req model.AddExchangeRequest) error
	AddStrategyForUser(ctx context.Context, req model.AddStrategyRequest) error
	EnableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error
	DisableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error
	DeleteExchange(ctx context.Context, req model.DeleteExchangeRequest) error
}

type auditable interface {
	AuditParams() map[string]any
}

// ProcedureService validates procedure input, calls the procedure and
// publishes an audit event for every call that reached the database
type ProcedureService struct {
	repo      ProcedureRepository
	publisher audit.Publisher
	logger    *zap.Logger
}

// NewProcedureService creates a new procedure service
func NewProcedureService(repo ProcedureRepository, publisher audit.Publisher, logger *zap.Logger) *ProcedureService {
	return &ProcedureService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// AddExchangeForUser links an exchange account to a user
func (s *ProcedureService) AddExchangeForUser(ctx context.Context, req model.AddExchangeRequest) error {
	return s.run(ctx, model.ProcedureAddExchangeForUser, req, func() error {
		return s.repo.AddExchangeForUser(ctx, req)
	})
}

// AddStrategyForUser subscribes a user to a strategy/currency pairing
func (s *ProcedureService) AddStrategyForUser(ctx context.Context, req model.AddStrategyRequest) error {
	return s.run(ctx, model.ProcedureAddStrategyForUser, req, func() error {
		return s.repo.AddStrategyForUser(ctx, req)
	})
}

// EnableUserStrategy enables an existing subscription
func (s *ProcedureService) EnableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	return s.run(ctx, model.ProcedureEnableUserStrategy, req, func() error {
		return s.repo.EnableUserStrategy(ctx, req)
	})
}

// DisableUserStrategy disables an existing subscription
func (s *ProcedureService) DisableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	return s.run(ctx, model.ProcedureDisableUserStrategy, req, func() error {
		return s.repo.DisableUserStrategy(ctx, req)
	})
}

// DeleteExchange deletes an exchange
func (s *ProcedureService) DeleteExchange(ctx context.Context, req model.DeleteExchangeRequest) error {
	return s.run(ctx, model.ProcedureDeleteExchange, req, func() error {
		return s.repo.DeleteExchange(ctx, req)
	})
}

func (s *ProcedureService) run(ctx context.Context, proc model.Procedure, req auditable, call func() error) error {
	if err := validator.Struct(req); err != nil {
		return err
	}

	err := call()
	if err != nil {
		s.logger.Warn("Procedure failed", zap.String("procedure", proc.Routine()), zap.Error(err))
	} else {
		s.logger.Info("Procedure committed", zap.String("procedure", proc.Routine()))
	}

	var eventErr error
	if err != nil {
		eventErr = errors.New(ErrorMessage(err))
	}
	event := audit.NewEvent(proc.Routine(), req.AuditParams(), eventErr)
	if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
		s.logger.Error("Failed to publish audit event",
			zap.String("procedure", proc.Routine()),
			zap.String("event_id", event.ID),
			zap.Error(pubErr))
	}

	return err
}
