package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/service"
	"github.com/yourorg/trading-admin/internal/validator"
)

// ReferenceLoader supplies the lookup lists
type ReferenceLoader interface {
	Load(ctx context.Context) model.ReferenceData
	Exchanges(ctx context.Context) ([]model.Exchange, error)
}

// ViewRenderer renders database views
type ViewRenderer interface {
	Render(ctx context.Context, view model.View) (*model.Table, error)
}

// FunctionInvoker runs the database functions
type FunctionInvoker interface {
	SignalCount(ctx context.Context, req model.SignalCountRequest) (int64, error)
	FollowersCount(ctx context.Context, req model.StrategyFollowersRequest) (int64, error)
	UsersByStrategyAndCurrency(ctx context.Context, req model.UsersByStrategyCurrencyRequest) (*model.Table, error)
}

// ProcedureInvoker runs the stored procedures
type ProcedureInvoker interface {
	AddExchangeForUser(ctx context.Context, req model.AddExchangeRequest) error
	AddStrategyForUser(ctx context.Context, req model.AddStrategyRequest) error
	EnableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error
	DisableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error
	DeleteExchange(ctx context.Context, req model.DeleteExchangeRequest) error
}

// Pinger checks database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Message prefixes shown to the operator
const (
	prefixView      = "Error loading view"
	prefixFunction  = "Execution error"
	prefixProcedure = "Error"
	prefixDelete    = "Delete error"
	prefixExchanges = "Error loading exchanges"
)

// errorStatus maps an error domain to its HTTP status
func errorStatus(err error) int {
	var connErr *database.ConnectionError
	var execErr *database.ExecutionError
	switch {
	case isValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &execErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage renders err for the operator. Connection failures read the same
// everywhere; other failures carry the prefix of the area they happened in.
func errorMessage(prefix string, err error) string {
	var connErr *database.ConnectionError
	switch {
	case isValidation(err):
		return "Invalid input: " + validator.Describe(err)
	case errors.As(err, &connErr):
		return "Database connection error: " + connErr.Err.Error()
	default:
		return prefix + ": " + service.ErrorMessage(err)
	}
}

func isValidation(err error) bool {
	var vErr *validator.ValidationError
	var fieldErrs govalidator.ValidationErrors
	return errors.As(err, &vErr) || errors.As(err, &fieldErrs)
}

// bindingError marks a request that could not be decoded or failed its
// binding constraints
func bindingError(err error) error {
	if isValidation(err) {
		return err
	}
	return &validator.ValidationError{Err: err}
}

// decimalFields maps posted form fields decoded as decimals to their request names
var decimalFields = map[string]string{
	"total_balance": "totalBalance",
	"sub_balance":   "subBalance",
}

// bindForm binds a posted form. A decimal field that is present but not a
// number is rejected by name before the binder sees it.
func bindForm(c *gin.Context, obj any) error {
	for form, field := range decimalFields {
		value, ok := c.GetPostForm(form)
		if !ok {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return &validator.ValidationError{Err: fmt.Errorf("%s must be a number", field)}
		}
	}

	if err := c.ShouldBind(obj); err != nil {
		return bindingError(err)
	}
	return nil
}
