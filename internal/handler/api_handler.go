package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/utils"
)

// APIHandler serves the JSON mirror of the dashboard operations
type APIHandler struct {
	reference  ReferenceLoader
	views      ViewRenderer
	functions  FunctionInvoker
	procedures ProcedureInvoker
	logger     *zap.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(
	reference ReferenceLoader,
	views ViewRenderer,
	functions FunctionInvoker,
	procedures ProcedureInvoker,
	logger *zap.Logger,
) *APIHandler {
	return &APIHandler{
		reference:  reference,
		views:      views,
		functions:  functions,
		procedures: procedures,
		logger:     logger,
	}
}

// GetReference returns the reference lists with any per-list errors
// GET /api/v1/reference
func (h *APIHandler) GetReference(c *gin.Context) {
	utils.SendDataResponse(c, http.StatusOK, h.reference.Load(c.Request.Context()))
}

// ListExchanges returns the live exchanges
// GET /api/v1/exchanges
func (h *APIHandler) ListExchanges(c *gin.Context) {
	exchanges, err := h.reference.Exchanges(c.Request.Context())
	if err != nil {
		h.sendError(c, prefixExchanges, err)
		return
	}

	utils.SendDataResponse(c, http.StatusOK, exchanges)
}

// GetView returns all rows of a view
// GET /api/v1/views/:view
func (h *APIHandler) GetView(c *gin.Context) {
	view, ok := model.ParseView(c.Param("view"))
	if !ok {
		utils.SendErrorResponse(c, http.StatusNotFound, "Unknown view")
		return
	}

	table, err := h.views.Render(c.Request.Context(), view)
	if err != nil {
		h.sendError(c, prefixView, err)
		return
	}

	utils.SendDataResponse(c, http.StatusOK, table)
}

// SignalCount runs GetSignalCountByStrategyCurrencyAndDateRange
// POST /api/v1/functions/signal-count
func (h *APIHandler) SignalCount(c *gin.Context) {
	var req model.SignalCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixFunction, bindingError(err))
		return
	}

	count, err := h.functions.SignalCount(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, prefixFunction, err)
		return
	}

	utils.SendMessageResponse(c, http.StatusOK, fmt.Sprintf("Signal Count: %d", count), gin.H{"signalCount": count})
}

// FollowersCount runs GetStrategyFollowersCount
// POST /api/v1/functions/strategy-followers-count
func (h *APIHandler) FollowersCount(c *gin.Context) {
	var req model.StrategyFollowersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixFunction, bindingError(err))
		return
	}

	count, err := h.functions.FollowersCount(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, prefixFunction, err)
		return
	}

	utils.SendMessageResponse(c, http.StatusOK, fmt.Sprintf("Followers: %d", count), gin.H{"followerCount": count})
}

// UsersByStrategyAndCurrency runs GetUsersByStrategyAndCurrency
// POST /api/v1/functions/users-by-strategy-currency
func (h *APIHandler) UsersByStrategyAndCurrency(c *gin.Context) {
	var req model.UsersByStrategyCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixFunction, bindingError(err))
		return
	}

	table, err := h.functions.UsersByStrategyAndCurrency(c.Request.Context(), req)
	if err != nil {
		h.sendError(c, prefixFunction, err)
		return
	}

	utils.SendMessageResponse(c, http.StatusOK, usersNotice(table), table)
}

// AddExchangeForUser runs Add_Exchange_For_User
// POST /api/v1/procedures/add-exchange-for-user
func (h *APIHandler) AddExchangeForUser(c *gin.Context) {
	var req model.AddExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixProcedure, bindingError(err))
		return
	}

	h.sendProcedureResult(c, model.ProcedureAddExchangeForUser, h.procedures.AddExchangeForUser(c.Request.Context(), req))
}

// AddStrategyForUser runs Add_Strategy_For_User
// POST /api/v1/procedures/add-strategy-for-user
func (h *APIHandler) AddStrategyForUser(c *gin.Context) {
	var req model.AddStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixProcedure, bindingError(err))
		return
	}

	h.sendProcedureResult(c, model.ProcedureAddStrategyForUser, h.procedures.AddStrategyForUser(c.Request.Context(), req))
}

// EnableUserStrategy runs Enabling_User_Strategy
// POST /api/v1/procedures/enable-user-strategy
func (h *APIHandler) EnableUserStrategy(c *gin.Context) {
	var req model.UserStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixProcedure, bindingError(err))
		return
	}

	h.sendProcedureResult(c, model.ProcedureEnableUserStrategy, h.procedures.EnableUserStrategy(c.Request.Context(), req))
}

// DisableUserStrategy runs Disabling_User_Strategy
// POST /api/v1/procedures/disable-user-strategy
func (h *APIHandler) DisableUserStrategy(c *gin.Context) {
	var req model.UserStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, prefixProcedure, bindingError(err))
		return
	}

	h.sendProcedureResult(c, model.ProcedureDisableUserStrategy, h.procedures.DisableUserStrategy(c.Request.Context(), req))
}

// DeleteExchange runs Delete_Exchange and returns the refreshed exchange list
// DELETE /api/v1/exchanges/:id
func (h *APIHandler) DeleteExchange(c *gin.Context) {
	var req model.DeleteExchangeRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.sendError(c, prefixDelete, bindingError(err))
		return
	}

	if err := h.procedures.DeleteExchange(c.Request.Context(), req); err != nil {
		h.sendError(c, prefixDelete, err)
		return
	}

	body := gin.H{"message": model.ProcedureDeleteExchange.SuccessMessage()}
	exchanges, err := h.reference.Exchanges(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to reload exchanges after delete", zap.Error(err))
		body["error"] = errorMessage(prefixExchanges, err)
	} else {
		body["data"] = exchanges
	}

	c.JSON(http.StatusOK, body)
}

func (h *APIHandler) sendProcedureResult(c *gin.Context, proc model.Procedure, err error) {
	if err != nil {
		h.sendError(c, prefixProcedure, err)
		return
	}

	utils.SendMessageResponse(c, http.StatusOK, proc.SuccessMessage(), nil)
}

func (h *APIHandler) sendError(c *gin.Context, prefix string, err error) {
	status := errorStatus(err)
	h.logger.Warn("API request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	utils.SendErrorResponse(c, status, errorMessage(prefix, err))
}
