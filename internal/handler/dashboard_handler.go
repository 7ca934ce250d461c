package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/web"
)

const (
	pageTitle  = "Cryptocurrency Trading Management System"
	pageFooter = "Cryptocurrency Trading System v1.1"
)

// secretField is never echoed back into a rendered form
const secretField = "api_secret"

// page is the data of one dashboard render pass
type page struct {
	Title     string
	Footer    string
	Menu      []model.MenuSection
	Section   model.MenuSection
	Selected  model.MenuOption
	Heading   string
	Reference model.ReferenceData
	ShowForm  bool
	Action    string
	Button    string
	Form      map[string]string
	Today     string
	Exchanges []model.Exchange
	Table     *model.Table
	Success   string
	Warning   string
	Error     string
}

// DashboardHandler serves the HTML dashboard. Every request is one render
// pass: reference lists first, then the single component the menu selects.
type DashboardHandler struct {
	reference  ReferenceLoader
	views      ViewRenderer
	functions  FunctionInvoker
	procedures ProcedureInvoker
	logger     *zap.Logger
	now        func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	reference ReferenceLoader,
	views ViewRenderer,
	functions FunctionInvoker,
	procedures ProcedureInvoker,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		reference:  reference,
		views:      views,
		functions:  functions,
		procedures: procedures,
		logger:     logger,
		now:        time.Now,
	}
}

// Index redirects to the first menu section
// GET /
func (h *DashboardHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, model.MenuSectionFor(model.SectionViews).Path())
}

// Views renders the selected database view
// GET /views?view=<key>
func (h *DashboardHandler) Views(c *gin.Context) {
	p := h.newPage(c.Request.Context(), model.SectionViews, c.Query("view"))

	table, err := h.views.Render(c.Request.Context(), model.View(p.Selected.Key))
	if err != nil {
		h.render(c, p, err, prefixView)
		return
	}

	p.Table = table
	h.render(c, p, nil, "")
}

// Functions renders the form of the selected function without executing it
// GET /functions?fn=<key>
func (h *DashboardHandler) Functions(c *gin.Context) {
	p := h.newPage(c.Request.Context(), model.SectionFunctions, c.Query("fn"))
	h.render(c, p, nil, "")
}

// ExecuteFunction runs the function named in the path
// POST /functions/:fn
func (h *DashboardHandler) ExecuteFunction(c *gin.Context) {
	ctx := c.Request.Context()
	fn, ok := model.ParseFunction(c.Param("fn"))
	p := h.newPage(ctx, model.SectionFunctions, string(fn))
	if !ok {
		h.renderStatus(c, http.StatusNotFound, p, "Unknown function")
		return
	}
	p.Form = h.postedForm(c)

	var err error
	switch fn {
	case model.FunctionSignalCount:
		var req model.SignalCountRequest
		if err = c.ShouldBind(&req); err != nil {
			err = bindingError(err)
			break
		}
		var count int64
		if count, err = h.functions.SignalCount(ctx, req); err == nil {
			p.Success = fmt.Sprintf("Signal Count: %d", count)
		}

	case model.FunctionStrategyFollowersCount:
		var req model.StrategyFollowersRequest
		if err = c.ShouldBind(&req); err != nil {
			err = bindingError(err)
			break
		}
		var count int64
		if count, err = h.functions.FollowersCount(ctx, req); err == nil {
			p.Success = fmt.Sprintf("Followers: %d", count)
		}

	case model.FunctionUsersByStrategyCurrency:
		var req model.UsersByStrategyCurrencyRequest
		if err = c.ShouldBind(&req); err != nil {
			err = bindingError(err)
			break
		}
		var table *model.Table
		if table, err = h.functions.UsersByStrategyAndCurrency(ctx, req); err == nil {
			if table.Len() == 0 {
				p.Warning = usersNotice(table)
			} else {
				p.Table = table
				p.Success = usersNotice(table)
			}
		}
	}

	h.render(c, p, err, prefixFunction)
}

// Procedures renders the form of the selected procedure. The delete form lists
// the live exchanges.
// GET /procedures?proc=<key>
func (h *DashboardHandler) Procedures(c *gin.Context) {
	p := h.newPage(c.Request.Context(), model.SectionProcedures, c.Query("proc"))

	if p.Selected.Key == string(model.ProcedureDeleteExchange) {
		if err := h.loadExchanges(c.Request.Context(), &p); err != nil {
			h.render(c, p, err, prefixExchanges)
			return
		}
	}

	h.render(c, p, nil, "")
}

// ExecuteProcedure runs the procedure named in the path
// POST /procedures/:proc
func (h *DashboardHandler) ExecuteProcedure(c *gin.Context) {
	ctx := c.Request.Context()
	proc, ok := model.ParseProcedure(c.Param("proc"))
	p := h.newPage(ctx, model.SectionProcedures, string(proc))
	if !ok {
		h.renderStatus(c, http.StatusNotFound, p, "Unknown procedure")
		return
	}
	p.Form = h.postedForm(c)

	var err error
	prefix := prefixProcedure
	switch proc {
	case model.ProcedureAddExchangeForUser:
		var req model.AddExchangeRequest
		if err = bindForm(c, &req); err == nil {
			err = h.procedures.AddExchangeForUser(ctx, req)
		}

	case model.ProcedureAddStrategyForUser:
		var req model.AddStrategyRequest
		if err = bindForm(c, &req); err == nil {
			err = h.procedures.AddStrategyForUser(ctx, req)
		}

	case model.ProcedureEnableUserStrategy:
		var req model.UserStrategyRequest
		if err = c.ShouldBind(&req); err == nil {
			err = h.procedures.EnableUserStrategy(ctx, req)
		} else {
			err = bindingError(err)
		}

	case model.ProcedureDisableUserStrategy:
		var req model.UserStrategyRequest
		if err = c.ShouldBind(&req); err == nil {
			err = h.procedures.DisableUserStrategy(ctx, req)
		} else {
			err = bindingError(err)
		}

	case model.ProcedureDeleteExchange:
		prefix = prefixDelete
		var req model.DeleteExchangeRequest
		if err = c.ShouldBind(&req); err == nil {
			err = h.procedures.DeleteExchange(ctx, req)
		} else {
			err = bindingError(err)
		}

		// The list is fetched again so a deleted exchange is no longer offered
		if loadErr := h.loadExchanges(ctx, &p); loadErr != nil && err == nil {
			p.Success = proc.SuccessMessage()
			h.render(c, p, loadErr, prefixExchanges)
			return
		}
	}

	if err == nil {
		p.Success = proc.SuccessMessage()
	}
	h.render(c, p, err, prefix)
}

func (h *DashboardHandler) newPage(ctx context.Context, section model.Section, key string) page {
	menuSection := model.MenuSectionFor(section)
	selected := menuSection.Resolve(key)

	p := page{
		Title:     pageTitle,
		Footer:    pageFooter,
		Menu:      model.Menu(),
		Section:   menuSection,
		Selected:  selected,
		Reference: h.reference.Load(ctx),
		Form:      map[string]string{},
		Today:     h.now().Format(model.DateLayout),
	}

	switch section {
	case model.SectionFunctions:
		fn := model.Function(selected.Key)
		p.Heading = fn.Heading()
		p.ShowForm = true
		p.Action = menuSection.Path() + "/" + selected.Key
		p.Button = "Execute"
	case model.SectionProcedures:
		proc := model.Procedure(selected.Key)
		p.Heading = proc.Heading()
		p.ShowForm = true
		p.Action = menuSection.Path() + "/" + selected.Key
		p.Button = proc.Action()
	}

	return p
}

func (h *DashboardHandler) loadExchanges(ctx context.Context, p *page) error {
	exchanges, err := h.reference.Exchanges(ctx)
	if err != nil {
		p.Exchanges = nil
		p.ShowForm = false
		return err
	}

	p.Exchanges = exchanges
	if len(exchanges) == 0 {
		p.ShowForm = false
		p.Warning = "No exchanges available"
	}
	return nil
}

// postedForm returns the submitted values to echo back into the form
func (h *DashboardHandler) postedForm(c *gin.Context) map[string]string {
	form := map[string]string{}
	if err := c.Request.ParseForm(); err != nil {
		return form
	}
	for key, values := range c.Request.PostForm {
		if key == secretField || len(values) == 0 {
			continue
		}
		form[key] = values[0]
	}
	return form
}

func (h *DashboardHandler) render(c *gin.Context, p page, err error, prefix string) {
	status := http.StatusOK
	if err != nil {
		status = errorStatus(err)
		p.Error = errorMessage(prefix, err)
		h.logger.Warn("Operation failed",
			zap.String("section", string(p.Section.Section)),
			zap.String("option", p.Selected.Key),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.HTML(status, web.PageTemplate, p)
}

func (h *DashboardHandler) renderStatus(c *gin.Context, status int, p page, message string) {
	p.Error = message
	p.ShowForm = false
	c.HTML(status, web.PageTemplate, p)
}

func usersNotice(table *model.Table) string {
	if table.Len() == 0 {
		return "No users found"
	}
	return fmt.Sprintf("Users Found: %d", table.Len())
}
