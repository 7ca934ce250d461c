package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/yourorg/trading-admin/internal/database"
	"github.com/yourorg/trading-admin/internal/model"
	"github.com/yourorg/trading-admin/internal/web"
)

type fakeReference struct {
	data         model.ReferenceData
	exchanges    []model.Exchange
	exchangesErr error
	loads        int
}

func (f *fakeReference) Load(ctx context.Context) model.ReferenceData {
	f.loads++
	return f.data
}

func (f *fakeReference) Exchanges(ctx context.Context) ([]model.Exchange, error) {
	if f.exchangesErr != nil {
		return nil, f.exchangesErr
	}
	return append([]model.Exchange{}, f.exchanges...), nil
}

type fakeViews struct {
	rendered []model.View
	err      error
}

func (f *fakeViews) Render(ctx context.Context, view model.View) (*model.Table, error) {
	f.rendered = append(f.rendered, view)
	if f.err != nil {
		return nil, f.err
	}
	table := model.NewTable([]string{"username", "exchange_name"})
	table.Rows = append(table.Rows, []any{"alice", "Binance"})
	return table, nil
}

type fakeFunctions struct {
	count int64
	users *model.Table
	err   error
}

func (f *fakeFunctions) SignalCount(ctx context.Context, req model.SignalCountRequest) (int64, error) {
	return f.count, f.err
}

func (f *fakeFunctions) FollowersCount(ctx context.Context, req model.StrategyFollowersRequest) (int64, error) {
	return f.count, f.err
}

func (f *fakeFunctions) UsersByStrategyAndCurrency(ctx context.Context, req model.UsersByStrategyCurrencyRequest) (*model.Table, error) {
	return f.users, f.err
}

type fakeProcedures struct {
	reference *fakeReference
	calls     []any
	err       error
}

func (f *fakeProcedures) AddExchangeForUser(ctx context.Context, req model.AddExchangeRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeProcedures) AddStrategyForUser(ctx context.Context, req model.AddStrategyRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeProcedures) EnableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeProcedures) DisableUserStrategy(ctx context.Context, req model.UserStrategyRequest) error {
	f.calls = append(f.calls, req)
	return f.err
}

func (f *fakeProcedures) DeleteExchange(ctx context.Context, req model.DeleteExchangeRequest) error {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return f.err
	}
	kept := f.reference.exchanges[:0]
	for _, e := range f.reference.exchanges {
		if e.ID != req.ExchangeID {
			kept = append(kept, e)
		}
	}
	f.reference.exchanges = kept
	return nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type testEnv struct {
	router     *gin.Engine
	reference  *fakeReference
	views      *fakeViews
	functions  *fakeFunctions
	procedures *fakeProcedures
}

func newTestEnv(t *testing.T, pinger Pinger) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reference := &fakeReference{
		data: model.ReferenceData{
			Strategies:         []string{"DCA", "Grid Bot"},
			Currencies:         []string{"BTC", "ETH"},
			StrategyCurrencies: []model.StrategyCurrency{{ID: 1, Label: "Grid Bot - BTC"}},
		},
		exchanges: []model.Exchange{{ID: 1, Name: "Binance"}, {ID: 2, Name: "Kraken"}},
	}
	env := &testEnv{
		reference:  reference,
		views:      &fakeViews{},
		functions:  &fakeFunctions{},
		procedures: &fakeProcedures{reference: reference},
	}

	templates, err := web.Templates()
	if err != nil {
		t.Fatalf("Failed to parse templates: %v", err)
	}

	logger := zaptest.NewLogger(t)
	dashboard := NewDashboardHandler(env.reference, env.views, env.functions, env.procedures, logger)
	dashboard.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC) }
	api := NewAPIHandler(env.reference, env.views, env.functions, env.procedures, logger)

	if pinger == nil {
		pinger = fakePinger{}
	}
	env.router = NewRouter(dashboard, api, pinger, templates, logger)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDashboard_IndexRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/views" {
		t.Errorf("got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestDashboard_ViewsFallBackToFirstOption(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/views?view=DROP+TABLE", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	if len(env.views.rendered) != 1 || env.views.rendered[0] != model.ViewActiveExchangeUsers {
		t.Errorf("rendered: got %v", env.views.rendered)
	}
	if env.reference.loads != 1 {
		t.Errorf("Expected reference data to load once per pass, got %d", env.reference.loads)
	}

	body := w.Body.String()
	for _, want := range []string{
		"Cryptocurrency Trading Management System",
		"Cryptocurrency Trading System v1.1",
		"<th>username</th>",
		"<td>alice</td>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestDashboard_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{
			name:       "connection",
			err:        &database.ConnectionError{Addr: "db:1433/G2", Err: errors.New("i/o timeout")},
			wantStatus: http.StatusServiceUnavailable,
			wantText:   "Database connection error: i/o timeout",
		},
		{
			name:       "execution",
			err:        &database.ExecutionError{Op: "fetch", Err: errors.New("Invalid object name")},
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Error loading view: Invalid object name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.views.err = tt.err

			w := env.do(httptest.NewRequest(http.MethodGet, "/views?view=user-exchange-trade-volume", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantText) {
				t.Errorf("body missing %q", tt.wantText)
			}
			if !strings.Contains(w.Body.String(), "Run Stored Procedures") {
				t.Error("menu should still render after an error")
			}
		})
	}
}

func TestDashboard_ReferenceErrorsAreShown(t *testing.T) {
	env := newTestEnv(t, nil)
	env.reference.data.Currencies = []string{}
	env.reference.data.Errors = []string{"Error fetching currencies: login failed"}

	w := env.do(httptest.NewRequest(http.MethodGet, "/functions?fn=signal-count", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Error fetching currencies: login failed") {
		t.Error("reference error not shown")
	}
	if !strings.Contains(body, `value="2024-03-15"`) {
		t.Error("dates should default to today")
	}
	if !strings.Contains(body, `<option value="Grid Bot"`) {
		t.Error("strategies should still be offered")
	}
}

func TestDashboard_Functions(t *testing.T) {
	env := newTestEnv(t, nil)
	env.functions.count = 7

	w := env.do(postForm("/functions/signal-count", url.Values{
		"strategy":   {"Grid Bot"},
		"currency":   {"BTC"},
		"start_date": {"2024-02-01"},
		"end_date":   {"2024-01-01"},
	}))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Signal Count: 7") {
		t.Errorf("signal count: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `value="2024-02-01"`) {
		t.Error("submitted date should be echoed")
	}

	w = env.do(postForm("/functions/strategy-followers-count", url.Values{"strategy": {"DCA"}}))
	if !strings.Contains(w.Body.String(), "Followers: 7") {
		t.Errorf("followers: got %d", w.Code)
	}

	w = env.do(postForm("/functions/signal-count", url.Values{"strategy": {"DCA"}, "currency": {"BTC"}, "start_date": {"15/03/2024"}, "end_date": {"2024-03-15"}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: expected 400, got %d", w.Code)
	}
}

func TestDashboard_UsersByStrategyAndCurrency(t *testing.T) {
	env := newTestEnv(t, nil)
	form := url.Values{"strategy": {"DCA"}, "currency": {"ETH"}}

	env.functions.users = model.NewTable([]string{"user_id", "username"})
	w := env.do(postForm("/functions/users-by-strategy-currency", form))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "No users found") {
		t.Errorf("empty result: got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "<th>user_id</th>") {
		t.Error("empty result should not render a table")
	}

	env.functions.users.Rows = append(env.functions.users.Rows, []any{int64(4), "bob"}, []any{int64(5), "carol"})
	w = env.do(postForm("/functions/users-by-strategy-currency", form))
	if !strings.Contains(w.Body.String(), "Users Found: 2") || !strings.Contains(w.Body.String(), "<td>carol</td>") {
		t.Error("users should be listed with a count")
	}
}

func TestDashboard_ZeroUserIDRejectedBeforeServiceCall(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(postForm("/procedures/add-strategy-for-user", url.Values{
		"user_id":              {"0"},
		"strategy_currency_id": {"1"},
		"sub_balance":          {"10"},
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if len(env.procedures.calls) != 0 {
		t.Errorf("service should not be called, got %v", env.procedures.calls)
	}
	if !strings.Contains(w.Body.String(), "Invalid input: userId is required") {
		t.Error("validation message not shown")
	}
}

func TestDashboard_NegativeBalanceRejected(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(postForm("/procedures/add-exchange-for-user", url.Values{
		"user_id":       {"1"},
		"exchange_id":   {"1"},
		"total_balance": {"-5"},
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if len(env.procedures.calls) != 0 {
		t.Error("service should not be called")
	}
}

func TestDashboard_SecretIsNotEchoed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.procedures.err = &database.ExecutionError{Op: "Add_Exchange_For_User", Err: errors.New("duplicate exchange link")}

	w := env.do(postForm("/procedures/add-exchange-for-user", url.Values{
		"user_id":       {"3"},
		"exchange_id":   {"4"},
		"api_key":       {"visible-key"},
		"api_secret":    {"hunter2-secret"},
		"total_balance": {"250.75"},
	}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}

	body := w.Body.String()
	if strings.Contains(body, "hunter2-secret") {
		t.Error("secret echoed into the page")
	}
	for _, want := range []string{"Error: duplicate exchange link", `value="visible-key"`, `value="250.75"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	req, ok := env.procedures.calls[0].(model.AddExchangeRequest)
	if !ok || req.APISecret != "hunter2-secret" || req.TotalBalance.String() != "250.75" {
		t.Errorf("service got %+v", env.procedures.calls[0])
	}
}

func TestDashboard_ProcedureSuccessMessages(t *testing.T) {
	tests := []struct {
		path string
		form url.Values
		want string
	}{
		{
			path: "/procedures/add-strategy-for-user",
			form: url.Values{"user_id": {"1"}, "strategy_currency_id": {"1"}},
			want: "Strategy added successfully",
		},
		{
			path: "/procedures/enable-user-strategy",
			form: url.Values{"user_id": {"1"}, "strategy_currency_id": {"1"}},
			want: "Strategy enabled successfully",
		},
		{
			path: "/procedures/disable-user-strategy",
			form: url.Values{"user_id": {"1"}, "strategy_currency_id": {"1"}},
			want: "Strategy disabled successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			env := newTestEnv(t, nil)
			w := env.do(postForm(tt.path, tt.form))
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("got %d, want message %q", w.Code, tt.want)
			}
		})
	}
}

func TestDashboard_DeleteExchange(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/procedures?proc=delete-exchange", nil))
	if !strings.Contains(w.Body.String(), "2 - Kraken") {
		t.Fatal("exchange list should be offered")
	}

	w = env.do(postForm("/procedures/delete-exchange", url.Values{"exchange_id": {"2"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Exchange deleted successfully") {
		t.Error("success message missing")
	}
	if strings.Contains(body, "2 - Kraken") {
		t.Error("deleted exchange is still offered")
	}
	if !strings.Contains(body, "1 - Binance") {
		t.Error("remaining exchange should be offered")
	}
}

func TestDashboard_NoExchangesAvailable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.reference.exchanges = nil

	w := env.do(httptest.NewRequest(http.MethodGet, "/procedures?proc=delete-exchange", nil))
	body := w.Body.String()
	if !strings.Contains(body, "No exchanges available") {
		t.Error("notice missing")
	}
	if strings.Contains(body, `action="/procedures/delete-exchange"`) {
		t.Error("delete form should not be offered")
	}
}

func TestDashboard_DeleteExchangeWithDependents(t *testing.T) {
	env := newTestEnv(t, nil)
	env.procedures.err = &database.ExecutionError{
		Op:  "Delete_Exchange",
		Err: errors.New("exchange 1 is still linked to user accounts"),
	}

	w := env.do(postForm("/procedures/delete-exchange", url.Values{"exchange_id": {"1"}}))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Delete error: exchange 1 is still linked to user accounts") {
		t.Error("delete error missing")
	}
	if !strings.Contains(body, "1 - Binance") {
		t.Error("exchange should still be offered")
	}
	if strings.Contains(body, "Exchange deleted successfully") {
		t.Error("success message shown for a failed delete")
	}
}

func TestDashboard_EmptyBalanceRejected(t *testing.T) {
	tests := []struct {
		path string
		form url.Values
		want string
	}{
		{
			path: "/procedures/add-exchange-for-user",
			form: url.Values{"user_id": {"1"}, "exchange_id": {"1"}, "total_balance": {""}},
			want: "Invalid input: totalBalance must be a number",
		},
		{
			path: "/procedures/add-strategy-for-user",
			form: url.Values{"user_id": {"1"}, "strategy_currency_id": {"1"}, "sub_balance": {""}},
			want: "Invalid input: subBalance must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			env := newTestEnv(t, nil)
			w := env.do(postForm(tt.path, tt.form))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
			if len(env.procedures.calls) != 0 {
				t.Error("service should not be called")
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestDashboard_MissingBalanceDefaultsToZero(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(postForm("/procedures/add-strategy-for-user", url.Values{"user_id": {"1"}, "strategy_currency_id": {"1"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	req, ok := env.procedures.calls[0].(model.AddStrategyRequest)
	if !ok || !req.SubBalance.IsZero() {
		t.Errorf("service got %+v", env.procedures.calls[0])
	}
}

func TestAPI_GetView(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/views/Users", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown view: expected 404, got %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/views/best-order-by-strategy-currency", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Data model.Table `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data.Columns) != 2 || len(resp.Data.Rows) != 1 {
		t.Errorf("got %+v", resp.Data)
	}
}

func TestAPI_Functions(t *testing.T) {
	env := newTestEnv(t, nil)
	env.functions.count = 3

	w := env.do(postJSON("/api/v1/functions/signal-count",
		`{"strategy":"Grid Bot","currency":"BTC","startDate":"2024-01-01","endDate":"2024-01-31"}`))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"message":"Signal Count: 3"`) {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}

	env.functions.err = &database.ExecutionError{Op: "GetStrategyFollowersCount", Err: errors.New("function returned NULL")}
	w = env.do(postJSON("/api/v1/functions/strategy-followers-count", `{"strategy":"DCA"}`))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}

	w = env.do(postJSON("/api/v1/functions/users-by-strategy-currency", `{"strategy":"DCA"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing currency: expected 400, got %d", w.Code)
	}
}

func TestAPI_Procedures(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(postJSON("/api/v1/procedures/add-exchange-for-user",
		`{"userId":1,"exchangeId":2,"apiKey":"k","apiSecret":"s","totalBalance":"12.5"}`))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Exchange added successfully") {
		t.Errorf("got %d %s", w.Code, w.Body.String())
	}

	w = env.do(postJSON("/api/v1/procedures/add-strategy-for-user", `{"userId":0,"strategyCurrencyId":1,"subBalance":1}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero user id: expected 400, got %d", w.Code)
	}

	w = env.do(postJSON("/api/v1/procedures/enable-user-strategy", `{"userId":"one"}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected 400, got %d", w.Code)
	}

	if len(env.procedures.calls) != 1 {
		t.Errorf("Expected exactly one service call, got %d", len(env.procedures.calls))
	}
}

func TestAPI_DeleteExchange(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/exchanges/0", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero id: expected 400, got %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/exchanges/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Message string           `json:"message"`
		Data    []model.Exchange `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Message != "Exchange deleted successfully" {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != 2 {
		t.Errorf("refreshed list: got %+v", resp.Data)
	}
}

func TestAPI_DeleteExchangeWithDependents(t *testing.T) {
	env := newTestEnv(t, nil)
	env.procedures.err = &database.ExecutionError{
		Op:  "Delete_Exchange",
		Err: errors.New("exchange 1 is still linked to user accounts"),
	}

	w := env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/exchanges/1", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", w.Code)
	}

	var resp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error != "Delete error: exchange 1 is still linked to user accounts" {
		t.Errorf("error: got %q", resp.Error)
	}
	if resp.Message != "" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/exchanges", nil))
	var list struct {
		Data []model.Exchange `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list.Data) != 2 || list.Data[0].ID != 1 {
		t.Errorf("exchange list changed: %+v", list.Data)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, fakePinger{err: &database.ConnectionError{Addr: "db:1433/G2", Err: errors.New("connection refused")}})

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("liveness: got %d", w.Code)
	}

	w = env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness: expected 503, got %d", w.Code)
	}
}
