package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Procedure is one of the mutating stored procedures. Each call is one
// committed transaction.
type Procedure string

const (
	ProcedureAddExchangeForUser  Procedure = "add-exchange-for-user"
	ProcedureAddStrategyForUser  Procedure = "add-strategy-for-user"
	ProcedureEnableUserStrategy  Procedure = "enable-user-strategy"
	ProcedureDisableUserStrategy Procedure = "disable-user-strategy"
	ProcedureDeleteExchange      Procedure = "delete-exchange"
)

type procedureInfo struct {
	title   string
	heading string
	routine string
	action  string
	success string
}

var procedureInfos = map[Procedure]procedureInfo{
	ProcedureAddExchangeForUser: {
		title:   "Add Exchange For User",
		heading: "Add Exchange to User",
		routine: "Add_Exchange_For_User",
		action:  "Execute",
		success: "Exchange added successfully",
	},
	ProcedureAddStrategyForUser: {
		title:   "Add Strategy For User",
		heading: "Add Strategy to User",
		routine: "Add_Strategy_For_User",
		action:  "Add Strategy",
		success: "Strategy added successfully",
	},
	ProcedureEnableUserStrategy: {
		title:   "Enable User Strategy",
		heading: "Enable User Strategy",
		routine: "Enabling_User_Strategy",
		action:  "Enable Strategy",
		success: "Strategy enabled successfully",
	},
	ProcedureDisableUserStrategy: {
		title:   "Disable User Strategy",
		heading: "Disable User Strategy",
		routine: "Disabling_User_Strategy",
		action:  "Disable Strategy",
		success: "Strategy disabled successfully",
	},
	ProcedureDeleteExchange: {
		title:   "Delete Exchange",
		heading: "Delete Exchange",
		routine: "Delete_Exchange",
		action:  "Delete",
		success: "Exchange deleted successfully",
	},
}

// Procedures lists the procedures in menu order
func Procedures() []Procedure {
	return []Procedure{
		ProcedureAddExchangeForUser,
		ProcedureAddStrategyForUser,
		ProcedureEnableUserStrategy,
		ProcedureDisableUserStrategy,
		ProcedureDeleteExchange,
	}
}

// ParseProcedure maps a key to a procedure
func ParseProcedure(key string) (Procedure, bool) {
	p := Procedure(key)
	_, ok := procedureInfos[p]
	return p, ok
}

func (p Procedure) Title() string   { return procedureInfos[p].title }
func (p Procedure) Heading() string { return procedureInfos[p].heading }

// Routine is the stored procedure name
func (p Procedure) Routine() string { return procedureInfos[p].routine }

// Action is the label of the confirming button
func (p Procedure) Action() string { return procedureInfos[p].action }

// SuccessMessage is shown after the procedure committed
func (p Procedure) SuccessMessage() string { return procedureInfos[p].success }

// AddExchangeRequest links an exchange account to a user
type AddExchangeRequest struct {
	UserID       int64           `json:"userId" form:"user_id" binding:"required,min=1"`
	ExchangeID   int64           `json:"exchangeId" form:"exchange_id" binding:"required,min=1"`
	APIKey       string          `json:"apiKey" form:"api_key"`
	APISecret    string          `json:"apiSecret" form:"api_secret"`
	TotalBalance decimal.Decimal `json:"totalBalance" form:"total_balance,default=0" binding:"min=0"`
}

// MarshalJSON never writes the secret
func (r AddExchangeRequest) MarshalJSON() ([]byte, error) {
	type plain AddExchangeRequest
	out := plain(r)
	out.APISecret = ""
	return json.Marshal(struct {
		plain
		APISecret string `json:"apiSecret,omitempty"`
	}{plain: out})
}

// AuditParams returns the parameters safe to record. The secret is omitted and
// the key is masked.
func (r AddExchangeRequest) AuditParams() map[string]any {
	return map[string]any{
		"userId":       r.UserID,
		"exchangeId":   r.ExchangeID,
		"apiKey":       MaskKey(r.APIKey),
		"totalBalance": r.TotalBalance.String(),
	}
}

// AddStrategyRequest subscribes a user to a strategy/currency pairing
type AddStrategyRequest struct {
	UserID             int64           `json:"userId" form:"user_id" binding:"required,min=1"`
	StrategyCurrencyID int64           `json:"strategyCurrencyId" form:"strategy_currency_id" binding:"required,min=1"`
	SubBalance         decimal.Decimal `json:"subBalance" form:"sub_balance,default=0" binding:"min=0"`
}

func (r AddStrategyRequest) AuditParams() map[string]any {
	return map[string]any{
		"userId":             r.UserID,
		"strategyCurrencyId": r.StrategyCurrencyID,
		"subBalance":         r.SubBalance.String(),
	}
}

// UserStrategyRequest toggles an existing subscription
type UserStrategyRequest struct {
	UserID             int64 `json:"userId" form:"user_id" binding:"required,min=1"`
	StrategyCurrencyID int64 `json:"strategyCurrencyId" form:"strategy_currency_id" binding:"required,min=1"`
}

func (r UserStrategyRequest) AuditParams() map[string]any {
	return map[string]any{
		"userId":             r.UserID,
		"strategyCurrencyId": r.StrategyCurrencyID,
	}
}

// DeleteExchangeRequest confirms the deletion of one exchange
type DeleteExchangeRequest struct {
	ExchangeID int64 `json:"exchangeId" form:"exchange_id" uri:"id" binding:"required,min=1"`
}

func (r DeleteExchangeRequest) AuditParams() map[string]any {
	return map[string]any{
		"exchangeId": r.ExchangeID,
	}
}

// MaskKey keeps the last four characters of a credential
func MaskKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-visible) + key[len(key)-visible:]
}
