package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and form format of date parameters
const DateLayout = "2006-01-02"

// Function is one of the read-only database functions the dashboard invokes
type Function string

const (
	FunctionSignalCount             Function = "signal-count"
	FunctionStrategyFollowersCount  Function = "strategy-followers-count"
	FunctionUsersByStrategyCurrency Function = "users-by-strategy-currency"
)

type functionInfo struct {
	title   string
	heading string
	routine string
	alias   string
}

var functionInfos = map[Function]functionInfo{
	FunctionSignalCount: {
		title:   "Get Signal Count By Strategy/Currency",
		heading: "Count Signals by Strategy and Currency",
		routine: "GetSignalCountByStrategyCurrencyAndDateRange",
		alias:   "SignalCount",
	},
	FunctionStrategyFollowersCount: {
		title:   "Get Strategy Followers Count",
		heading: "Count Strategy Followers",
		routine: "GetStrategyFollowersCount",
		alias:   "FollowerCount",
	},
	FunctionUsersByStrategyCurrency: {
		title:   "Get Users By Strategy And Currency",
		heading: "Get Users by Strategy and Currency",
		routine: "GetUsersByStrategyAndCurrency",
	},
}

// Functions lists the functions in menu order
func Functions() []Function {
	return []Function{
		FunctionSignalCount,
		FunctionStrategyFollowersCount,
		FunctionUsersByStrategyCurrency,
	}
}

// ParseFunction maps a key to a function
func ParseFunction(key string) (Function, bool) {
	f := Function(key)
	_, ok := functionInfos[f]
	return f, ok
}

func (f Function) Title() string   { return functionInfos[f].title }
func (f Function) Heading() string { return functionInfos[f].heading }

// Routine is the database function name
func (f Function) Routine() string { return functionInfos[f].routine }

// Alias names the single column of a scalar function result
func (f Function) Alias() string { return functionInfos[f].alias }

// SignalCountRequest selects a strategy/currency pair and a date range.
// The range is not required to be ordered.
type SignalCountRequest struct {
	Strategy  string `json:"strategy" form:"strategy" binding:"required"`
	Currency  string `json:"currency" form:"currency" binding:"required"`
	StartDate string `json:"startDate" form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" form:"end_date" binding:"required,datetime=2006-01-02"`
}

// Range parses both dates
func (r SignalCountRequest) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	return start, end, nil
}

// StrategyFollowersRequest selects a strategy
type StrategyFollowersRequest struct {
	Strategy string `json:"strategy" form:"strategy" binding:"required"`
}

// UsersByStrategyCurrencyRequest selects a strategy/currency pair
type UsersByStrategyCurrencyRequest struct {
	Strategy string `json:"strategy" form:"strategy" binding:"required"`
	Currency string `json:"currency" form:"currency" binding:"required"`
}
