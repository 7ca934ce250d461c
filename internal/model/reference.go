package model

import "fmt"

// StrategyCurrencyLabelSeparator joins strategy name and currency symbol in labels
const StrategyCurrencyLabelSeparator = " - "

// StrategyCurrency is a strategy/currency pairing identified by its surrogate id
type StrategyCurrency struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// StrategyCurrencyRow is the joined row the pairing label is derived from
type StrategyCurrencyRow struct {
	ID             int64  `db:"strategy_currency_id"`
	StrategyName   string `db:"strategy_name"`
	CurrencySymbol string `db:"currency_symbol"`
}

// Pairing returns the pairing with its display label
func (r StrategyCurrencyRow) Pairing() StrategyCurrency {
	return StrategyCurrency{
		ID:    r.ID,
		Label: r.StrategyName + StrategyCurrencyLabelSeparator + r.CurrencySymbol,
	}
}

// Exchange is a trading venue known to the back office
type Exchange struct {
	ID   int64  `json:"id" db:"exchange_id"`
	Name string `json:"name" db:"exchange_name"`
}

// Label is the text offered in the delete-exchange selector
func (e Exchange) Label() string {
	return fmt.Sprintf("%d - %s", e.ID, e.Name)
}

// ReferenceData holds the lookup lists loaded at the start of every render pass.
// A list that failed to load is empty and its error is listed in Errors.
type ReferenceData struct {
	Strategies         []string           `json:"strategies"`
	Currencies         []string           `json:"currencies"`
	StrategyCurrencies []StrategyCurrency `json:"strategyCurrencies"`
	Errors             []string           `json:"errors,omitempty"`
}

// NewReferenceData returns empty, non-nil lists
func NewReferenceData() ReferenceData {
	return ReferenceData{
		Strategies:         []string{},
		Currencies:         []string{},
		StrategyCurrencies: []StrategyCurrency{},
	}
}

// UniquePairings keeps one entry per id. A repeated id replaces the earlier
// label but keeps the earlier position.
func UniquePairings(rows []StrategyCurrencyRow) []StrategyCurrency {
	pairs := make([]StrategyCurrency, 0, len(rows))
	index := make(map[int64]int, len(rows))

	for _, row := range rows {
		pair := row.Pairing()
		if i, ok := index[pair.ID]; ok {
			pairs[i] = pair
			continue
		}
		index[pair.ID] = len(pairs)
		pairs = append(pairs, pair)
	}

	return pairs
}
