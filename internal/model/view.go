package model

// View is one of the precomputed database views the dashboard can render
type View string

const (
	ViewActiveExchangeUsers         View = "active-exchange-users"
	ViewBestOrderByStrategyCurrency View = "best-order-by-strategy-currency"
	ViewUserExchangeTradeVolume     View = "user-exchange-trade-volume"
)

type viewInfo struct {
	title    string
	relation string
}

var viewInfos = map[View]viewInfo{
	ViewActiveExchangeUsers:         {title: "Active Exchange Users", relation: "ActiveExchangeUsers"},
	ViewBestOrderByStrategyCurrency: {title: "Best Orders By Strategy-Currency", relation: "Best_Order_By_Strategy_Currency"},
	ViewUserExchangeTradeVolume:     {title: "User Exchange Trade Volume", relation: "User_Exchange_Trade_Volume"},
}

// Views lists the views in menu order
func Views() []View {
	return []View{
		ViewActiveExchangeUsers,
		ViewBestOrderByStrategyCurrency,
		ViewUserExchangeTradeVolume,
	}
}

// ParseView maps a key to a view
func ParseView(key string) (View, bool) {
	v := View(key)
	_, ok := viewInfos[v]
	return v, ok
}

// Title is the menu label
func (v View) Title() string {
	return viewInfos[v].title
}

// Relation is the database view name. It only ever comes from this closed set.
func (v View) Relation() string {
	return viewInfos[v].relation
}
