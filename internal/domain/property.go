package domain

import "github.com/shopspring/decimal"

// Property represents a tradable instrument: a fractional stake in a listed
// property. LTP is the last traded price; it starts at zero for a property
// that has never traded and is updated only by executed trades.
type Property struct {
	PropertyID  int64           `json:"property_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Location    string          `json:"location"`
	LTP         decimal.Decimal `json:"ltp"`
}
