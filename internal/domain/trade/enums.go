// Package trade holds the commercial enumerations shared by orders and logistics.
package trade

import "slices"

// TradeTerm is the Incoterm of a sales order.
type TradeTerm string

const (
	TradeTermFOB TradeTerm = "FOB"
	TradeTermCIF TradeTerm = "CIF"
	TradeTermCFR TradeTerm = "CFR"
	TradeTermEXW TradeTerm = "EXW"
	TradeTermDDP TradeTerm = "DDP"
	TradeTermDAP TradeTerm = "DAP"
)

// IsValid reports whether t is a known trade term.
func (t TradeTerm) IsValid() bool {
	return slices.Contains([]TradeTerm{TradeTermFOB, TradeTermCIF, TradeTermCFR, TradeTermEXW, TradeTermDDP, TradeTermDAP}, t)
}

// Currency is an ISO-like currency tag.
type Currency string

const (
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyJPY   Currency = "JPY"
	CurrencyGBP   Currency = "GBP"
	CurrencyTHB   Currency = "THB"
	CurrencyVND   Currency = "VND"
	CurrencyMYR   Currency = "MYR"
	CurrencySGD   Currency = "SGD"
	CurrencyPHP   Currency = "PHP"
	CurrencyIDR   Currency = "IDR"
	CurrencyRMB   Currency = "RMB"
	CurrencyOther Currency = "OTHER"
)

var currencies = []Currency{
	CurrencyUSD, CurrencyEUR, CurrencyJPY, CurrencyGBP, CurrencyTHB, CurrencyVND,
	CurrencyMYR, CurrencySGD, CurrencyPHP, CurrencyIDR, CurrencyRMB, CurrencyOther,
}

// IsValid reports whether c is a known currency.
func (c Currency) IsValid() bool {
	return slices.Contains(currencies, c)
}

// PaymentMethod of a sales order.
type PaymentMethod string

const (
	PaymentTT PaymentMethod = "TT"
	PaymentLC PaymentMethod = "LC"
	PaymentDP PaymentMethod = "DP"
	PaymentDA PaymentMethod = "DA"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	return slices.Contains([]PaymentMethod{PaymentTT, PaymentLC, PaymentDP, PaymentDA}, m)
}

// Unit of measure for order lines.
type Unit string

const (
	UnitPiece  Unit = "piece"
	UnitCarton Unit = "carton"
)

// IsValid reports whether u is a known unit.
func (u Unit) IsValid() bool {
	return u == UnitPiece || u == UnitCarton
}

// OrDefault returns u, or carton when u is empty.
func (u Unit) OrDefault() Unit {
	if u == "" {
		return UnitCarton
	}
	return u
}
