package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the store currency
const DefaultCurrency = "INR"

// minorUnitExp is the number of decimal places of the minor unit (paise, cents)
const minorUnitExp = 2

// Money is an amount in a currency
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates Money rounded to the currency's minor unit
func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{
		Amount:   amount.Round(minorUnitExp),
		Currency: strings.ToUpper(currency),
	}
}

// MoneyFromMinorUnits converts an integer amount in minor units (e.g. paise) to Money
func MoneyFromMinorUnits(units int64, currency string) Money {
	return NewMoney(decimal.New(units, -minorUnitExp), currency)
}

// MinorUnits returns the amount in minor units
func (m Money) MinorUnits() int64 {
	return m.Amount.Shift(minorUnitExp).Round(0).IntPart()
}

// IsPositive reports whether the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}
