package views

import (
	"veloan/core"

	"github.com/shopspring/decimal"
)

// Account ledger account view with its locked collateral rows
type Account struct {
	core.Account
	Collaterals []*core.Collateral `json:"collaterals"`
	LockedValue decimal.Decimal    `json:"locked_value"`
	MaxLoan     decimal.Decimal    `json:"max_loan"`
}

// NewAccount new account view
func NewAccount(account *core.Account, collaterals []*core.Collateral, lockedValue, maxLoan decimal.Decimal) Account {
	return Account{
		Account:     *account,
		Collaterals: collaterals,
		LockedValue: lockedValue,
		MaxLoan:     maxLoan,
	}
}
