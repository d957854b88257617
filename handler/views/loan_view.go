package views

import (
	"veloan/core"

	"github.com/shopspring/decimal"
)

// Loan loan view
type Loan struct {
	core.Loan
	Pools   []*core.Pool    `json:"vote_pools,omitempty"`
	MaxLoan decimal.Decimal `json:"max_loan"`
}

// NewLoan new loan view
func NewLoan(loan *core.Loan, maxLoan decimal.Decimal) Loan {
	return Loan{
		Loan:    *loan,
		Pools:   loan.GetPools(),
		MaxLoan: maxLoan,
	}
}
