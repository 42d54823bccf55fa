package views

import (
	"lending/core"
	"lending/pkg/compound"

	"github.com/shopspring/decimal"
)

// Obligation obligation view
type Obligation struct {
	*core.Obligation
	LoanToValue          decimal.Decimal `json:"loan_to_value"`
	RemainingBorrowValue decimal.Decimal `json:"remaining_borrow_value"`
}

// ObligationView obligation with its loan to value
func ObligationView(o *core.Obligation) Obligation {
	view := Obligation{
		Obligation:           o,
		LoanToValue:          decimal.Zero,
		RemainingBorrowValue: compound.RemainingBorrowValue(o).Shopspring(),
	}

	if ltv, err := compound.LoanToValue(o); err == nil {
		view.LoanToValue = ltv.Shopspring()
	}

	return view
}
