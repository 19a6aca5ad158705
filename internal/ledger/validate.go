package ledger

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/shopbooks/internal/model"
	"github.com/cleared-dev/shopbooks/internal/period"
)

// AccountChecker tests whether an account name resolves in the chart of
// accounts.
type AccountChecker interface {
	Exists(name string) bool
}

// Validate checks every entry's integrity and returns one fault per problem
// found, stamped with its fiscal period:
//
//   - negative_amount: either amount is below zero
//   - unknown_account: the debit or credit account is not in the chart
//   - unbalanced: a raw entry whose amounts differ; transfers carrying no
//     amounts at all are exempt
func Validate(entries []model.Entry, accounts AccountChecker, cal period.Calendar) []model.Fault {
	var faults []model.Fault

	for _, e := range entries {
		if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
			faults = append(faults, model.NewFault(model.FaultNegativeAmount, e,
				"negative amount (debit %s, credit %s)", e.DebitAmount, e.CreditAmount))
		}

		var unknown []string
		for _, name := range []string{e.Debit, e.Credit} {
			if !accounts.Exists(name) {
				unknown = append(unknown, fmt.Sprintf("%q", name))
			}
		}
		if len(unknown) > 0 {
			faults = append(faults, model.NewFault(model.FaultUnknownAccount, e,
				"unknown account %s", strings.Join(unknown, ", ")))
		}

		if e.IsRaw() && !e.Unvalued() && !e.Balanced() {
			faults = append(faults, model.NewFault(model.FaultUnbalanced, e,
				"debit (%s) != credit (%s)", e.DebitAmount.StringFixed(2), e.CreditAmount.StringFixed(2)))
		}
	}

	cal.Stamp(faults)
	return faults
}
