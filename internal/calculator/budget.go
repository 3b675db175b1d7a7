package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// moneyPlaces is the number of decimal places each share contribution is rounded to.
const moneyPlaces = 2

// ExpenseForBudget represents an expense with the minimal information needed for budget calculations.
type ExpenseForBudget struct {
	Amount  decimal.Decimal
	PayerID string
	Shares  map[string]decimal.Decimal
}

// BudgetSummary is the derived per-participant view of a trip's expenses.
type BudgetSummary struct {
	TotalTripCost    decimal.Decimal
	ParticipantShare map[string]decimal.Decimal // What each participant is responsible for
	ActualPaid       map[string]decimal.Decimal // What each participant paid out
	Balance          map[string]decimal.Decimal // Positive = owed money, Negative = owes money
	Settlements      []DebtEdge
}

// DebtEdge represents a suggested transfer from one participant to another.
type DebtEdge struct {
	From   string // Participant who owes
	To     string // Participant who is owed
	Amount decimal.Decimal
}

// CalculateBudgetSummary aggregates who paid what and who is responsible for what.
//
// Algorithm:
// - totalTripCost is the plain sum of amounts
// - the payer of each expense is credited the full amount
// - each (participant, share) pair adds round(amount × share, 2, HALF_UP)
// - balance = paid - share, for everyone appearing in either map
//
// Rounding happens per contribution, not once on the final sum; callers comparing
// results must reproduce the same order.
func CalculateBudgetSummary(expenses []ExpenseForBudget) BudgetSummary {
	summary := BudgetSummary{
		TotalTripCost:    decimal.Zero,
		ParticipantShare: make(map[string]decimal.Decimal),
		ActualPaid:       make(map[string]decimal.Decimal),
		Balance:          make(map[string]decimal.Decimal),
	}

	for _, e := range expenses {
		summary.TotalTripCost = summary.TotalTripCost.Add(e.Amount)

		if e.PayerID != "" {
			summary.ActualPaid[e.PayerID] = summary.ActualPaid[e.PayerID].Add(e.Amount)
		}

		for participant, share := range e.Shares {
			// shopspring rounds half away from zero, which is HALF_UP.
			contribution := e.Amount.Mul(share).Round(moneyPlaces)
			summary.ParticipantShare[participant] = summary.ParticipantShare[participant].Add(contribution)
		}
	}

	for p := range summary.ActualPaid {
		summary.Balance[p] = decimal.Zero
	}
	for p := range summary.ParticipantShare {
		summary.Balance[p] = decimal.Zero
	}
	for p := range summary.Balance {
		summary.Balance[p] = summary.ActualPaid[p].Sub(summary.ParticipantShare[p])
	}

	summary.Settlements = SimplifyDebts(summary.Balance)
	return summary
}

// SimplifyDebts matches debtors with creditors greedily, largest amounts first,
// to suggest a short list of transfers that zeroes every balance.
// Ties are broken by participant ID so the output is deterministic.
func SimplifyDebts(balances map[string]decimal.Decimal) []DebtEdge {
	type entry struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []entry
	for id, bal := range balances {
		switch {
		case bal.IsPositive():
			creditors = append(creditors, entry{id: id, amount: bal})
		case bal.IsNegative():
			debtors = append(debtors, entry{id: id, amount: bal.Neg()})
		}
	}

	byAmountDesc := func(list []entry) {
		sort.Slice(list, func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].id < list[j].id
		})
	}
	byAmountDesc(creditors)
	byAmountDesc(debtors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}

	return edges
}
