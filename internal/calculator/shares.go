package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
)

var (
	// ShareSumTolerance is how far the sum of shares may drift from 1.
	ShareSumTolerance = decimal.New(1, -6)

	ErrShareSum      = apperrors.Validation("Sum of participant shares must equal 1.0")
	ErrNegativeShare = apperrors.Validation("Participant shares must not be negative")
	ErrEmptyShareKey = apperrors.Validation("Participant share must reference a participant")
)

// ValidateShares checks that every share is non-negative and that they sum to 1 ± ShareSumTolerance.
// An empty mapping is treated as "not supplied" and passes.
func ValidateShares(shares map[string]decimal.Decimal) error {
	if len(shares) == 0 {
		return nil
	}

	sum := decimal.Zero
	for participant, share := range shares {
		if participant == "" {
			return ErrEmptyShareKey
		}
		if share.IsNegative() {
			return ErrNegativeShare
		}
		sum = sum.Add(share)
	}

	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(ShareSumTolerance) {
		return ErrShareSum
	}
	return nil
}

// ValidateSuppliedShares is ValidateShares for a mapping the caller explicitly provided:
// an empty mapping sums to zero and is rejected.
func ValidateSuppliedShares(shares map[string]decimal.Decimal) error {
	if len(shares) == 0 {
		return ErrShareSum
	}
	return ValidateShares(shares)
}

// EqualShares splits responsibility evenly among participants.
// The last participant absorbs the remainder so the shares sum to exactly 1.
func EqualShares(participants []string) map[string]decimal.Decimal {
	if len(participants) == 0 {
		return nil
	}

	shares := make(map[string]decimal.Decimal, len(participants))
	n := decimal.NewFromInt(int64(len(participants)))
	each := decimal.NewFromInt(1).DivRound(n, 8)
	remaining := decimal.NewFromInt(1)
	for i, p := range participants {
		if i == len(participants)-1 {
			shares[p] = shares[p].Add(remaining)
			break
		}
		shares[p] = shares[p].Add(each)
		remaining = remaining.Sub(each)
	}
	return shares
}
