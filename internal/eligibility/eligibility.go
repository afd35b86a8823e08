package eligibility

import (
	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

// Ineligibility reasons
const (
	ReasonUnpaidDaysReached  = "unpaid_days_reached"
	ReasonOldestUnpaidAged   = "oldest_unpaid_aged"
	ReasonCreditLimitReached = "credit_limit_reached"
)

// Input carries everything the eligibility decision depends on. It is
// assembled from the customer row, the balance row and the unpaid-usage
// aggregates so the decision itself stays a pure function.
type Input struct {
	ClientType      string
	DayLimit        int
	UnpaidDays      int
	OldestUnpaidAge int
	CreditUsed      decimal.Decimal
	AvailableLimit  decimal.Decimal
}

type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Evaluate decides whether a customer may transact further.
//
// Day-limit customers are blocked once the number of distinct days carrying an
// unpaid completed transaction reaches the day limit, or once the oldest
// unpaid completed transaction is day-limit days old. Postpaid credit-limit
// customers are blocked once unpaid completed usage reaches the available
// limit. Prepaid customers are never blocked by this check.
func Evaluate(in Input) Result {
	switch in.ClientType {
	case models.ClientTypeDayLimit:
		if in.DayLimit <= 0 {
			return Result{Eligible: true}
		}
		if in.UnpaidDays >= in.DayLimit {
			return Result{Eligible: false, Reason: ReasonUnpaidDaysReached}
		}
		if in.OldestUnpaidAge >= in.DayLimit {
			return Result{Eligible: false, Reason: ReasonOldestUnpaidAged}
		}
		return Result{Eligible: true}

	case models.ClientTypePostpaid:
		if in.CreditUsed.GreaterThanOrEqual(in.AvailableLimit) {
			return Result{Eligible: false, Reason: ReasonCreditLimitReached}
		}
		return Result{Eligible: true}

	default:
		return Result{Eligible: true}
	}
}
