package loans

import (
	"math"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/units"
	"go.uber.org/zap"
)

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal float64, annualRate units.Rate, termMonths int) float64 {
	monthlyRate := annualRate.Monthly()
	if monthlyRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / float64(termMonths)
	}

	power := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * (monthlyRate * power) / (power - 1)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(balance float64, annualRate units.Rate) float64 {
	return balance * annualRate.Monthly()
}

// ScheduleCap is the maximum number of payments generated for a term.
func ScheduleCap(termMonths int) int {
	return constants.ScheduleCapMultiplier * termMonths
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule produces the schedule with a package-level no-op logger.
func GenerateSchedule(mortgage *Mortgage, extraPayment float64) Schedule {
	return NewAmortizationScheduleGenerator(nil).GenerateSchedule(mortgage, extraPayment)
}

// GenerateSchedule simulates the loan month by month from the original
// principal, applying a constant extra principal payment from the first
// month. The current balance of the record is not consulted: the schedule
// always describes the full life of the original loan.
//
// Generation stops once the balance falls to PayoffThreshold or after
// ScheduleCap(TermMonths) payments, whichever comes first.
func (g *AmortizationScheduleGenerator) GenerateSchedule(mortgage *Mortgage, extraPayment float64) Schedule {
	var schedule Schedule
	if mortgage == nil {
		return schedule
	}

	limit := ScheduleCap(mortgage.TermMonths)
	balance := mortgage.OriginalPrincipal
	cumulativePrincipal := 0.0
	cumulativeInterest := 0.0

	for i := 1; balance > constants.PayoffThreshold && i <= limit; i++ {
		interest := CalculateInterestPayment(balance, mortgage.InterestRate)
		principal := mortgage.MonthlyPayment - interest + extraPayment

		// Final payment pays off exactly.
		if principal > balance {
			principal = balance
		}

		balance -= principal
		cumulativePrincipal += principal
		cumulativeInterest += interest

		schedule.Entries = append(schedule.Entries, AmortizationEntry{
			PaymentNumber:       i,
			Date:                datetime.FormatDate(datetime.AddMonths(mortgage.StartDate, i)),
			Payment:             mortgage.MonthlyPayment + extraPayment,
			Principal:           principal,
			Interest:            interest,
			ExtraPayment:        extraPayment,
			RemainingBalance:    math.Max(0, balance),
			CumulativePrincipal: cumulativePrincipal,
			CumulativeInterest:  cumulativeInterest,
			Equity:              cumulativePrincipal,
		})
	}

	// A non-finite payment leaves a NaN balance, which never amortizes either.
	if !(balance <= constants.PayoffThreshold) {
		schedule.Capped = true
		g.logger.Debug("schedule reached iteration cap without amortizing",
			zap.String("op", "loans.GenerateSchedule"),
			zap.String("mortgage", mortgage.Name),
			zap.Int("cap", limit),
			zap.Float64("remaining_balance", balance),
		)
	}

	return schedule
}
