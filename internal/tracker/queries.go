package tracker

import (
	"fmt"

	"github.com/iwvelando/finance-tracker/internal/metrics"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
)

// Schedule amortizes the mortgage with the given extra monthly principal.
func (t *Tracker) Schedule(extraPayment float64) (loans.Schedule, error) {
	mortgage, ok := t.Mortgage()
	if !ok {
		metrics.Calculations.WithLabelValues("schedule", metrics.StatusEmpty).Inc()
		return loans.Schedule{}, ErrNoMortgage
	}

	schedule := t.generator.GenerateSchedule(mortgage, extraPayment)
	metrics.Calculations.WithLabelValues("schedule", metrics.StatusSuccess).Inc()
	if schedule.Capped {
		metrics.CappedSchedules.Inc()
	}
	return schedule, nil
}

// MortgageSummary summarizes the mortgage, or returns nil when there is none.
func (t *Tracker) MortgageSummary() *loans.MortgageSummary {
	mortgage, _ := t.Mortgage()
	summary := t.generator.GetSummary(mortgage)
	metrics.Calculations.WithLabelValues("summary", outcome(summary != nil)).Inc()
	return summary
}

// ExtraPaymentImpact compares the mortgage with and without extraMonthly.
func (t *Tracker) ExtraPaymentImpact(extraMonthly float64) *loans.ExtraPaymentScenario {
	mortgage, _ := t.Mortgage()
	impact := t.generator.CalculateImpact(mortgage, extraMonthly)
	metrics.Calculations.WithLabelValues("impact", outcome(impact != nil)).Inc()
	return impact
}

// Projections projects one account forward.
func (t *Tracker) Projections(accountID string, years int, currentAge *int) ([]retirement.Projection, error) {
	account, ok := t.Account(accountID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}
	projections := t.projector.Project(account, years, currentAge)
	metrics.Calculations.WithLabelValues("project", outcome(len(projections) > 0)).Inc()
	return projections, nil
}

// CombinedProjections projects every active account and sums them per year.
func (t *Tracker) CombinedProjections(years int, currentAge *int) []retirement.Projection {
	projections := t.projector.Combine(t.Accounts(), years, currentAge)
	metrics.Calculations.WithLabelValues("combine", outcome(len(projections) > 0)).Inc()
	return projections
}

// TotalBalance sums the current balance of active accounts.
func (t *Tracker) TotalBalance() float64 {
	return retirement.TotalBalance(t.Accounts())
}

// RetirementSummary summarizes the portfolio. A nil retirementAge means the
// default retirement age.
func (t *Tracker) RetirementSummary(retirementAge, currentAge *int) retirement.Summary {
	snapshot := t.Snapshot()
	summary := t.projector.Summarize(snapshot.Accounts, snapshot.Contributions, retirementAge, currentAge)
	metrics.Calculations.WithLabelValues("retirement-summary", metrics.StatusSuccess).Inc()
	return summary
}

func outcome(produced bool) string {
	if produced {
		return metrics.StatusSuccess
	}
	return metrics.StatusEmpty
}
