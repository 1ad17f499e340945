package retirement

import (
	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/mathutil"
	"go.uber.org/zap"
)

// Projector computes growth projections for retirement accounts.
type Projector struct {
	logger *zap.Logger
}

// NewProjector creates a projector. A nil logger is replaced by a no-op one.
func NewProjector(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{logger: logger}
}

// Project projects a single account with a no-op logger.
func Project(account Account, years int, currentAge *int) []Projection {
	return NewProjector(nil).Project(account, years, currentAge)
}

// Combine aggregates projections with a no-op logger.
func Combine(accounts []Account, years int, currentAge *int) []Projection {
	return NewProjector(nil).Combine(accounts, years, currentAge)
}

// Summarize builds a portfolio summary with a no-op logger.
func Summarize(accounts []Account, contributions []Contribution, retirementAge, currentAge *int) Summary {
	return NewProjector(nil).Summarize(accounts, contributions, retirementAge, currentAge)
}

// AnnualContribution normalizes the account's contribution to a yearly
// amount.
func AnnualContribution(account Account) float64 {
	return account.ContributionAmount * account.ContributionFrequency.PeriodsPerYear()
}

// AnnualEmployerMatch is the yearly employer contribution implied by the
// match percentage. The match limit is informational and not applied.
func AnnualEmployerMatch(account Account) float64 {
	return AnnualContribution(account) * account.EmployerMatchPercentage.Fraction()
}

// Project returns years+1 rows for the account. Row 0 holds the current
// balance with no flows. Every later year adds the same contribution and
// match, then grows the whole balance, flows included, by the expected
// return. Horizons beyond MaxProjectionYears are truncated.
func (p *Projector) Project(account Account, years int, currentAge *int) []Projection {
	if years < 0 {
		return nil
	}
	years = min(years, constants.MaxProjectionYears)

	annualContribution := AnnualContribution(account)
	annualMatch := AnnualEmployerMatch(account)
	rate := account.ExpectedReturnRate.Float64()

	projections := make([]Projection, 0, years+1)
	balance := account.CurrentBalance

	for year := 0; year <= years; year++ {
		row := Projection{
			Year:            year,
			Age:             ageAt(currentAge, year),
			StartingBalance: balance,
		}
		if year > 0 {
			row.Contributions = annualContribution
			row.EmployerMatch = annualMatch
			row.Growth = (balance + annualContribution + annualMatch) * rate
		}
		balance = row.StartingBalance + row.Contributions + row.EmployerMatch + row.Growth
		row.EndingBalance = balance

		projections = append(projections, row)
	}

	return projections
}

// Combine projects every active account over the same horizon and sums the
// rows year by year. It returns an empty result only when accounts is
// empty; a list holding only inactive accounts yields zero-valued rows.
// Horizons beyond MaxProjectionYears are truncated.
func (p *Projector) Combine(accounts []Account, years int, currentAge *int) []Projection {
	if len(accounts) == 0 || years < 0 {
		return []Projection{}
	}
	years = min(years, constants.MaxProjectionYears)

	combined := make([]Projection, years+1)
	for year := range combined {
		combined[year] = Projection{Year: year, Age: ageAt(currentAge, year)}
	}

	for _, account := range accounts {
		if !account.IsActive {
			p.logger.Debug("skipping inactive account",
				zap.String("op", "retirement.Combine"),
				zap.String("account", account.Name),
			)
			continue
		}

		for year, row := range p.Project(account, years, currentAge) {
			combined[year].StartingBalance += row.StartingBalance
			combined[year].Contributions += row.Contributions
			combined[year].EmployerMatch += row.EmployerMatch
			combined[year].Growth += row.Growth
			combined[year].EndingBalance += row.EndingBalance
		}
	}

	return combined
}

// ActiveAccounts returns the accounts flagged active, preserving order.
func ActiveAccounts(accounts []Account) []Account {
	active := make([]Account, 0, len(accounts))
	for _, account := range accounts {
		if account.IsActive {
			active = append(active, account)
		}
	}
	return active
}

// TotalBalance sums the current balance of active accounts.
func TotalBalance(accounts []Account) float64 {
	return mathutil.SumBy(ActiveAccounts(accounts), func(a Account) float64 { return a.CurrentBalance })
}

// Summarize reports balances and lifetime contributions, and projects the
// portfolio to retirement when the current age is known and below the
// retirement age. A nil retirementAge means DefaultRetirementAge.
//
// Contribution totals come from the whole ledger, not only active accounts,
// so TotalGrowth is a residual that may be negative.
func (p *Projector) Summarize(accounts []Account, contributions []Contribution, retirementAge, currentAge *int) Summary {
	active := ActiveAccounts(accounts)

	summary := Summary{
		TotalBalance:       mathutil.SumBy(active, func(a Account) float64 { return a.CurrentBalance }),
		TotalContributed:   mathutil.SumBy(contributions, func(c Contribution) float64 { return c.EmployeeAmount }),
		TotalEmployerMatch: mathutil.SumBy(contributions, func(c Contribution) float64 { return c.EmployerAmount }),
		AccountCount:       len(active),
	}
	summary.TotalGrowth = summary.TotalBalance - summary.TotalContributed - summary.TotalEmployerMatch

	target := constants.DefaultRetirementAge
	if retirementAge != nil {
		target = *retirementAge
	}
	if currentAge == nil || target <= *currentAge {
		return summary
	}

	years := target - *currentAge
	summary.YearsToRetirement = &years

	projections := p.Combine(accounts, years, currentAge)
	if len(projections) == 0 {
		p.logger.Debug("no accounts to project",
			zap.String("op", "retirement.Summarize"),
			zap.Int("years", years),
		)
		return summary
	}

	projected := projections[len(projections)-1].EndingBalance
	income := MonthlyIncome(projected)
	summary.ProjectedBalanceAtRetirement = &projected
	summary.MonthlyIncomeAtRetirement = &income

	return summary
}

// MonthlyIncome estimates after-tax monthly income from a balance using the
// 4% withdrawal rule and a flat 22% tax.
func MonthlyIncome(balance float64) float64 {
	return balance * constants.WithdrawalRate * constants.AfterTaxShare / constants.MonthsPerYear
}

func ageAt(currentAge *int, year int) *int {
	if currentAge == nil {
		return nil
	}
	age := *currentAge + year
	return &age
}
