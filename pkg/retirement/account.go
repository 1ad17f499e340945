// Package retirement projects retirement account growth year by year and
// aggregates those projections across a portfolio of accounts.
package retirement

import (
	"time"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/units"
)

// AccountType tags the kind of retirement account.
type AccountType string

// Supported account types.
const (
	AccountType401k     AccountType = "401k"
	AccountTypeRoth401k AccountType = "roth-401k"
	AccountTypeIRA      AccountType = "ira"
	AccountTypeRothIRA  AccountType = "roth-ira"
	AccountType403b     AccountType = "403b"
	AccountTypePension  AccountType = "pension"
)

// AccountTypes lists every supported account type in display order.
var AccountTypes = []AccountType{
	AccountType401k,
	AccountTypeRoth401k,
	AccountTypeIRA,
	AccountTypeRothIRA,
	AccountType403b,
	AccountTypePension,
}

// Valid reports whether t is one of the supported account types.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ContributionFrequency is how often the employee contribution is made.
type ContributionFrequency string

// Supported contribution frequencies.
const (
	FrequencyPerPaycheck ContributionFrequency = "per-paycheck"
	FrequencyMonthly     ContributionFrequency = "monthly"
	FrequencyYearly      ContributionFrequency = "yearly"
)

// Valid reports whether f is a supported frequency.
func (f ContributionFrequency) Valid() bool {
	switch f {
	case FrequencyPerPaycheck, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// PeriodsPerYear returns how many contributions land in a year. Anything
// other than per-paycheck or monthly counts once per year.
func (f ContributionFrequency) PeriodsPerYear() float64 {
	switch f {
	case FrequencyPerPaycheck:
		return constants.PaychecksPerYear
	case FrequencyMonthly:
		return constants.MonthsPerYear
	default:
		return 1
	}
}

// AssetAllocation describes one slice of an account's holdings. It is
// informational and does not affect projections.
type AssetAllocation struct {
	AssetClass string        `json:"assetClass" yaml:"assetClass"`
	Percentage units.Percent `json:"percentage" yaml:"percentage"`
	FundName   string        `json:"fundName,omitempty" yaml:"fundName,omitempty"`
	Ticker     string        `json:"ticker,omitempty" yaml:"ticker,omitempty"`
}

// Account is a retirement account record.
type Account struct {
	ID                      string                `json:"id"`
	Name                    string                `json:"name"`
	AccountType             AccountType           `json:"accountType"`
	Provider                string                `json:"provider,omitempty"`
	EmployerName            string                `json:"employerName,omitempty"`
	CurrentBalance          float64               `json:"currentBalance"`
	ContributionAmount      float64               `json:"contributionAmount"`
	ContributionFrequency   ContributionFrequency `json:"contributionFrequency"`
	EmployerMatchPercentage units.Percent         `json:"employerMatchPercentage,omitempty"`
	EmployerMatchLimit      float64               `json:"employerMatchLimit,omitempty"`
	VestingPercentage       units.Percent         `json:"vestingPercentage"`
	ExpectedReturnRate      units.Rate            `json:"expectedReturnRate"`
	AssetAllocation         []AssetAllocation     `json:"assetAllocation,omitempty"`
	IsActive                bool                  `json:"isActive"`
	Notes                   string                `json:"notes,omitempty"`
	CreatedAt               time.Time             `json:"createdAt"`
	UpdatedAt               time.Time             `json:"updatedAt"`
}

// Contribution is a historical deposit into an account.
type Contribution struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	Date           string    `json:"date"`
	EmployeeAmount float64   `json:"employeeAmount"`
	EmployerAmount float64   `json:"employerAmount"`
	TotalAmount    float64   `json:"totalAmount"`
	BalanceAfter   float64   `json:"balanceAfter"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Projection is one simulated year. Year 0 is the current state with no
// flows.
type Projection struct {
	Year            int     `json:"year"`
	Age             *int    `json:"age,omitempty"`
	StartingBalance float64 `json:"startingBalance"`
	Contributions   float64 `json:"contributions"`
	EmployerMatch   float64 `json:"employerMatch"`
	Growth          float64 `json:"growth"`
	EndingBalance   float64 `json:"endingBalance"`
}

// Summary is a present-state view of the portfolio with an optional
// projection to retirement.
type Summary struct {
	TotalBalance                 float64  `json:"totalBalance"`
	TotalContributed             float64  `json:"totalContributed"`
	TotalEmployerMatch           float64  `json:"totalEmployerMatch"`
	TotalGrowth                  float64  `json:"totalGrowth"`
	AccountCount                 int      `json:"accountCount"`
	ProjectedBalanceAtRetirement *float64 `json:"projectedBalanceAtRetirement,omitempty"`
	YearsToRetirement            *int     `json:"yearsToRetirement,omitempty"`
	MonthlyIncomeAtRetirement    *float64 `json:"monthlyIncomeAtRetirement,omitempty"`
}
