// Package validation checks records before they reach the projection engine
// and reports non-fatal warnings for degenerate but legal inputs.
package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/mathutil"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
)

// ValidatePercent checks that a user-facing percentage lies within 0-100.
func ValidatePercent(field string, percent float64) error {
	if !mathutil.IsFinite(percent) || percent < 0 || percent > 100 {
		return fmt.Errorf("%s must be between 0 and 100, got %v", field, percent)
	}
	return nil
}

// ValidateNonNegative checks that an amount is finite and not negative.
func ValidateNonNegative(field string, amount float64) error {
	if !mathutil.IsFinite(amount) || amount < 0 {
		return fmt.Errorf("%s must be a non-negative amount, got %v", field, amount)
	}
	return nil
}

// ValidateDate checks that value is an ISO-8601 calendar date.
func ValidateDate(field, value string) error {
	if _, err := datetime.ParseDate(value); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// ValidateMortgage checks a mortgage record. All problems are reported
// together.
func ValidateMortgage(m *loans.Mortgage) error {
	if m == nil {
		return errors.New("mortgage is nil")
	}

	var errs []error
	if !mathutil.IsFinite(m.OriginalPrincipal) || m.OriginalPrincipal <= 0 {
		errs = append(errs, fmt.Errorf("mortgage %q: original principal must be positive, got %v", m.Name, m.OriginalPrincipal))
	}
	if err := ValidateNonNegative("current balance", m.CurrentBalance); err != nil {
		errs = append(errs, fmt.Errorf("mortgage %q: %w", m.Name, err))
	}
	if rate := m.InterestRate.Float64(); !mathutil.IsFinite(rate) || rate < 0 || rate > 1 {
		errs = append(errs, fmt.Errorf("mortgage %q: interest rate must be between 0 and 1, got %v", m.Name, rate))
	}
	if m.TermMonths <= 0 || m.TermMonths > constants.MaxTermMonths {
		errs = append(errs, fmt.Errorf("mortgage %q: term must be between 1 and %d months, got %d", m.Name, constants.MaxTermMonths, m.TermMonths))
	} else if payment := loans.CalculateMonthlyPayment(m.OriginalPrincipal, m.InterestRate, m.TermMonths); !mathutil.IsFinite(payment) {
		errs = append(errs, fmt.Errorf("mortgage %q: monthly payment is not a finite amount", m.Name))
	}
	if m.StartDate.IsZero() {
		errs = append(errs, fmt.Errorf("mortgage %q: start date is required", m.Name))
	}
	if m.PaymentDay < 0 || m.PaymentDay > 31 {
		errs = append(errs, fmt.Errorf("mortgage %q: payment day must be between 1 and 31, got %d", m.Name, m.PaymentDay))
	}
	errs = append(errs, checkAmounts(fmt.Sprintf("mortgage %q", m.Name), []amountField{
		{"extra payment", m.ExtraPaymentAmount},
		{"escrow", m.EscrowAmount},
		{"pmi", m.PMIAmount},
	})...)

	return errors.Join(errs...)
}

// ValidateAccount checks a retirement account record.
func ValidateAccount(a retirement.Account) error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("account name is required"))
	}
	if !a.AccountType.Valid() {
		errs = append(errs, fmt.Errorf("account %q: unknown account type %q", a.Name, a.AccountType))
	}
	if !a.ContributionFrequency.Valid() {
		errs = append(errs, fmt.Errorf("account %q: unknown contribution frequency %q", a.Name, a.ContributionFrequency))
	}
	errs = append(errs, checkAmounts(fmt.Sprintf("account %q", a.Name), []amountField{
		{"current balance", a.CurrentBalance},
		{"contribution amount", a.ContributionAmount},
		{"employer match limit", a.EmployerMatchLimit},
	})...)
	if err := ValidatePercent("employer match percentage", float64(a.EmployerMatchPercentage)); err != nil {
		errs = append(errs, fmt.Errorf("account %q: %w", a.Name, err))
	}
	if err := ValidatePercent("vesting percentage", float64(a.VestingPercentage)); err != nil {
		errs = append(errs, fmt.Errorf("account %q: %w", a.Name, err))
	}
	if rate := a.ExpectedReturnRate.Float64(); !mathutil.IsFinite(rate) || rate < 0 || rate > 1 {
		errs = append(errs, fmt.Errorf("account %q: expected return rate must be between 0 and 1, got %v", a.Name, rate))
	}

	return errors.Join(errs...)
}

// ValidateContribution checks a contribution ledger entry.
func ValidateContribution(c retirement.Contribution) error {
	var errs []error
	if c.AccountID == "" {
		errs = append(errs, errors.New("contribution account is required"))
	}
	if err := ValidateDate("contribution date", c.Date); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, checkAmounts(fmt.Sprintf("contribution on %s", c.Date), []amountField{
		{"employee amount", c.EmployeeAmount},
		{"employer amount", c.EmployerAmount},
		{"balance after", c.BalanceAfter},
	})...)
	return errors.Join(errs...)
}

// MortgageWarnings reports legal inputs that produce surprising results.
func MortgageWarnings(m *loans.Mortgage) []string {
	if m == nil {
		return nil
	}

	var warnings []string
	firstInterest := loans.CalculateInterestPayment(m.OriginalPrincipal, m.InterestRate)
	if m.MonthlyPayment+m.ExtraPaymentAmount <= firstInterest {
		warnings = append(warnings, fmt.Sprintf("Mortgage '%s' payment of %.2f does not cover the first month's interest of %.2f - schedule will stop at %d payments without paying off",
			m.Name, m.MonthlyPayment+m.ExtraPaymentAmount, firstInterest, loans.ScheduleCap(m.TermMonths)))
	}
	if m.CurrentBalance > m.OriginalPrincipal {
		warnings = append(warnings, fmt.Sprintf("Mortgage '%s' current balance %.2f exceeds original principal %.2f - equity will be negative",
			m.Name, m.CurrentBalance, m.OriginalPrincipal))
	}
	if !m.IsActive {
		warnings = append(warnings, fmt.Sprintf("Mortgage '%s' is marked inactive", m.Name))
	}
	return warnings
}

// AccountWarnings reports accounts that will not contribute to projections
// or whose match settings are ignored.
func AccountWarnings(a retirement.Account) []string {
	var warnings []string
	if !a.IsActive {
		warnings = append(warnings, fmt.Sprintf("Account '%s' is inactive and excluded from combined projections", a.Name))
	}
	if a.EmployerMatchLimit > 0 && retirement.AnnualEmployerMatch(a) > a.EmployerMatchLimit {
		warnings = append(warnings, fmt.Sprintf("Account '%s' employer match limit %.2f is not applied to projections (projected match %.2f/year)",
			a.Name, a.EmployerMatchLimit, retirement.AnnualEmployerMatch(a)))
	}
	return warnings
}

// ValidateProjectionYears checks a projection horizon.
func ValidateProjectionYears(years int) error {
	if years < 0 || years > constants.MaxProjectionYears {
		return fmt.Errorf("years must be between 0 and %d, got %d", constants.MaxProjectionYears, years)
	}
	return nil
}

// ValidateAge checks an optional age. A nil age is valid.
func ValidateAge(field string, age *int) error {
	if age != nil && (*age < 0 || *age > constants.MaxAge) {
		return fmt.Errorf("%s must be between 0 and %d, got %d", field, constants.MaxAge, *age)
	}
	return nil
}

// RetirementAgeWarning reports when no projection to retirement is possible.
func RetirementAgeWarning(currentAge, retirementAge *int) string {
	if currentAge == nil || retirementAge == nil {
		return ""
	}
	if *retirementAge <= *currentAge {
		return fmt.Sprintf("Retirement age %d is not after current age %d - no retirement projection will be produced",
			*retirementAge, *currentAge)
	}
	return ""
}

// Validator gathers warnings across a whole snapshot.
type Validator struct {
	Mortgage      *loans.Mortgage
	Accounts      []retirement.Account
	CurrentAge    *int
	RetirementAge *int
}

// ValidateAll returns every warning for the snapshot.
func (v *Validator) ValidateAll() []string {
	warnings := MortgageWarnings(v.Mortgage)
	for _, account := range v.Accounts {
		warnings = append(warnings, AccountWarnings(account)...)
	}
	if warning := RetirementAgeWarning(v.CurrentAge, v.RetirementAge); warning != "" {
		warnings = append(warnings, warning)
	}
	return warnings
}

type amountField struct {
	name   string
	amount float64
}

func checkAmounts(prefix string, fields []amountField) []error {
	var errs []error
	for _, field := range fields {
		if err := ValidateNonNegative(field.name, field.amount); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
		}
	}
	return errs
}
