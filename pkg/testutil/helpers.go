// Package testutil provides common fixtures and fakes for testing.
package testutil

import (
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/units"
)

// FindAccount finds an account by name in the accounts slice.
// Returns a pointer to the account if found, nil otherwise.
func FindAccount(accounts []retirement.Account, name string) *retirement.Account {
	for i := range accounts {
		if accounts[i].Name == name {
			return &accounts[i]
		}
	}
	return nil
}

// SampleMortgage returns a 30-year $300,000 mortgage at 6% starting
// 2024-01-01 with its payment already derived.
func SampleMortgage() loans.Mortgage {
	m := loans.Mortgage{
		Name:              "Primary Residence",
		OriginalPrincipal: 300000,
		CurrentBalance:    300000,
		InterestRate:      0.06,
		TermMonths:        360,
		StartDate:         datetime.MustParseTime(datetime.DateLayout, "2024-01-01"),
		EscrowAmount:      400,
		IsActive:          true,
	}
	m.RecalculatePayment()
	return m
}

// SampleAccount returns an active 401(k) contributing $500 per paycheck with
// a 50% employer match and a 7% expected return.
func SampleAccount(name string) retirement.Account {
	return retirement.Account{
		Name:                    name,
		AccountType:             retirement.AccountType401k,
		Provider:                "Fidelity",
		CurrentBalance:          50000,
		ContributionAmount:      500,
		ContributionFrequency:   retirement.FrequencyPerPaycheck,
		EmployerMatchPercentage: units.Percent(50),
		VestingPercentage:       units.Percent(100),
		ExpectedReturnRate:      0.07,
		IsActive:                true,
	}
}

// SampleContribution returns a contribution against accountID on date.
func SampleContribution(accountID, date string, balanceAfter float64) retirement.Contribution {
	return retirement.Contribution{
		AccountID:      accountID,
		Date:           date,
		EmployeeAmount: 500,
		EmployerAmount: 250,
		TotalAmount:    750,
		BalanceAfter:   balanceAfter,
	}
}

// SampleCategory returns an expense category with the given name.
func SampleCategory(name string) spending.Category {
	return spending.Category{
		Name:  name,
		Type:  spending.KindExpense,
		Icon:  "ShoppingCart",
		Color: "#F59E0B",
	}
}

// SampleExpense returns an expense of amount in categoryID on date.
func SampleExpense(categoryID, date string, amount float64) spending.Transaction {
	return spending.Transaction{
		Type:        spending.KindExpense,
		Amount:      amount,
		Description: "Groceries",
		CategoryID:  categoryID,
		Date:        date,
	}
}
