package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/spending"
)

// ValidateCategory checks a spending category.
func ValidateCategory(c spending.Category) error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("category name is required"))
	}
	if !c.Type.Valid() {
		errs = append(errs, fmt.Errorf("category %q: type must be %s or %s, got %q",
			c.Name, spending.KindIncome, spending.KindExpense, c.Type))
	}
	return errors.Join(errs...)
}

// ValidateTransaction checks an income or expense entry. Whether the
// category exists is left to the caller.
func ValidateTransaction(tx spending.Transaction) error {
	var errs []error
	if !tx.Type.Valid() {
		errs = append(errs, fmt.Errorf("transaction %q: type must be %s or %s, got %q",
			tx.Description, spending.KindIncome, spending.KindExpense, tx.Type))
	}
	if err := ValidateNonNegative("amount", tx.Amount); err != nil {
		errs = append(errs, fmt.Errorf("transaction %q: %w", tx.Description, err))
	}
	if tx.CategoryID == "" {
		errs = append(errs, fmt.Errorf("transaction %q: category is required", tx.Description))
	}
	if err := ValidateDate("transaction date", tx.Date); err != nil {
		errs = append(errs, fmt.Errorf("transaction %q: %w", tx.Description, err))
	}
	return errors.Join(errs...)
}

// ValidateTrendMonths checks a spending trend window.
func ValidateTrendMonths(months int) error {
	if months < 1 || months > constants.MaxTrendMonths {
		return fmt.Errorf("months must be between 1 and %d, got %d", constants.MaxTrendMonths, months)
	}
	return nil
}
