package spending

import (
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/finance-tracker/pkg/datetime"
)

// Transaction is one income or expense entry. Amount is never negative;
// Type carries the direction.
type Transaction struct {
	ID          string    `json:"id" yaml:"id"`
	Type        Kind      `json:"type" yaml:"type"`
	Amount      float64   `json:"amount" yaml:"amount"`
	Description string    `json:"description" yaml:"description"`
	CategoryID  string    `json:"categoryId" yaml:"categoryId"`
	Date        string    `json:"date" yaml:"date"`
	IsRecurring bool      `json:"isRecurring" yaml:"isRecurring"`
	RecurringID string    `json:"recurringId,omitempty" yaml:"recurringId,omitempty"`
	Notes       string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Day returns the calendar date of the transaction, or "" when Date does not
// parse.
func (t Transaction) Day() string {
	parsed, err := datetime.ParseDate(t.Date)
	if err != nil {
		return ""
	}
	return datetime.FormatDate(parsed)
}

// Filter selects transactions. Zero fields match everything; From and To are
// inclusive YYYY-MM-DD bounds.
type Filter struct {
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Type        Kind     `json:"type,omitempty"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
	MinAmount   *float64 `json:"minAmount,omitempty"`
	MaxAmount   *float64 `json:"maxAmount,omitempty"`
	Search      string   `json:"search,omitempty"`
}

// Match reports whether tx passes every set criterion. Search is a
// case-insensitive substring match on the description and notes.
func (f Filter) Match(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if len(f.CategoryIDs) > 0 && !contains(f.CategoryIDs, tx.CategoryID) {
		return false
	}
	if f.MinAmount != nil && tx.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && tx.Amount > *f.MaxAmount {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Description), term) &&
			!strings.Contains(strings.ToLower(tx.Notes), term) {
			return false
		}
	}
	if f.From != "" || f.To != "" {
		day := tx.Day()
		if day == "" || (f.From != "" && day < f.From) || (f.To != "" && day > f.To) {
			return false
		}
	}
	return true
}

// FilterTransactions returns the transactions f matches, keeping their order.
func FilterTransactions(transactions []Transaction, f Filter) []Transaction {
	matched := []Transaction{}
	for _, tx := range transactions {
		if f.Match(tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}

// SortNewestFirst orders transactions by date descending, keeping the
// relative order of same-day entries.
func SortNewestFirst(transactions []Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Day() > transactions[j].Day()
	})
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
