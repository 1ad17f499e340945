package tracker

import (
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
)

// Snapshot is the full set of entity records owned by a user.
type Snapshot struct {
	Mortgage      *loans.Mortgage           `json:"mortgage,omitempty"`
	Accounts      []retirement.Account      `json:"accounts"`
	Contributions []retirement.Contribution `json:"contributions"`
	Categories    []spending.Category       `json:"categories"`
	Transactions  []spending.Transaction    `json:"transactions"`
}

// Clone returns a deep copy so callers can read it without holding locks.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}

	clone := &Snapshot{
		Accounts:      make([]retirement.Account, len(s.Accounts)),
		Contributions: make([]retirement.Contribution, len(s.Contributions)),
		Categories:    append([]spending.Category{}, s.Categories...),
		Transactions:  append([]spending.Transaction{}, s.Transactions...),
	}
	if s.Mortgage != nil {
		mortgage := *s.Mortgage
		clone.Mortgage = &mortgage
	}
	for i, account := range s.Accounts {
		account.AssetAllocation = append([]retirement.AssetAllocation(nil), account.AssetAllocation...)
		clone.Accounts[i] = account
	}
	copy(clone.Contributions, s.Contributions)
	return clone
}

// Account finds an account by ID.
func (s *Snapshot) Account(id string) (retirement.Account, bool) {
	for _, account := range s.Accounts {
		if account.ID == id {
			return account, true
		}
	}
	return retirement.Account{}, false
}

// Category finds a spending category by ID.
func (s *Snapshot) Category(id string) (spending.Category, bool) {
	for _, category := range s.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return spending.Category{}, false
}
