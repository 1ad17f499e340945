package testutil

import (
	"context"
	"sync"

	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
)

// MockRepository is an in-memory tracker.Repository that records calls.
// Setting Err makes every call fail with it; FailOn fails single methods.
type MockRepository struct {
	mu       sync.Mutex
	Snapshot tracker.Snapshot
	Calls    []string
	Err      error
	FailOn   map[string]error
}

var _ tracker.Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (r *MockRepository) record(call string) error {
	r.Calls = append(r.Calls, call)
	if r.Err != nil {
		return r.Err
	}
	return r.FailOn[call]
}

// CallCount returns how many times the named method was called.
func (r *MockRepository) CallCount(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.Calls {
		if c == call {
			count++
		}
	}
	return count
}

// LoadSnapshot returns a copy of the stored records.
func (r *MockRepository) LoadSnapshot(_ context.Context) (*tracker.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("LoadSnapshot"); err != nil {
		return nil, err
	}
	return r.Snapshot.Clone(), nil
}

// SaveMortgage stores m.
func (r *MockRepository) SaveMortgage(_ context.Context, m *loans.Mortgage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SaveMortgage"); err != nil {
		return err
	}
	stored := *m
	r.Snapshot.Mortgage = &stored
	return nil
}

// DeleteMortgage clears the mortgage.
func (r *MockRepository) DeleteMortgage(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("DeleteMortgage"); err != nil {
		return err
	}
	r.Snapshot.Mortgage = nil
	return nil
}

// SaveAccount inserts or replaces an account.
func (r *MockRepository) SaveAccount(_ context.Context, a retirement.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SaveAccount"); err != nil {
		return err
	}
	for i := range r.Snapshot.Accounts {
		if r.Snapshot.Accounts[i].ID == a.ID {
			r.Snapshot.Accounts[i] = a
			return nil
		}
	}
	r.Snapshot.Accounts = append(r.Snapshot.Accounts, a)
	return nil
}

// DeleteAccount removes an account and its contributions.
func (r *MockRepository) DeleteAccount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("DeleteAccount"); err != nil {
		return err
	}
	var accounts []retirement.Account
	for _, a := range r.Snapshot.Accounts {
		if a.ID != id {
			accounts = append(accounts, a)
		}
	}
	var contributions []retirement.Contribution
	for _, c := range r.Snapshot.Contributions {
		if c.AccountID != id {
			contributions = append(contributions, c)
		}
	}
	r.Snapshot.Accounts = accounts
	r.Snapshot.Contributions = contributions
	return nil
}

// SaveContribution inserts or replaces a contribution.
func (r *MockRepository) SaveContribution(_ context.Context, c retirement.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SaveContribution"); err != nil {
		return err
	}
	for i := range r.Snapshot.Contributions {
		if r.Snapshot.Contributions[i].ID == c.ID {
			r.Snapshot.Contributions[i] = c
			return nil
		}
	}
	r.Snapshot.Contributions = append(r.Snapshot.Contributions, c)
	return nil
}

// AddContribution applies both writes, or neither when either one is set to
// fail through FailOn.
func (r *MockRepository) AddContribution(_ context.Context, c retirement.Contribution, account retirement.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("AddContribution"); err != nil {
		return err
	}
	for _, step := range []string{"SaveContribution", "SaveAccount"} {
		if err := r.FailOn[step]; err != nil {
			return err
		}
	}

	r.Snapshot.Contributions = append(r.Snapshot.Contributions, c)
	for i := range r.Snapshot.Accounts {
		if r.Snapshot.Accounts[i].ID == account.ID {
			r.Snapshot.Accounts[i] = account
			return nil
		}
	}
	r.Snapshot.Accounts = append(r.Snapshot.Accounts, account)
	return nil
}

// DeleteContribution removes one contribution.
func (r *MockRepository) DeleteContribution(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("DeleteContribution"); err != nil {
		return err
	}
	var contributions []retirement.Contribution
	for _, c := range r.Snapshot.Contributions {
		if c.ID != id {
			contributions = append(contributions, c)
		}
	}
	r.Snapshot.Contributions = contributions
	return nil
}

// SaveCategory inserts or replaces a category.
func (r *MockRepository) SaveCategory(_ context.Context, c spending.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SaveCategory"); err != nil {
		return err
	}
	for i := range r.Snapshot.Categories {
		if r.Snapshot.Categories[i].ID == c.ID {
			r.Snapshot.Categories[i] = c
			return nil
		}
	}
	r.Snapshot.Categories = append(r.Snapshot.Categories, c)
	return nil
}

// DeleteCategory removes one category.
func (r *MockRepository) DeleteCategory(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("DeleteCategory"); err != nil {
		return err
	}
	var categories []spending.Category
	for _, c := range r.Snapshot.Categories {
		if c.ID != id {
			categories = append(categories, c)
		}
	}
	r.Snapshot.Categories = categories
	return nil
}

// SaveTransaction inserts or replaces a transaction.
func (r *MockRepository) SaveTransaction(_ context.Context, tx spending.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("SaveTransaction"); err != nil {
		return err
	}
	for i := range r.Snapshot.Transactions {
		if r.Snapshot.Transactions[i].ID == tx.ID {
			r.Snapshot.Transactions[i] = tx
			return nil
		}
	}
	r.Snapshot.Transactions = append(r.Snapshot.Transactions, tx)
	return nil
}

// DeleteTransaction removes one transaction.
func (r *MockRepository) DeleteTransaction(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("DeleteTransaction"); err != nil {
		return err
	}
	var transactions []spending.Transaction
	for _, tx := range r.Snapshot.Transactions {
		if tx.ID != id {
			transactions = append(transactions, tx)
		}
	}
	r.Snapshot.Transactions = transactions
	return nil
}

// ReplaceSnapshot swaps in a copy of snapshot.
func (r *MockRepository) ReplaceSnapshot(_ context.Context, snapshot *tracker.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record("ReplaceSnapshot"); err != nil {
		return err
	}
	r.Snapshot = *snapshot.Clone()
	return nil
}
