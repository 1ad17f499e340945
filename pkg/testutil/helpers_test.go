package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/iwvelando/finance-tracker/pkg/retirement"
)

func TestFindAccount(t *testing.T) {
	accounts := []retirement.Account{
		SampleAccount("Work 401k"),
		SampleAccount("Roth IRA"),
		SampleAccount("Work 401k"),
	}
	accounts[2].CurrentBalance = 1

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
	}{
		{name: "Find existing account", searchName: "Roth IRA", expectFound: true},
		{name: "Search for non-existent account", searchName: "Pension", expectFound: false},
		{name: "Empty search name", searchName: "", expectFound: false},
		{name: "Case sensitive search", searchName: "roth ira", expectFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindAccount(accounts, tt.searchName)
			if tt.expectFound && (result == nil || result.Name != tt.searchName) {
				t.Errorf("FindAccount() expected to find %q, got %+v", tt.searchName, result)
			}
			if !tt.expectFound && result != nil {
				t.Errorf("FindAccount() expected nil for %q, got %q", tt.searchName, result.Name)
			}
		})
	}

	first := FindAccount(accounts, "Work 401k")
	if first != &accounts[0] {
		t.Errorf("FindAccount() should return a pointer to the first match")
	}
	if FindAccount(nil, "Roth IRA") != nil {
		t.Errorf("FindAccount() with nil accounts should return nil")
	}
}

func TestSampleMortgageHasPayment(t *testing.T) {
	m := SampleMortgage()
	if m.MonthlyPayment < 1798 || m.MonthlyPayment > 1800 {
		t.Errorf("expected payment near 1798.65, got %.2f", m.MonthlyPayment)
	}
}

func TestMockRepositoryCascadesAccountDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	account := SampleAccount("Work 401k")
	account.ID = "acct-1"
	contribution := SampleContribution("acct-1", "2024-01-15", 50750)
	contribution.ID = "contrib-1"

	if err := repo.SaveAccount(ctx, account); err != nil {
		t.Fatalf("SaveAccount() error = %v", err)
	}
	if err := repo.SaveContribution(ctx, contribution); err != nil {
		t.Fatalf("SaveContribution() error = %v", err)
	}
	if err := repo.DeleteAccount(ctx, "acct-1"); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	snapshot, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if len(snapshot.Accounts) != 0 || len(snapshot.Contributions) != 0 {
		t.Errorf("expected empty snapshot, got %d accounts and %d contributions",
			len(snapshot.Accounts), len(snapshot.Contributions))
	}
	if repo.CallCount("SaveAccount") != 1 {
		t.Errorf("expected one SaveAccount call, got %d", repo.CallCount("SaveAccount"))
	}
}

func TestMockRepositoryErr(t *testing.T) {
	repo := NewMockRepository()
	repo.Err = errors.New("disk full")

	if err := repo.DeleteMortgage(context.Background()); !errors.Is(err, repo.Err) {
		t.Errorf("expected configured error, got %v", err)
	}
}
