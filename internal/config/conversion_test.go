package config

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/units"
)

func floatPtr(v float64) *float64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

func testMortgageConfig() *MortgageConfig {
	return &MortgageConfig{
		Name:              "Home",
		OriginalPrincipal: 300000,
		InterestRate:      6,
		TermMonths:        360,
		StartDate:         "2024-01-01",
		Escrow:            350,
	}
}

func TestToMortgage(t *testing.T) {
	mortgage, err := testMortgageConfig().ToMortgage()
	if err != nil {
		t.Fatalf("ToMortgage() error = %v", err)
	}

	if mortgage.InterestRate != units.Rate(0.06) {
		t.Errorf("InterestRate = %v, expected 0.06", mortgage.InterestRate)
	}
	if mortgage.CurrentBalance != 300000 {
		t.Errorf("CurrentBalance should default to the original principal, got %.2f", mortgage.CurrentBalance)
	}
	if math.Abs(mortgage.MonthlyPayment-1798.65) > 0.01 {
		t.Errorf("MonthlyPayment = %.4f, expected about 1798.65", mortgage.MonthlyPayment)
	}
	if !mortgage.IsActive {
		t.Error("mortgage should default to active")
	}
	if datetime.FormatDate(mortgage.StartDate) != "2024-01-01" {
		t.Errorf("StartDate = %v", mortgage.StartDate)
	}
	if mortgage.ID != RecordID("mortgage", "Home") {
		t.Errorf("expected a name-derived ID, got %q", mortgage.ID)
	}
}

func TestToMortgageErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(mc *MortgageConfig)
		expectErr string
	}{
		{"Bad start date", func(mc *MortgageConfig) { mc.StartDate = "01/01/2024" }, "start date"},
		{"Rate over 100 percent", func(mc *MortgageConfig) { mc.InterestRate = 650 }, "mortgage interest rate must be between 0 and 100"},
		{"Negative principal", func(mc *MortgageConfig) { mc.OriginalPrincipal = -1 }, "original principal must be positive"},
		{"Negative balance", func(mc *MortgageConfig) { mc.CurrentBalance = floatPtr(-5) }, "current balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := testMortgageConfig()
			tt.mutate(mc)
			_, err := mc.ToMortgage()
			if err == nil || !strings.Contains(err.Error(), tt.expectErr) {
				t.Errorf("ToMortgage() error = %v, expected to contain %q", err, tt.expectErr)
			}
		})
	}

	var missing *MortgageConfig
	if mortgage, err := missing.ToMortgage(); mortgage != nil || err != nil {
		t.Errorf("expected nil mortgage and no error for a missing section, got %v, %v", mortgage, err)
	}
}

func TestToAccount(t *testing.T) {
	ac := AccountConfig{
		Name:                    "Employer 401k",
		Type:                    "401k",
		CurrentBalance:          10000,
		ContributionAmount:      500,
		ContributionFrequency:   "monthly",
		EmployerMatchPercentage: 50,
		ExpectedReturnRate:      7,
		AssetAllocation:         []AssetAllocationConfig{{AssetClass: "bonds", Percentage: 40}},
	}

	account, err := ac.ToAccount()
	if err != nil {
		t.Fatalf("ToAccount() error = %v", err)
	}
	if account.ExpectedReturnRate != units.Rate(0.07) {
		t.Errorf("ExpectedReturnRate = %v, expected 0.07", account.ExpectedReturnRate)
	}
	if account.EmployerMatchPercentage != 50 {
		t.Errorf("EmployerMatchPercentage should stay a percentage, got %v", account.EmployerMatchPercentage)
	}
	if account.VestingPercentage != 100 {
		t.Errorf("VestingPercentage should default to 100, got %v", account.VestingPercentage)
	}
	if account.AccountType != retirement.AccountType401k || account.ContributionFrequency != retirement.FrequencyMonthly {
		t.Errorf("unexpected type/frequency %q/%q", account.AccountType, account.ContributionFrequency)
	}
	if !account.IsActive {
		t.Error("account should default to active")
	}
	if len(account.AssetAllocation) != 1 || account.AssetAllocation[0].Percentage != 40 {
		t.Errorf("unexpected allocation %+v", account.AssetAllocation)
	}

	// Projection through the converted record matches the user-facing inputs.
	year1 := retirement.Project(account, 1, nil)[1]
	if year1.Contributions != 6000 || year1.EmployerMatch != 3000 {
		t.Errorf("unexpected projected flows %.2f/%.2f", year1.Contributions, year1.EmployerMatch)
	}

	ac.Type = "brokerage"
	if _, err := ac.ToAccount(); err == nil || !strings.Contains(err.Error(), "unknown account type") {
		t.Errorf("expected unknown account type error, got %v", err)
	}
}

func TestToSnapshot(t *testing.T) {
	conf := &Configuration{
		Mortgage: testMortgageConfig(),
		RetirementAccounts: []AccountConfig{
			{Name: "401k", Type: "401k", CurrentBalance: 10000, ContributionAmount: 500, ContributionFrequency: "monthly", ExpectedReturnRate: 7},
			{ID: "roth-1", Name: "Roth", Type: "roth-ira", CurrentBalance: 2000, ContributionAmount: 7000, ContributionFrequency: "yearly", ExpectedReturnRate: 6, Active: boolPtr(false)},
		},
		Contributions: []ContributionConfig{
			{Account: "401k", Date: "2024-01-15", EmployeeAmount: 500, EmployerAmount: 250, BalanceAfter: 10750},
			{Account: "roth-1", Date: "2024-04-01", EmployeeAmount: 7000, BalanceAfter: 9000},
		},
	}

	snapshot, err := conf.ToSnapshot()
	if err != nil {
		t.Fatalf("ToSnapshot() error = %v", err)
	}
	if snapshot.Mortgage == nil || len(snapshot.Accounts) != 2 || len(snapshot.Contributions) != 2 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
	if snapshot.Contributions[0].AccountID != RecordID("account", "401k") {
		t.Errorf("contribution by name resolved to %q", snapshot.Contributions[0].AccountID)
	}
	if snapshot.Contributions[1].AccountID != "roth-1" {
		t.Errorf("contribution by ID resolved to %q", snapshot.Contributions[1].AccountID)
	}
	if snapshot.Contributions[0].TotalAmount != 750 {
		t.Errorf("TotalAmount = %.2f, expected 750", snapshot.Contributions[0].TotalAmount)
	}

	again, err := conf.ToSnapshot()
	if err != nil {
		t.Fatalf("ToSnapshot() error = %v", err)
	}
	if again.Accounts[0].ID != snapshot.Accounts[0].ID || again.Contributions[0].ID != snapshot.Contributions[0].ID {
		t.Error("expected stable IDs across conversions")
	}
}

func TestToSnapshotRepeatedContributions(t *testing.T) {
	entry := ContributionConfig{Account: "401k", Date: "2024-01-15", EmployeeAmount: 500, BalanceAfter: 10500}
	differentBalance := entry
	differentBalance.BalanceAfter = 11000

	conf := &Configuration{
		RetirementAccounts: []AccountConfig{
			{Name: "401k", Type: "401k", CurrentBalance: 10000, ContributionAmount: 500, ContributionFrequency: "monthly", ExpectedReturnRate: 7},
		},
		Contributions: []ContributionConfig{entry, entry, differentBalance},
	}

	snapshot, err := conf.ToSnapshot()
	if err != nil {
		t.Fatalf("ToSnapshot() error = %v", err)
	}
	ids := map[string]bool{}
	for _, c := range snapshot.Contributions {
		ids[c.ID] = true
	}
	if len(ids) != 3 {
		t.Fatalf("expected three distinct contribution IDs, got %d", len(ids))
	}

	again, err := conf.ToSnapshot()
	if err != nil {
		t.Fatalf("ToSnapshot() error = %v", err)
	}
	for i := range snapshot.Contributions {
		if again.Contributions[i].ID != snapshot.Contributions[i].ID {
			t.Errorf("contribution %d: expected stable ID across conversions", i)
		}
	}

	conf.Contributions[0].ID = "c-1"
	conf.Contributions[1].ID = "c-1"
	if _, err := conf.ToSnapshot(); err == nil || !strings.Contains(err.Error(), "duplicate contribution ID") {
		t.Errorf("expected duplicate contribution ID error, got %v", err)
	}
}

func TestToSnapshotErrors(t *testing.T) {
	t.Run("Unknown account reference", func(t *testing.T) {
		conf := &Configuration{
			Contributions: []ContributionConfig{{Account: "missing", Date: "2024-01-01", EmployeeAmount: 1, BalanceAfter: 1}},
		}
		if _, err := conf.ToSnapshot(); err == nil || !strings.Contains(err.Error(), `unknown account "missing"`) {
			t.Errorf("expected unknown account error, got %v", err)
		}
	})

	t.Run("Duplicate account", func(t *testing.T) {
		account := AccountConfig{Name: "401k", Type: "401k", ContributionFrequency: "monthly", ExpectedReturnRate: 7}
		conf := &Configuration{RetirementAccounts: []AccountConfig{account, account}}
		if _, err := conf.ToSnapshot(); err == nil || !strings.Contains(err.Error(), "duplicate") {
			t.Errorf("expected duplicate account error, got %v", err)
		}
	})

	t.Run("Empty configuration", func(t *testing.T) {
		snapshot, err := (&Configuration{}).ToSnapshot()
		if err != nil {
			t.Fatalf("unexpected error = %v", err)
		}
		if snapshot.Mortgage != nil || len(snapshot.Accounts) != 0 {
			t.Errorf("expected empty snapshot, got %+v", snapshot)
		}
	})
}

func TestFromSnapshotRoundTrip(t *testing.T) {
	currentAge := 40
	conf := &Configuration{
		Profile:  Profile{CurrentAge: &currentAge},
		Mortgage: testMortgageConfig(),
		RetirementAccounts: []AccountConfig{
			{Name: "401k", Type: "401k", CurrentBalance: 10000, ContributionAmount: 500, ContributionFrequency: "monthly", EmployerMatchPercentage: 50, ExpectedReturnRate: 7},
		},
		Contributions: []ContributionConfig{
			{Account: "401k", Date: "2024-01-15", EmployeeAmount: 500, EmployerAmount: 250, BalanceAfter: 10750},
		},
	}

	snapshot, err := conf.ToSnapshot()
	if err != nil {
		t.Fatalf("ToSnapshot() error = %v", err)
	}

	exported := FromSnapshot(snapshot, conf.Profile)
	if math.Abs(exported.Mortgage.InterestRate-6) > 1e-9 || math.Abs(exported.RetirementAccounts[0].ExpectedReturnRate-7) > 1e-9 {
		t.Errorf("expected rates back in percent, got %v and %v", exported.Mortgage.InterestRate, exported.RetirementAccounts[0].ExpectedReturnRate)
	}
	if exported.Contributions[0].Account != "401k" {
		t.Errorf("expected contribution to reference the account by name, got %q", exported.Contributions[0].Account)
	}

	reimported, err := exported.ToSnapshot()
	if err != nil {
		t.Fatalf("re-import error = %v", err)
	}
	if math.Abs(reimported.Mortgage.MonthlyPayment-snapshot.Mortgage.MonthlyPayment) > 1e-9 {
		t.Errorf("monthly payment changed across round trip: %v vs %v", reimported.Mortgage.MonthlyPayment, snapshot.Mortgage.MonthlyPayment)
	}
	if reimported.Accounts[0].ID != snapshot.Accounts[0].ID {
		t.Error("account ID changed across round trip")
	}
}
