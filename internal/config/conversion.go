package config

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/units"
	"github.com/iwvelando/finance-tracker/pkg/validation"
)

// idNamespace seeds name-based IDs so that the same config always yields the
// same record IDs, which keeps repeated imports idempotent.
var idNamespace = uuid.MustParse("b7e2c0d4-51f3-4a8e-9c6d-2f1e8a7b3c90")

// RecordID derives a stable ID for a record of the given kind and name.
func RecordID(kind, name string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+name)).String()
}

// ToMortgage converts the mortgage section into an engine record, scaling the
// interest rate from percent and deriving the monthly payment.
func (mc *MortgageConfig) ToMortgage() (*loans.Mortgage, error) {
	if mc == nil {
		return nil, nil
	}

	start, err := datetime.ParseDate(mc.StartDate)
	if err != nil {
		return nil, fmt.Errorf("mortgage %q start date: %w", mc.Name, err)
	}
	if err := validation.ValidatePercent("mortgage interest rate", mc.InterestRate); err != nil {
		return nil, err
	}

	id := mc.ID
	if id == "" {
		id = RecordID("mortgage", mc.Name)
	}

	mortgage := &loans.Mortgage{
		ID:                 id,
		Name:               mc.Name,
		PropertyAddress:    mc.PropertyAddress,
		OriginalPrincipal:  mc.OriginalPrincipal,
		CurrentBalance:     mc.OriginalPrincipal,
		InterestRate:       units.RateFromPercent(mc.InterestRate),
		TermMonths:         mc.TermMonths,
		StartDate:          start,
		PaymentDay:         mc.PaymentDay,
		ExtraPaymentAmount: mc.ExtraPayment,
		EscrowAmount:       mc.Escrow,
		PMIAmount:          mc.PMI,
		IsActive:           mc.Active == nil || *mc.Active,
	}
	if mc.CurrentBalance != nil {
		mortgage.CurrentBalance = *mc.CurrentBalance
	}

	if err := validation.ValidateMortgage(mortgage); err != nil {
		return nil, err
	}
	mortgage.RecalculatePayment()

	return mortgage, nil
}

// ToAccount converts an account entry into an engine record. The return rate
// becomes a fraction; match and vesting stay percentages.
func (ac *AccountConfig) ToAccount() (retirement.Account, error) {
	if err := validation.ValidatePercent(fmt.Sprintf("account %q expected return rate", ac.Name), ac.ExpectedReturnRate); err != nil {
		return retirement.Account{}, err
	}

	id := ac.ID
	if id == "" {
		id = RecordID("account", ac.Name)
	}

	vesting := units.Percent(100)
	if ac.VestingPercentage != nil {
		vesting = units.Percent(*ac.VestingPercentage)
	}

	account := retirement.Account{
		ID:                      id,
		Name:                    ac.Name,
		AccountType:             retirement.AccountType(ac.Type),
		Provider:                ac.Provider,
		EmployerName:            ac.EmployerName,
		CurrentBalance:          ac.CurrentBalance,
		ContributionAmount:      ac.ContributionAmount,
		ContributionFrequency:   retirement.ContributionFrequency(ac.ContributionFrequency),
		EmployerMatchPercentage: units.Percent(ac.EmployerMatchPercentage),
		EmployerMatchLimit:      ac.EmployerMatchLimit,
		VestingPercentage:       vesting,
		ExpectedReturnRate:      units.RateFromPercent(ac.ExpectedReturnRate),
		IsActive:                ac.Active == nil || *ac.Active,
		Notes:                   ac.Notes,
	}
	for _, allocation := range ac.AssetAllocation {
		account.AssetAllocation = append(account.AssetAllocation, retirement.AssetAllocation{
			AssetClass: allocation.AssetClass,
			Percentage: units.Percent(allocation.Percentage),
			FundName:   allocation.FundName,
			Ticker:     allocation.Ticker,
		})
	}

	if err := validation.ValidateAccount(account); err != nil {
		return retirement.Account{}, err
	}
	return account, nil
}

// contributionKey identifies a ledger entry by its content. Identical entries
// share a key and are told apart by their occurrence number.
func (cc *ContributionConfig) contributionKey(accountID string) string {
	return fmt.Sprintf("%s/%s/%.2f/%.2f/%.2f/%s",
		accountID, cc.Date, cc.EmployeeAmount, cc.EmployerAmount, cc.BalanceAfter, cc.Notes)
}

// ToContribution converts a ledger entry for the given account. Without an
// explicit ID, the ID derives from the entry's content and occurrence, the
// count of identical entries before it.
func (cc *ContributionConfig) ToContribution(accountID string, occurrence int) (retirement.Contribution, error) {
	id := cc.ID
	if id == "" {
		id = RecordID("contribution", fmt.Sprintf("%s#%d", cc.contributionKey(accountID), occurrence))
	}

	contribution := retirement.Contribution{
		ID:             id,
		AccountID:      accountID,
		Date:           cc.Date,
		EmployeeAmount: cc.EmployeeAmount,
		EmployerAmount: cc.EmployerAmount,
		TotalAmount:    cc.EmployeeAmount + cc.EmployerAmount,
		BalanceAfter:   cc.BalanceAfter,
		Notes:          cc.Notes,
	}
	if err := validation.ValidateContribution(contribution); err != nil {
		return retirement.Contribution{}, err
	}
	return contribution, nil
}

// ToSnapshot converts the configuration into engine records. Every record is
// validated; the first invalid record aborts the conversion.
func (c *Configuration) ToSnapshot() (*tracker.Snapshot, error) {
	snapshot := &tracker.Snapshot{
		Accounts:      make([]retirement.Account, 0, len(c.RetirementAccounts)),
		Contributions: make([]retirement.Contribution, 0, len(c.Contributions)),
	}

	mortgage, err := c.Mortgage.ToMortgage()
	if err != nil {
		return nil, err
	}
	snapshot.Mortgage = mortgage

	byName := make(map[string]string, len(c.RetirementAccounts))
	byID := make(map[string]bool, len(c.RetirementAccounts))
	for i := range c.RetirementAccounts {
		account, err := c.RetirementAccounts[i].ToAccount()
		if err != nil {
			return nil, err
		}
		if byID[account.ID] {
			return nil, fmt.Errorf("duplicate retirement account %q", account.Name)
		}
		byID[account.ID] = true
		byName[account.Name] = account.ID
		snapshot.Accounts = append(snapshot.Accounts, account)
	}

	seen := make(map[string]int, len(c.Contributions))
	contributionIDs := make(map[string]bool, len(c.Contributions))
	for i := range c.Contributions {
		ref := c.Contributions[i].Account
		accountID := ref
		if !byID[ref] {
			id, ok := byName[ref]
			if !ok {
				return nil, fmt.Errorf("contribution on %s references unknown account %q", c.Contributions[i].Date, ref)
			}
			accountID = id
		}
		key := c.Contributions[i].contributionKey(accountID)
		contribution, err := c.Contributions[i].ToContribution(accountID, seen[key])
		if err != nil {
			return nil, err
		}
		seen[key]++
		if contributionIDs[contribution.ID] {
			return nil, fmt.Errorf("duplicate contribution ID %q on %s", contribution.ID, contribution.Date)
		}
		contributionIDs[contribution.ID] = true
		snapshot.Contributions = append(snapshot.Contributions, contribution)
	}

	if err := c.addSpending(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// FromSnapshot builds a configuration document from stored records, scaling
// rates back to percentages. Logging, output and store settings are left
// empty.
func FromSnapshot(snapshot *tracker.Snapshot, profile Profile) *Configuration {
	conf := &Configuration{Profile: profile}
	if snapshot == nil {
		return conf
	}

	if m := snapshot.Mortgage; m != nil {
		balance := m.CurrentBalance
		active := m.IsActive
		conf.Mortgage = &MortgageConfig{
			ID:                m.ID,
			Name:              m.Name,
			PropertyAddress:   m.PropertyAddress,
			OriginalPrincipal: m.OriginalPrincipal,
			CurrentBalance:    &balance,
			InterestRate:      float64(m.InterestRate.Percent()),
			TermMonths:        m.TermMonths,
			StartDate:         datetime.FormatDate(m.StartDate),
			PaymentDay:        m.PaymentDay,
			ExtraPayment:      m.ExtraPaymentAmount,
			Escrow:            m.EscrowAmount,
			PMI:               m.PMIAmount,
			Active:            &active,
		}
	}

	names := make(map[string]string, len(snapshot.Accounts))
	for _, a := range snapshot.Accounts {
		vesting := float64(a.VestingPercentage)
		active := a.IsActive
		ac := AccountConfig{
			ID:                      a.ID,
			Name:                    a.Name,
			Type:                    string(a.AccountType),
			Provider:                a.Provider,
			EmployerName:            a.EmployerName,
			CurrentBalance:          a.CurrentBalance,
			ContributionAmount:      a.ContributionAmount,
			ContributionFrequency:   string(a.ContributionFrequency),
			EmployerMatchPercentage: float64(a.EmployerMatchPercentage),
			EmployerMatchLimit:      a.EmployerMatchLimit,
			VestingPercentage:       &vesting,
			ExpectedReturnRate:      float64(a.ExpectedReturnRate.Percent()),
			Active:                  &active,
			Notes:                   a.Notes,
		}
		for _, allocation := range a.AssetAllocation {
			ac.AssetAllocation = append(ac.AssetAllocation, AssetAllocationConfig{
				AssetClass: allocation.AssetClass,
				Percentage: float64(allocation.Percentage),
				FundName:   allocation.FundName,
				Ticker:     allocation.Ticker,
			})
		}
		names[a.ID] = a.Name
		conf.RetirementAccounts = append(conf.RetirementAccounts, ac)
	}

	for _, c := range snapshot.Contributions {
		ref := c.AccountID
		if name, ok := names[ref]; ok {
			ref = name
		}
		conf.Contributions = append(conf.Contributions, ContributionConfig{
			ID:             c.ID,
			Account:        ref,
			Date:           c.Date,
			EmployeeAmount: c.EmployeeAmount,
			EmployerAmount: c.EmployerAmount,
			BalanceAfter:   c.BalanceAfter,
			Notes:          c.Notes,
		})
	}

	exportSpending(snapshot, conf)
	return conf
}
