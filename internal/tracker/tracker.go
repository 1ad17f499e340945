// Package tracker owns the user's mortgage, retirement and spending records
// in memory, persists every mutation through a Repository and answers
// derived queries by delegating to the calculation packages.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/units"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrNoMortgage is returned when a mortgage operation runs before one is set.
	ErrNoMortgage = errors.New("no mortgage has been set")
	// ErrUnknownAccount is returned for an account ID the tracker does not hold.
	ErrUnknownAccount = errors.New("unknown retirement account")
	// ErrUnknownContribution is returned for a contribution ID the tracker does not hold.
	ErrUnknownContribution = errors.New("unknown contribution")
	// ErrDuplicateID is returned when two records of the same kind share an ID.
	ErrDuplicateID = errors.New("duplicate record ID")
)

// Repository persists tracker records. Implementations must apply each call
// atomically.
type Repository interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveMortgage(ctx context.Context, m *loans.Mortgage) error
	DeleteMortgage(ctx context.Context) error
	SaveAccount(ctx context.Context, a retirement.Account) error
	DeleteAccount(ctx context.Context, id string) error
	SaveContribution(ctx context.Context, c retirement.Contribution) error
	// AddContribution stores c and the account carrying its new balance
	// together: either both writes land or neither does.
	AddContribution(ctx context.Context, c retirement.Contribution, account retirement.Account) error
	DeleteContribution(ctx context.Context, id string) error
	SaveCategory(ctx context.Context, c spending.Category) error
	DeleteCategory(ctx context.Context, id string) error
	SaveTransaction(ctx context.Context, tx spending.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ReplaceSnapshot(ctx context.Context, snapshot *Snapshot) error
}

// ChangeKind names a mutation.
type ChangeKind string

// Change kinds delivered to subscribers.
const (
	MortgageSet         ChangeKind = "mortgage-set"
	MortgageDeleted     ChangeKind = "mortgage-deleted"
	AccountAdded        ChangeKind = "account-added"
	AccountUpdated      ChangeKind = "account-updated"
	AccountDeleted      ChangeKind = "account-deleted"
	ContributionAdded   ChangeKind = "contribution-added"
	ContributionUpdated ChangeKind = "contribution-updated"
	ContributionDeleted ChangeKind = "contribution-deleted"
	CategoryAdded       ChangeKind = "category-added"
	CategoryUpdated     ChangeKind = "category-updated"
	CategoryDeleted     ChangeKind = "category-deleted"
	TransactionAdded    ChangeKind = "transaction-added"
	TransactionUpdated  ChangeKind = "transaction-updated"
	TransactionDeleted  ChangeKind = "transaction-deleted"
	SnapshotReplaced    ChangeKind = "snapshot-replaced"
)

// Change describes a committed mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Tracker is safe for concurrent use. Subscribers are called after the
// change is committed and without the lock held.
type Tracker struct {
	mu          sync.RWMutex
	state       *Snapshot
	repo        Repository
	logger      *zap.Logger
	generator   *loans.AmortizationScheduleGenerator
	projector   *retirement.Projector
	subscribers []func(Change)

	now   func() time.Time
	newID func() string
}

// New creates an empty tracker. A nil repository keeps records in memory only.
func New(repo Repository, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		state:     &Snapshot{},
		repo:      repo,
		logger:    logger,
		generator: loans.NewAmortizationScheduleGenerator(logger),
		projector: retirement.NewProjector(logger),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Load replaces in-memory state with the repository's records.
func (t *Tracker) Load(ctx context.Context) error {
	if t.repo == nil {
		return nil
	}
	snapshot, err := t.repo.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("loading tracker state: %w", err)
	}

	t.mu.Lock()
	t.state = snapshot.Clone()
	sortContributions(t.state.Contributions)
	spending.SortNewestFirst(t.state.Transactions)
	t.mu.Unlock()

	t.logger.Debug("loaded tracker state",
		zap.String("op", "tracker.Load"),
		zap.Bool("mortgage", snapshot.Mortgage != nil),
		zap.Int("accounts", len(snapshot.Accounts)),
		zap.Int("contributions", len(snapshot.Contributions)),
		zap.Int("categories", len(snapshot.Categories)),
		zap.Int("transactions", len(snapshot.Transactions)),
	)
	return nil
}

// Subscribe registers fn to be called after every committed change.
func (t *Tracker) Subscribe(fn func(Change)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

func (t *Tracker) notify(change Change) {
	t.mu.RLock()
	subscribers := append(([]func(Change))(nil), t.subscribers...)
	t.mu.RUnlock()

	for _, fn := range subscribers {
		fn(change)
	}
}

// Snapshot returns a deep copy of the current records.
func (t *Tracker) Snapshot() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Clone()
}

// ReplaceSnapshot validates and installs snapshot as the complete record set.
func (t *Tracker) ReplaceSnapshot(ctx context.Context, snapshot *Snapshot) error {
	next := snapshot.Clone()
	if next.Mortgage != nil {
		if err := validation.ValidateMortgage(next.Mortgage); err != nil {
			return err
		}
	}
	accountIDs := make(map[string]bool, len(next.Accounts))
	for _, account := range next.Accounts {
		if err := validation.ValidateAccount(account); err != nil {
			return err
		}
		if accountIDs[account.ID] {
			return fmt.Errorf("%w: account %s", ErrDuplicateID, account.ID)
		}
		accountIDs[account.ID] = true
	}
	contributionIDs := make(map[string]bool, len(next.Contributions))
	for _, contribution := range next.Contributions {
		if contributionIDs[contribution.ID] {
			return fmt.Errorf("%w: contribution %s", ErrDuplicateID, contribution.ID)
		}
		contributionIDs[contribution.ID] = true
		if _, ok := next.Account(contribution.AccountID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, contribution.AccountID)
		}
		if err := validation.ValidateContribution(contribution); err != nil {
			return err
		}
	}
	if err := validateSpending(next); err != nil {
		return err
	}

	now := t.now()
	if next.Mortgage != nil {
		stampCreated(&next.Mortgage.CreatedAt, &next.Mortgage.UpdatedAt, now)
	}
	for i := range next.Accounts {
		stampCreated(&next.Accounts[i].CreatedAt, &next.Accounts[i].UpdatedAt, now)
	}
	for i := range next.Contributions {
		stampCreated(&next.Contributions[i].CreatedAt, &next.Contributions[i].UpdatedAt, now)
	}
	for i := range next.Categories {
		stampCreated(&next.Categories[i].CreatedAt, &next.Categories[i].UpdatedAt, now)
	}
	for i := range next.Transactions {
		stampCreated(&next.Transactions[i].CreatedAt, &next.Transactions[i].UpdatedAt, now)
	}
	sortContributions(next.Contributions)
	spending.SortNewestFirst(next.Transactions)

	t.mu.Lock()
	if err := t.persist("ReplaceSnapshot", func(repo Repository) error {
		return repo.ReplaceSnapshot(ctx, next)
	}); err != nil {
		t.mu.Unlock()
		return err
	}
	t.state = next
	t.mu.Unlock()

	t.logger.Info("replaced tracker state",
		zap.String("op", "tracker.ReplaceSnapshot"),
		zap.Int("accounts", len(next.Accounts)),
		zap.Int("contributions", len(next.Contributions)),
		zap.Int("categories", len(next.Categories)),
		zap.Int("transactions", len(next.Transactions)),
	)
	t.notify(Change{Kind: SnapshotReplaced})
	return nil
}

// persist runs fn against the repository, if any. Callers hold the write lock
// so state and storage change together.
func (t *Tracker) persist(op string, fn func(Repository) error) error {
	if t.repo == nil {
		return nil
	}
	if err := fn(t.repo); err != nil {
		t.logger.Error("failed to persist change",
			zap.String("op", "tracker."+op),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func stampCreated(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = now
	}
}

// sortContributions orders contributions newest first by date, keeping the
// relative order of same-day entries.
func sortContributions(contributions []retirement.Contribution) {
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Date > contributions[j].Date
	})
}

// MortgagePatch holds the mortgage fields to change; nil fields are left alone.
type MortgagePatch struct {
	Name               *string
	PropertyAddress    *string
	OriginalPrincipal  *float64
	CurrentBalance     *float64
	InterestRate       *units.Rate
	TermMonths         *int
	StartDate          *time.Time
	PaymentDay         *int
	ExtraPaymentAmount *float64
	EscrowAmount       *float64
	PMIAmount          *float64
	IsActive           *bool
}

// SetMortgage installs m as the mortgage, replacing any existing one. A zero
// CurrentBalance defaults to the original principal and the monthly payment
// is always derived.
func (t *Tracker) SetMortgage(ctx context.Context, m loans.Mortgage) (*loans.Mortgage, error) {
	if m.CurrentBalance == 0 {
		m.CurrentBalance = m.OriginalPrincipal
	}
	if err := validation.ValidateMortgage(&m); err != nil {
		return nil, err
	}
	if m.ID == "" {
		m.ID = t.newID()
	}
	now := t.now()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.RecalculatePayment()

	t.mu.Lock()
	if err := t.persist("SetMortgage", func(repo Repository) error {
		return repo.SaveMortgage(ctx, &m)
	}); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	stored := m
	t.state.Mortgage = &stored
	t.mu.Unlock()

	t.logger.Info("set mortgage",
		zap.String("op", "tracker.SetMortgage"),
		zap.String("id", m.ID),
		zap.Float64("monthly_payment", m.MonthlyPayment),
	)
	t.notify(Change{Kind: MortgageSet, ID: m.ID})
	return &m, nil
}

// UpdateMortgage applies patch to the mortgage. The monthly payment is
// recomputed when principal, rate or term change.
func (t *Tracker) UpdateMortgage(ctx context.Context, patch MortgagePatch) (*loans.Mortgage, error) {
	t.mu.Lock()
	if t.state.Mortgage == nil {
		t.mu.Unlock()
		return nil, ErrNoMortgage
	}

	m := *t.state.Mortgage
	recalculate := patch.OriginalPrincipal != nil || patch.InterestRate != nil || patch.TermMonths != nil
	applyString(&m.Name, patch.Name)
	applyString(&m.PropertyAddress, patch.PropertyAddress)
	applyFloat(&m.OriginalPrincipal, patch.OriginalPrincipal)
	applyFloat(&m.CurrentBalance, patch.CurrentBalance)
	if patch.InterestRate != nil {
		m.InterestRate = *patch.InterestRate
	}
	applyInt(&m.TermMonths, patch.TermMonths)
	if patch.StartDate != nil {
		m.StartDate = *patch.StartDate
	}
	applyInt(&m.PaymentDay, patch.PaymentDay)
	applyFloat(&m.ExtraPaymentAmount, patch.ExtraPaymentAmount)
	applyFloat(&m.EscrowAmount, patch.EscrowAmount)
	applyFloat(&m.PMIAmount, patch.PMIAmount)
	if patch.IsActive != nil {
		m.IsActive = *patch.IsActive
	}

	if err := validation.ValidateMortgage(&m); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	if recalculate {
		m.RecalculatePayment()
	}
	m.UpdatedAt = t.now()

	if err := t.persist("UpdateMortgage", func(repo Repository) error {
		return repo.SaveMortgage(ctx, &m)
	}); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	stored := m
	t.state.Mortgage = &stored
	t.mu.Unlock()

	t.notify(Change{Kind: MortgageSet, ID: m.ID})
	return &m, nil
}

// DeleteMortgage removes the mortgage.
func (t *Tracker) DeleteMortgage(ctx context.Context) error {
	t.mu.Lock()
	if t.state.Mortgage == nil {
		t.mu.Unlock()
		return ErrNoMortgage
	}
	id := t.state.Mortgage.ID
	if err := t.persist("DeleteMortgage", func(repo Repository) error {
		return repo.DeleteMortgage(ctx)
	}); err != nil {
		t.mu.Unlock()
		return err
	}
	t.state.Mortgage = nil
	t.mu.Unlock()

	t.notify(Change{Kind: MortgageDeleted, ID: id})
	return nil
}

// Mortgage returns a copy of the mortgage, if one is set.
func (t *Tracker) Mortgage() (*loans.Mortgage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state.Mortgage == nil {
		return nil, false
	}
	m := *t.state.Mortgage
	return &m, true
}

// AccountPatch holds the account fields to change; nil fields are left alone.
type AccountPatch struct {
	Name                    *string
	AccountType             *retirement.AccountType
	Provider                *string
	EmployerName            *string
	CurrentBalance          *float64
	ContributionAmount      *float64
	ContributionFrequency   *retirement.ContributionFrequency
	EmployerMatchPercentage *units.Percent
	EmployerMatchLimit      *float64
	VestingPercentage       *units.Percent
	ExpectedReturnRate      *units.Rate
	AssetAllocation         []retirement.AssetAllocation
	IsActive                *bool
	Notes                   *string
}

// AddAccount validates and stores a new account.
func (t *Tracker) AddAccount(ctx context.Context, account retirement.Account) (retirement.Account, error) {
	if err := validation.ValidateAccount(account); err != nil {
		return retirement.Account{}, err
	}
	if account.ID == "" {
		account.ID = t.newID()
	}
	now := t.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.AssetAllocation = append([]retirement.AssetAllocation(nil), account.AssetAllocation...)

	t.mu.Lock()
	if _, exists := t.state.Account(account.ID); exists {
		t.mu.Unlock()
		return retirement.Account{}, fmt.Errorf("retirement account %s already exists", account.ID)
	}
	if err := t.persist("AddAccount", func(repo Repository) error {
		return repo.SaveAccount(ctx, account)
	}); err != nil {
		t.mu.Unlock()
		return retirement.Account{}, err
	}
	t.state.Accounts = append(t.state.Accounts, account)
	t.mu.Unlock()

	t.logger.Info("added retirement account",
		zap.String("op", "tracker.AddAccount"),
		zap.String("id", account.ID),
		zap.String("name", account.Name),
	)
	t.notify(Change{Kind: AccountAdded, ID: account.ID})
	return account, nil
}

// UpdateAccount applies patch to the account with the given ID.
func (t *Tracker) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (retirement.Account, error) {
	t.mu.Lock()
	index := t.accountIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return retirement.Account{}, fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}

	account := t.state.Accounts[index]
	applyString(&account.Name, patch.Name)
	if patch.AccountType != nil {
		account.AccountType = *patch.AccountType
	}
	applyString(&account.Provider, patch.Provider)
	applyString(&account.EmployerName, patch.EmployerName)
	applyFloat(&account.CurrentBalance, patch.CurrentBalance)
	applyFloat(&account.ContributionAmount, patch.ContributionAmount)
	if patch.ContributionFrequency != nil {
		account.ContributionFrequency = *patch.ContributionFrequency
	}
	if patch.EmployerMatchPercentage != nil {
		account.EmployerMatchPercentage = *patch.EmployerMatchPercentage
	}
	applyFloat(&account.EmployerMatchLimit, patch.EmployerMatchLimit)
	if patch.VestingPercentage != nil {
		account.VestingPercentage = *patch.VestingPercentage
	}
	if patch.ExpectedReturnRate != nil {
		account.ExpectedReturnRate = *patch.ExpectedReturnRate
	}
	if patch.AssetAllocation != nil {
		account.AssetAllocation = append([]retirement.AssetAllocation(nil), patch.AssetAllocation...)
	}
	if patch.IsActive != nil {
		account.IsActive = *patch.IsActive
	}
	applyString(&account.Notes, patch.Notes)

	if err := validation.ValidateAccount(account); err != nil {
		t.mu.Unlock()
		return retirement.Account{}, err
	}
	account.UpdatedAt = t.now()

	if err := t.persist("UpdateAccount", func(repo Repository) error {
		return repo.SaveAccount(ctx, account)
	}); err != nil {
		t.mu.Unlock()
		return retirement.Account{}, err
	}
	t.state.Accounts[index] = account
	t.mu.Unlock()

	t.notify(Change{Kind: AccountUpdated, ID: id})
	return account, nil
}

// DeleteAccount removes an account and every contribution recorded against it.
func (t *Tracker) DeleteAccount(ctx context.Context, id string) error {
	t.mu.Lock()
	index := t.accountIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	if err := t.persist("DeleteAccount", func(repo Repository) error {
		return repo.DeleteAccount(ctx, id)
	}); err != nil {
		t.mu.Unlock()
		return err
	}

	t.state.Accounts = append(t.state.Accounts[:index], t.state.Accounts[index+1:]...)
	kept := t.state.Contributions[:0]
	for _, contribution := range t.state.Contributions {
		if contribution.AccountID != id {
			kept = append(kept, contribution)
		}
	}
	t.state.Contributions = kept
	t.mu.Unlock()

	t.notify(Change{Kind: AccountDeleted, ID: id})
	return nil
}

// Account returns a copy of one account.
func (t *Tracker) Account(id string) (retirement.Account, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	account, ok := t.state.Account(id)
	account.AssetAllocation = append([]retirement.AssetAllocation(nil), account.AssetAllocation...)
	return account, ok
}

// FindAccount looks an account up by ID, then by name.
func (t *Tracker) FindAccount(ref string) (retirement.Account, bool) {
	if account, ok := t.Account(ref); ok {
		return account, true
	}
	for _, account := range t.Accounts() {
		if account.Name == ref {
			return account, true
		}
	}
	return retirement.Account{}, false
}

// Accounts returns a copy of every account in insertion order.
func (t *Tracker) Accounts() []retirement.Account {
	return t.Snapshot().Accounts
}

func (t *Tracker) accountIndex(id string) int {
	for i := range t.state.Accounts {
		if t.state.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

// ContributionPatch holds the contribution fields to change.
type ContributionPatch struct {
	Date           *string
	EmployeeAmount *float64
	EmployerAmount *float64
	BalanceAfter   *float64
	Notes          *string
}

// AddContribution records a deposit and sets the account's current balance
// to the contribution's BalanceAfter. TotalAmount is derived.
func (t *Tracker) AddContribution(ctx context.Context, contribution retirement.Contribution) (retirement.Contribution, error) {
	contribution.TotalAmount = contribution.EmployeeAmount + contribution.EmployerAmount
	if err := validation.ValidateContribution(contribution); err != nil {
		return retirement.Contribution{}, err
	}
	if contribution.ID == "" {
		contribution.ID = t.newID()
	}
	now := t.now()
	contribution.CreatedAt = now
	contribution.UpdatedAt = now

	t.mu.Lock()
	index := t.accountIndex(contribution.AccountID)
	if index < 0 {
		t.mu.Unlock()
		return retirement.Contribution{}, fmt.Errorf("%w: %s", ErrUnknownAccount, contribution.AccountID)
	}
	account := t.state.Accounts[index]
	account.CurrentBalance = contribution.BalanceAfter
	account.UpdatedAt = now

	if err := t.persist("AddContribution", func(repo Repository) error {
		return repo.AddContribution(ctx, contribution, account)
	}); err != nil {
		t.mu.Unlock()
		return retirement.Contribution{}, err
	}
	t.state.Accounts[index] = account
	t.state.Contributions = append([]retirement.Contribution{contribution}, t.state.Contributions...)
	sortContributions(t.state.Contributions)
	t.mu.Unlock()

	t.logger.Info("recorded contribution",
		zap.String("op", "tracker.AddContribution"),
		zap.String("account", contribution.AccountID),
		zap.String("date", contribution.Date),
		zap.Float64("total", contribution.TotalAmount),
	)
	t.notify(Change{Kind: ContributionAdded, ID: contribution.ID})
	return contribution, nil
}

// UpdateContribution applies patch to one contribution. The account balance
// is left untouched.
func (t *Tracker) UpdateContribution(ctx context.Context, id string, patch ContributionPatch) (retirement.Contribution, error) {
	t.mu.Lock()
	index := t.contributionIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return retirement.Contribution{}, fmt.Errorf("%w: %s", ErrUnknownContribution, id)
	}

	contribution := t.state.Contributions[index]
	applyString(&contribution.Date, patch.Date)
	applyFloat(&contribution.EmployeeAmount, patch.EmployeeAmount)
	applyFloat(&contribution.EmployerAmount, patch.EmployerAmount)
	applyFloat(&contribution.BalanceAfter, patch.BalanceAfter)
	applyString(&contribution.Notes, patch.Notes)
	contribution.TotalAmount = contribution.EmployeeAmount + contribution.EmployerAmount

	if err := validation.ValidateContribution(contribution); err != nil {
		t.mu.Unlock()
		return retirement.Contribution{}, err
	}
	contribution.UpdatedAt = t.now()

	if err := t.persist("UpdateContribution", func(repo Repository) error {
		return repo.SaveContribution(ctx, contribution)
	}); err != nil {
		t.mu.Unlock()
		return retirement.Contribution{}, err
	}
	t.state.Contributions[index] = contribution
	sortContributions(t.state.Contributions)
	t.mu.Unlock()

	t.notify(Change{Kind: ContributionUpdated, ID: id})
	return contribution, nil
}

// DeleteContribution removes one contribution. The account balance is left
// untouched.
func (t *Tracker) DeleteContribution(ctx context.Context, id string) error {
	t.mu.Lock()
	index := t.contributionIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownContribution, id)
	}
	if err := t.persist("DeleteContribution", func(repo Repository) error {
		return repo.DeleteContribution(ctx, id)
	}); err != nil {
		t.mu.Unlock()
		return err
	}
	t.state.Contributions = append(t.state.Contributions[:index], t.state.Contributions[index+1:]...)
	t.mu.Unlock()

	t.notify(Change{Kind: ContributionDeleted, ID: id})
	return nil
}

// ContributionsByAccount lists one account's contributions newest first.
func (t *Tracker) ContributionsByAccount(accountID string) []retirement.Contribution {
	t.mu.RLock()
	defer t.mu.RUnlock()

	contributions := []retirement.Contribution{}
	for _, contribution := range t.state.Contributions {
		if contribution.AccountID == accountID {
			contributions = append(contributions, contribution)
		}
	}
	return contributions
}

func (t *Tracker) contributionIndex(id string) int {
	for i := range t.state.Contributions {
		if t.state.Contributions[i].ID == id {
			return i
		}
	}
	return -1
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func applyInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
