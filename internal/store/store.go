// Package store persists mortgages, retirement accounts, contributions and
// spending records in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/iwvelando/finance-tracker/internal/metrics"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/units"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrMortgageNotFound is returned when no mortgage has been saved.
	ErrMortgageNotFound = errors.New("mortgage not found")
	// ErrAccountNotFound is returned for an unknown account ID.
	ErrAccountNotFound = errors.New("retirement account not found")
	// ErrContributionNotFound is returned for an unknown contribution ID.
	ErrContributionNotFound = errors.New("contribution not found")
)

const timeLayout = time.RFC3339Nano

// Store is a SQLite-backed repository. It satisfies tracker.Repository.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ tracker.Repository = (*Store)(nil)

// Open opens or creates the database at the given path.
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps foreign keys on
	// for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("opened store",
		zap.String("op", "store.Open"),
		zap.String("path", dbPath),
	)

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) observe(op string, err error) {
	metrics.StoreOperations.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Debug("store operation failed",
			zap.String("op", "store."+op),
			zap.Error(err),
		)
	}
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveMortgage stores m as the only mortgage, replacing any other.
func (s *Store) SaveMortgage(ctx context.Context, m *loans.Mortgage) (err error) {
	defer func() { s.observe("SaveMortgage", err) }()
	if m == nil {
		return errors.New("nil mortgage")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, "DELETE FROM mortgages WHERE id <> ?", m.ID); err != nil {
		return err
	}
	if err = upsertMortgage(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertMortgage(ctx context.Context, db execer, m *loans.Mortgage) error {
	_, err := db.ExecContext(ctx, `INSERT INTO mortgages
		(id, name, property_address, original_principal, current_balance, interest_rate,
		 term_months, start_date, payment_day, monthly_payment, extra_payment,
		 escrow_amount, pmi_amount, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 name = excluded.name,
		 property_address = excluded.property_address,
		 original_principal = excluded.original_principal,
		 current_balance = excluded.current_balance,
		 interest_rate = excluded.interest_rate,
		 term_months = excluded.term_months,
		 start_date = excluded.start_date,
		 payment_day = excluded.payment_day,
		 monthly_payment = excluded.monthly_payment,
		 extra_payment = excluded.extra_payment,
		 escrow_amount = excluded.escrow_amount,
		 pmi_amount = excluded.pmi_amount,
		 is_active = excluded.is_active,
		 updated_at = excluded.updated_at`,
		m.ID, m.Name, m.PropertyAddress, m.OriginalPrincipal, m.CurrentBalance, m.InterestRate.Float64(),
		m.TermMonths, formatTime(m.StartDate), m.PaymentDay, m.MonthlyPayment, m.ExtraPaymentAmount,
		m.EscrowAmount, m.PMIAmount, boolToInt(m.IsActive), formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return err
}

// LoadMortgage returns the stored mortgage or ErrMortgageNotFound.
func (s *Store) LoadMortgage(ctx context.Context) (m *loans.Mortgage, err error) {
	defer func() {
		if !errors.Is(err, ErrMortgageNotFound) {
			s.observe("LoadMortgage", err)
		}
	}()

	row := s.db.QueryRowContext(ctx, `SELECT
		id, name, property_address, original_principal, current_balance, interest_rate,
		term_months, start_date, payment_day, monthly_payment, extra_payment,
		escrow_amount, pmi_amount, is_active, created_at, updated_at
		FROM mortgages LIMIT 1`)

	var (
		mortgage                    loans.Mortgage
		address                     sql.NullString
		rate                        float64
		paymentDay                  sql.NullInt64
		active                      int
		startDate, created, updated string
	)
	err = row.Scan(&mortgage.ID, &mortgage.Name, &address, &mortgage.OriginalPrincipal, &mortgage.CurrentBalance, &rate,
		&mortgage.TermMonths, &startDate, &paymentDay, &mortgage.MonthlyPayment, &mortgage.ExtraPaymentAmount,
		&mortgage.EscrowAmount, &mortgage.PMIAmount, &active, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMortgageNotFound
	}
	if err != nil {
		return nil, err
	}

	mortgage.PropertyAddress = address.String
	mortgage.InterestRate = units.Rate(rate)
	mortgage.PaymentDay = int(paymentDay.Int64)
	mortgage.IsActive = active != 0
	if mortgage.StartDate, err = parseTime(startDate); err != nil {
		return nil, fmt.Errorf("mortgage %q start date: %w", mortgage.Name, err)
	}
	if mortgage.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if mortgage.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &mortgage, nil
}

// DeleteMortgage removes the stored mortgage, if any.
func (s *Store) DeleteMortgage(ctx context.Context) (err error) {
	defer func() { s.observe("DeleteMortgage", err) }()
	_, err = s.db.ExecContext(ctx, "DELETE FROM mortgages")
	return err
}

// SaveAccount inserts or updates an account.
func (s *Store) SaveAccount(ctx context.Context, a retirement.Account) (err error) {
	defer func() { s.observe("SaveAccount", err) }()
	return upsertAccount(ctx, s.db, a)
}

func upsertAccount(ctx context.Context, db execer, a retirement.Account) error {
	allocation := a.AssetAllocation
	if allocation == nil {
		allocation = []retirement.AssetAllocation{}
	}
	encoded, err := json.Marshal(allocation)
	if err != nil {
		return fmt.Errorf("encoding asset allocation for %q: %w", a.Name, err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO retirement_accounts
		(id, name, account_type, provider, employer_name, current_balance,
		 contribution_amount, contribution_freq, employer_match_pct, employer_match_limit,
		 vesting_pct, expected_return_rate, asset_allocation, is_active, notes,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 name = excluded.name,
		 account_type = excluded.account_type,
		 provider = excluded.provider,
		 employer_name = excluded.employer_name,
		 current_balance = excluded.current_balance,
		 contribution_amount = excluded.contribution_amount,
		 contribution_freq = excluded.contribution_freq,
		 employer_match_pct = excluded.employer_match_pct,
		 employer_match_limit = excluded.employer_match_limit,
		 vesting_pct = excluded.vesting_pct,
		 expected_return_rate = excluded.expected_return_rate,
		 asset_allocation = excluded.asset_allocation,
		 is_active = excluded.is_active,
		 notes = excluded.notes,
		 updated_at = excluded.updated_at`,
		a.ID, a.Name, string(a.AccountType), a.Provider, a.EmployerName, a.CurrentBalance,
		a.ContributionAmount, string(a.ContributionFrequency), float64(a.EmployerMatchPercentage), a.EmployerMatchLimit,
		float64(a.VestingPercentage), a.ExpectedReturnRate.Float64(), string(encoded), boolToInt(a.IsActive), a.Notes,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	return err
}

const accountColumns = `id, name, account_type, provider, employer_name, current_balance,
	contribution_amount, contribution_freq, employer_match_pct, employer_match_limit,
	vesting_pct, expected_return_rate, asset_allocation, is_active, notes,
	created_at, updated_at`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (retirement.Account, error) {
	var (
		a                         retirement.Account
		accountType, frequency    string
		provider, employer, notes sql.NullString
		match, vesting, rate      float64
		allocation                string
		active                    int
		created, updated          string
	)
	if err := row.Scan(&a.ID, &a.Name, &accountType, &provider, &employer, &a.CurrentBalance,
		&a.ContributionAmount, &frequency, &match, &a.EmployerMatchLimit,
		&vesting, &rate, &allocation, &active, &notes, &created, &updated); err != nil {
		return retirement.Account{}, err
	}

	a.AccountType = retirement.AccountType(accountType)
	a.ContributionFrequency = retirement.ContributionFrequency(frequency)
	a.Provider = provider.String
	a.EmployerName = employer.String
	a.Notes = notes.String
	a.EmployerMatchPercentage = units.Percent(match)
	a.VestingPercentage = units.Percent(vesting)
	a.ExpectedReturnRate = units.Rate(rate)
	a.IsActive = active != 0

	if err := json.Unmarshal([]byte(allocation), &a.AssetAllocation); err != nil {
		return retirement.Account{}, fmt.Errorf("decoding asset allocation for %q: %w", a.Name, err)
	}
	if len(a.AssetAllocation) == 0 {
		a.AssetAllocation = nil
	}

	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return retirement.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return retirement.Account{}, err
	}
	return a, nil
}

// ListAccounts returns all accounts in insertion order.
func (s *Store) ListAccounts(ctx context.Context) (accounts []retirement.Account, err error) {
	defer func() { s.observe("ListAccounts", err) }()

	rows, err := s.db.QueryContext(ctx, "SELECT "+accountColumns+" FROM retirement_accounts ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	accounts = []retirement.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetAccount returns one account or ErrAccountNotFound.
func (s *Store) GetAccount(ctx context.Context, id string) (retirement.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM retirement_accounts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return retirement.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	s.observe("GetAccount", err)
	return account, err
}

// DeleteAccount removes an account together with its contributions.
func (s *Store) DeleteAccount(ctx context.Context, id string) (err error) {
	defer func() { s.observe("DeleteAccount", err) }()

	result, err := s.db.ExecContext(ctx, "DELETE FROM retirement_accounts WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return nil
}

// SaveContribution inserts or updates a contribution.
func (s *Store) SaveContribution(ctx context.Context, c retirement.Contribution) (err error) {
	defer func() { s.observe("SaveContribution", err) }()
	return upsertContribution(ctx, s.db, c)
}

func upsertContribution(ctx context.Context, db execer, c retirement.Contribution) error {
	_, err := db.ExecContext(ctx, `INSERT INTO contributions
		(id, account_id, date, employee_amount, employer_amount, total_amount,
		 balance_after, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 account_id = excluded.account_id,
		 date = excluded.date,
		 employee_amount = excluded.employee_amount,
		 employer_amount = excluded.employer_amount,
		 total_amount = excluded.total_amount,
		 balance_after = excluded.balance_after,
		 notes = excluded.notes,
		 updated_at = excluded.updated_at`,
		c.ID, c.AccountID, c.Date, c.EmployeeAmount, c.EmployerAmount, c.TotalAmount,
		c.BalanceAfter, c.Notes, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	return err
}

// AddContribution stores c and account in one transaction.
func (s *Store) AddContribution(ctx context.Context, c retirement.Contribution, account retirement.Account) (err error) {
	defer func() { s.observe("AddContribution", err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err = upsertContribution(ctx, tx, c); err != nil {
		return err
	}
	if err = upsertAccount(ctx, tx, account); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteContribution removes one contribution.
func (s *Store) DeleteContribution(ctx context.Context, id string) (err error) {
	defer func() { s.observe("DeleteContribution", err) }()

	result, err := s.db.ExecContext(ctx, "DELETE FROM contributions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrContributionNotFound, id)
	}
	return nil
}

// ListContributions returns contributions newest first. An empty accountID
// lists every account's contributions.
func (s *Store) ListContributions(ctx context.Context, accountID string) (contributions []retirement.Contribution, err error) {
	defer func() { s.observe("ListContributions", err) }()

	query := `SELECT id, account_id, date, employee_amount, employer_amount, total_amount,
		balance_after, notes, created_at, updated_at FROM contributions`
	var args []any
	if accountID != "" {
		query += " WHERE account_id = ?"
		args = append(args, accountID)
	}
	query += " ORDER BY date DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	contributions = []retirement.Contribution{}
	for rows.Next() {
		var (
			c                retirement.Contribution
			notes            sql.NullString
			created, updated string
		)
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Date, &c.EmployeeAmount, &c.EmployerAmount, &c.TotalAmount,
			&c.BalanceAfter, &notes, &created, &updated); err != nil {
			return nil, err
		}
		c.Notes = notes.String
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// LoadSnapshot reads every record.
func (s *Store) LoadSnapshot(ctx context.Context) (*tracker.Snapshot, error) {
	snapshot := &tracker.Snapshot{}

	mortgage, err := s.LoadMortgage(ctx)
	switch {
	case errors.Is(err, ErrMortgageNotFound):
	case err != nil:
		return nil, fmt.Errorf("loading mortgage: %w", err)
	default:
		snapshot.Mortgage = mortgage
	}

	if snapshot.Accounts, err = s.ListAccounts(ctx); err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	if snapshot.Contributions, err = s.ListContributions(ctx, ""); err != nil {
		return nil, fmt.Errorf("loading contributions: %w", err)
	}
	if snapshot.Categories, err = s.ListCategories(ctx); err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	if snapshot.Transactions, err = s.ListTransactions(ctx); err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	return snapshot, nil
}

// ReplaceSnapshot atomically replaces every stored record with snapshot.
func (s *Store) ReplaceSnapshot(ctx context.Context, snapshot *tracker.Snapshot) (err error) {
	defer func() { s.observe("ReplaceSnapshot", err) }()
	if snapshot == nil {
		snapshot = &tracker.Snapshot{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"transactions", "contributions", "categories", "retirement_accounts", "mortgages"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if snapshot.Mortgage != nil {
		if err = upsertMortgage(ctx, tx, snapshot.Mortgage); err != nil {
			return fmt.Errorf("saving mortgage: %w", err)
		}
	}
	for _, account := range snapshot.Accounts {
		if err = upsertAccount(ctx, tx, account); err != nil {
			return fmt.Errorf("saving account %q: %w", account.Name, err)
		}
	}
	// Contributions arrive newest first; inserting in reverse keeps that
	// order on reload.
	for i := len(snapshot.Contributions) - 1; i >= 0; i-- {
		contribution := snapshot.Contributions[i]
		if err = upsertContribution(ctx, tx, contribution); err != nil {
			return fmt.Errorf("saving contribution %s: %w", contribution.ID, err)
		}
	}
	for _, category := range snapshot.Categories {
		if err = upsertCategory(ctx, tx, category); err != nil {
			return fmt.Errorf("saving category %q: %w", category.Name, err)
		}
	}
	for i := len(snapshot.Transactions) - 1; i >= 0; i-- {
		transaction := snapshot.Transactions[i]
		if err = upsertTransaction(ctx, tx, transaction); err != nil {
			return fmt.Errorf("saving transaction %s: %w", transaction.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("replaced stored records",
		zap.String("op", "store.ReplaceSnapshot"),
		zap.Bool("mortgage", snapshot.Mortgage != nil),
		zap.Int("accounts", len(snapshot.Accounts)),
		zap.Int("contributions", len(snapshot.Contributions)),
		zap.Int("categories", len(snapshot.Categories)),
		zap.Int("transactions", len(snapshot.Transactions)),
	)
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", value, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
