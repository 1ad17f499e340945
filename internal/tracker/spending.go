package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/finance-tracker/internal/metrics"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/validation"
	"go.uber.org/zap"
)

var (
	// ErrUnknownCategory is returned for a category ID the tracker does not hold.
	ErrUnknownCategory = errors.New("unknown spending category")
	// ErrUnknownTransaction is returned for a transaction ID the tracker does not hold.
	ErrUnknownTransaction = errors.New("unknown transaction")
	// ErrCategoryInUse is returned when deleting a category that transactions
	// still reference.
	ErrCategoryInUse = errors.New("category has transactions")
)

func validateSpending(next *Snapshot) error {
	categoryIDs := make(map[string]bool, len(next.Categories))
	for _, category := range next.Categories {
		if err := validation.ValidateCategory(category); err != nil {
			return err
		}
		if categoryIDs[category.ID] {
			return fmt.Errorf("%w: category %s", ErrDuplicateID, category.ID)
		}
		categoryIDs[category.ID] = true
	}
	transactionIDs := make(map[string]bool, len(next.Transactions))
	for _, tx := range next.Transactions {
		if transactionIDs[tx.ID] {
			return fmt.Errorf("%w: transaction %s", ErrDuplicateID, tx.ID)
		}
		transactionIDs[tx.ID] = true
		if err := validation.ValidateTransaction(tx); err != nil {
			return err
		}
		if !categoryIDs[tx.CategoryID] {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, tx.CategoryID)
		}
	}
	return nil
}

// CategoryPatch holds the category fields to change; nil fields are left alone.
type CategoryPatch struct {
	Name      *string
	Type      *spending.Kind
	Icon      *string
	Color     *string
	SortOrder *int
}

// AddCategory validates and stores a new category.
func (t *Tracker) AddCategory(ctx context.Context, category spending.Category) (spending.Category, error) {
	if err := validation.ValidateCategory(category); err != nil {
		return spending.Category{}, err
	}
	if category.ID == "" {
		category.ID = t.newID()
	}
	now := t.now()
	category.CreatedAt = now
	category.UpdatedAt = now

	t.mu.Lock()
	if _, exists := t.state.Category(category.ID); exists {
		t.mu.Unlock()
		return spending.Category{}, fmt.Errorf("%w: category %s", ErrDuplicateID, category.ID)
	}
	if err := t.persist("AddCategory", func(repo Repository) error {
		return repo.SaveCategory(ctx, category)
	}); err != nil {
		t.mu.Unlock()
		return spending.Category{}, err
	}
	t.state.Categories = append(t.state.Categories, category)
	t.mu.Unlock()

	t.logger.Info("added spending category",
		zap.String("op", "tracker.AddCategory"),
		zap.String("id", category.ID),
		zap.String("name", category.Name),
	)
	t.notify(Change{Kind: CategoryAdded, ID: category.ID})
	return category, nil
}

// UpdateCategory applies patch to the category with the given ID.
func (t *Tracker) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (spending.Category, error) {
	t.mu.Lock()
	index := t.categoryIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return spending.Category{}, fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}

	category := t.state.Categories[index]
	applyString(&category.Name, patch.Name)
	if patch.Type != nil {
		category.Type = *patch.Type
	}
	applyString(&category.Icon, patch.Icon)
	applyString(&category.Color, patch.Color)
	applyInt(&category.SortOrder, patch.SortOrder)

	if err := validation.ValidateCategory(category); err != nil {
		t.mu.Unlock()
		return spending.Category{}, err
	}
	category.UpdatedAt = t.now()

	if err := t.persist("UpdateCategory", func(repo Repository) error {
		return repo.SaveCategory(ctx, category)
	}); err != nil {
		t.mu.Unlock()
		return spending.Category{}, err
	}
	t.state.Categories[index] = category
	t.mu.Unlock()

	t.notify(Change{Kind: CategoryUpdated, ID: id})
	return category, nil
}

// DeleteCategory removes a category no transaction refers to.
func (t *Tracker) DeleteCategory(ctx context.Context, id string) error {
	t.mu.Lock()
	index := t.categoryIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	for _, tx := range t.state.Transactions {
		if tx.CategoryID == id {
			t.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrCategoryInUse, t.state.Categories[index].Name)
		}
	}
	if err := t.persist("DeleteCategory", func(repo Repository) error {
		return repo.DeleteCategory(ctx, id)
	}); err != nil {
		t.mu.Unlock()
		return err
	}
	t.state.Categories = append(t.state.Categories[:index], t.state.Categories[index+1:]...)
	t.mu.Unlock()

	t.notify(Change{Kind: CategoryDeleted, ID: id})
	return nil
}

// InitializeDefaultCategories installs the built-in categories when none
// exist yet and returns how many were added.
func (t *Tracker) InitializeDefaultCategories(ctx context.Context) (int, error) {
	t.mu.Lock()
	if len(t.state.Categories) > 0 {
		t.mu.Unlock()
		return 0, nil
	}

	next := t.state.Clone()
	now := t.now()
	next.Categories = spending.DefaultCategories()
	for i := range next.Categories {
		next.Categories[i].ID = t.newID()
		next.Categories[i].CreatedAt = now
		next.Categories[i].UpdatedAt = now
	}
	if err := t.persist("InitializeDefaultCategories", func(repo Repository) error {
		return repo.ReplaceSnapshot(ctx, next)
	}); err != nil {
		t.mu.Unlock()
		return 0, err
	}
	t.state = next
	t.mu.Unlock()

	t.logger.Info("installed default spending categories",
		zap.String("op", "tracker.InitializeDefaultCategories"),
		zap.Int("categories", len(next.Categories)),
	)
	t.notify(Change{Kind: SnapshotReplaced})
	return len(next.Categories), nil
}

// Category returns one category.
func (t *Tracker) Category(id string) (spending.Category, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.Category(id)
}

// FindCategory looks a category up by ID, then by name. A non-empty kind
// restricts the name lookup to that kind.
func (t *Tracker) FindCategory(ref string, kind spending.Kind) (spending.Category, bool) {
	if category, ok := t.Category(ref); ok {
		return category, true
	}
	for _, category := range t.Categories(kind) {
		if category.Name == ref {
			return category, true
		}
	}
	return spending.Category{}, false
}

// Categories lists categories in insertion order. An empty kind lists all.
func (t *Tracker) Categories(kind spending.Kind) []spending.Category {
	categories := t.Snapshot().Categories
	if kind == "" {
		return categories
	}
	return spending.FilterByKind(categories, kind)
}

func (t *Tracker) categoryIndex(id string) int {
	for i := range t.state.Categories {
		if t.state.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// TransactionPatch holds the transaction fields to change.
type TransactionPatch struct {
	Type        *spending.Kind
	Amount      *float64
	Description *string
	CategoryID  *string
	Date        *string
	IsRecurring *bool
	RecurringID *string
	Notes       *string
}

// AddTransaction records an income or expense entry in an existing category.
func (t *Tracker) AddTransaction(ctx context.Context, tx spending.Transaction) (spending.Transaction, error) {
	if err := validation.ValidateTransaction(tx); err != nil {
		return spending.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = t.newID()
	}
	now := t.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	t.mu.Lock()
	if _, ok := t.state.Category(tx.CategoryID); !ok {
		t.mu.Unlock()
		return spending.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownCategory, tx.CategoryID)
	}
	if t.transactionIndex(tx.ID) >= 0 {
		t.mu.Unlock()
		return spending.Transaction{}, fmt.Errorf("%w: transaction %s", ErrDuplicateID, tx.ID)
	}
	if err := t.persist("AddTransaction", func(repo Repository) error {
		return repo.SaveTransaction(ctx, tx)
	}); err != nil {
		t.mu.Unlock()
		return spending.Transaction{}, err
	}
	t.state.Transactions = append([]spending.Transaction{tx}, t.state.Transactions...)
	spending.SortNewestFirst(t.state.Transactions)
	t.mu.Unlock()

	t.logger.Info("recorded transaction",
		zap.String("op", "tracker.AddTransaction"),
		zap.String("type", string(tx.Type)),
		zap.String("category", tx.CategoryID),
		zap.String("date", tx.Date),
		zap.Float64("amount", tx.Amount),
	)
	t.notify(Change{Kind: TransactionAdded, ID: tx.ID})
	return tx, nil
}

// UpdateTransaction applies patch to one transaction.
func (t *Tracker) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (spending.Transaction, error) {
	t.mu.Lock()
	index := t.transactionIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return spending.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
	}

	tx := t.state.Transactions[index]
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	applyFloat(&tx.Amount, patch.Amount)
	applyString(&tx.Description, patch.Description)
	applyString(&tx.CategoryID, patch.CategoryID)
	applyString(&tx.Date, patch.Date)
	if patch.IsRecurring != nil {
		tx.IsRecurring = *patch.IsRecurring
	}
	applyString(&tx.RecurringID, patch.RecurringID)
	applyString(&tx.Notes, patch.Notes)

	if err := validation.ValidateTransaction(tx); err != nil {
		t.mu.Unlock()
		return spending.Transaction{}, err
	}
	if _, ok := t.state.Category(tx.CategoryID); !ok {
		t.mu.Unlock()
		return spending.Transaction{}, fmt.Errorf("%w: %s", ErrUnknownCategory, tx.CategoryID)
	}
	tx.UpdatedAt = t.now()

	if err := t.persist("UpdateTransaction", func(repo Repository) error {
		return repo.SaveTransaction(ctx, tx)
	}); err != nil {
		t.mu.Unlock()
		return spending.Transaction{}, err
	}
	t.state.Transactions[index] = tx
	spending.SortNewestFirst(t.state.Transactions)
	t.mu.Unlock()

	t.notify(Change{Kind: TransactionUpdated, ID: id})
	return tx, nil
}

// DeleteTransaction removes one transaction.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	t.mu.Lock()
	index := t.transactionIndex(id)
	if index < 0 {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownTransaction, id)
	}
	if err := t.persist("DeleteTransaction", func(repo Repository) error {
		return repo.DeleteTransaction(ctx, id)
	}); err != nil {
		t.mu.Unlock()
		return err
	}
	t.state.Transactions = append(t.state.Transactions[:index], t.state.Transactions[index+1:]...)
	t.mu.Unlock()

	t.notify(Change{Kind: TransactionDeleted, ID: id})
	return nil
}

// Transactions lists the transactions f matches, newest first.
func (t *Tracker) Transactions(f spending.Filter) []spending.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return spending.FilterTransactions(t.state.Transactions, f)
}

func (t *Tracker) transactionIndex(id string) int {
	for i := range t.state.Transactions {
		if t.state.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}

// SpendingReport summarizes the calendar month containing month with a
// trend over the given number of months.
func (t *Tracker) SpendingReport(month time.Time, months int) spending.Report {
	snapshot := t.Snapshot()
	report := spending.BuildReport(snapshot.Transactions, snapshot.Categories, month, months)
	metrics.Calculations.WithLabelValues("spending-report", outcome(report.Totals.Count > 0)).Inc()
	return report
}
