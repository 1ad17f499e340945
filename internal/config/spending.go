package config

import (
	"fmt"

	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/validation"
)

func categoryID(kind spending.Kind, name string) string {
	return RecordID("category", string(kind)+"/"+name)
}

// ToCategory converts a category entry into an engine record.
func (cc *CategoryConfig) ToCategory() (spending.Category, error) {
	kind := spending.Kind(cc.Type)
	id := cc.ID
	if id == "" {
		id = categoryID(kind, cc.Name)
	}

	category := spending.Category{
		ID:        id,
		Name:      cc.Name,
		Type:      kind,
		Icon:      cc.Icon,
		Color:     cc.Color,
		IsDefault: cc.Default,
		SortOrder: cc.SortOrder,
	}
	if err := validation.ValidateCategory(category); err != nil {
		return spending.Category{}, err
	}
	return category, nil
}

func (tc *TransactionConfig) transactionKey(categoryID string) string {
	return fmt.Sprintf("%s/%s/%s/%.2f/%s/%s", categoryID, tc.Type, tc.Date, tc.Amount, tc.Description, tc.Notes)
}

// ToTransaction converts a transaction entry in the given category. Without
// an explicit ID, the ID derives from the entry's content and occurrence.
func (tc *TransactionConfig) ToTransaction(categoryID string, occurrence int) (spending.Transaction, error) {
	id := tc.ID
	if id == "" {
		id = RecordID("transaction", fmt.Sprintf("%s#%d", tc.transactionKey(categoryID), occurrence))
	}

	tx := spending.Transaction{
		ID:          id,
		Type:        spending.Kind(tc.Type),
		Amount:      tc.Amount,
		Description: tc.Description,
		CategoryID:  categoryID,
		Date:        tc.Date,
		IsRecurring: tc.Recurring,
		RecurringID: tc.RecurringID,
		Notes:       tc.Notes,
	}
	if err := validation.ValidateTransaction(tx); err != nil {
		return spending.Transaction{}, err
	}
	return tx, nil
}

// categoryIndex resolves category references by ID, then by name within the
// transaction's kind, then by name alone.
type categoryIndex struct {
	ids    map[string]bool
	byKind map[string]string
	byName map[string]string
}

func (idx categoryIndex) resolve(ref string, kind spending.Kind) (string, bool) {
	if idx.ids[ref] {
		return ref, true
	}
	if id, ok := idx.byKind[string(kind)+"/"+ref]; ok {
		return id, true
	}
	id, ok := idx.byName[ref]
	return id, ok
}

func (c *Configuration) addSpending(snapshot *tracker.Snapshot) error {
	entries := c.Categories
	if len(entries) == 0 {
		for _, category := range spending.DefaultCategories() {
			entries = append(entries, CategoryConfig{
				Name:      category.Name,
				Type:      string(category.Type),
				Icon:      category.Icon,
				Color:     category.Color,
				SortOrder: category.SortOrder,
				Default:   true,
			})
		}
	}

	idx := categoryIndex{
		ids:    make(map[string]bool, len(entries)),
		byKind: make(map[string]string, len(entries)),
		byName: make(map[string]string, len(entries)),
	}
	snapshot.Categories = make([]spending.Category, 0, len(entries))
	for i := range entries {
		category, err := entries[i].ToCategory()
		if err != nil {
			return err
		}
		if idx.ids[category.ID] {
			return fmt.Errorf("duplicate spending category %q", category.Name)
		}
		idx.ids[category.ID] = true
		idx.byKind[string(category.Type)+"/"+category.Name] = category.ID
		if _, ok := idx.byName[category.Name]; !ok {
			idx.byName[category.Name] = category.ID
		}
		snapshot.Categories = append(snapshot.Categories, category)
	}

	seen := make(map[string]int, len(c.Transactions))
	transactionIDs := make(map[string]bool, len(c.Transactions))
	snapshot.Transactions = make([]spending.Transaction, 0, len(c.Transactions))
	for i := range c.Transactions {
		entry := &c.Transactions[i]
		id, ok := idx.resolve(entry.Category, spending.Kind(entry.Type))
		if !ok {
			return fmt.Errorf("transaction %q on %s references unknown category %q", entry.Description, entry.Date, entry.Category)
		}
		key := entry.transactionKey(id)
		tx, err := entry.ToTransaction(id, seen[key])
		if err != nil {
			return err
		}
		seen[key]++
		if transactionIDs[tx.ID] {
			return fmt.Errorf("duplicate transaction ID %q on %s", tx.ID, tx.Date)
		}
		transactionIDs[tx.ID] = true
		snapshot.Transactions = append(snapshot.Transactions, tx)
	}
	return nil
}

// exportSpending writes categories and transactions into conf. Transactions
// refer to their category by name unless the name is shared.
func exportSpending(snapshot *tracker.Snapshot, conf *Configuration) {
	names := make(map[string]int, len(snapshot.Categories))
	for _, category := range snapshot.Categories {
		names[category.Name]++
		conf.Categories = append(conf.Categories, CategoryConfig{
			ID:        category.ID,
			Name:      category.Name,
			Type:      string(category.Type),
			Icon:      category.Icon,
			Color:     category.Color,
			SortOrder: category.SortOrder,
			Default:   category.IsDefault,
		})
	}

	for _, tx := range snapshot.Transactions {
		ref := tx.CategoryID
		if category, ok := snapshot.Category(tx.CategoryID); ok && names[category.Name] == 1 {
			ref = category.Name
		}
		conf.Transactions = append(conf.Transactions, TransactionConfig{
			ID:          tx.ID,
			Type:        string(tx.Type),
			Amount:      tx.Amount,
			Description: tx.Description,
			Category:    ref,
			Date:        tx.Date,
			Recurring:   tx.IsRecurring,
			RecurringID: tx.RecurringID,
			Notes:       tx.Notes,
		})
	}
}
