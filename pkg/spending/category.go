// Package spending models income and expense transactions grouped into
// categories and summarizes them by month and by category.
package spending

import "time"

// Kind separates money coming in from money going out.
type Kind string

// Supported kinds.
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is income or expense.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Category groups transactions of one kind.
type Category struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Type      Kind      `json:"type" yaml:"type"`
	Icon      string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
	IsDefault bool      `json:"isDefault" yaml:"isDefault"`
	SortOrder int       `json:"sortOrder" yaml:"sortOrder"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

var defaultCategories = []Category{
	{Name: "Housing", Type: KindExpense, Icon: "Home", Color: "#3B82F6"},
	{Name: "Transportation", Type: KindExpense, Icon: "Car", Color: "#10B981"},
	{Name: "Groceries", Type: KindExpense, Icon: "ShoppingCart", Color: "#F59E0B"},
	{Name: "Utilities", Type: KindExpense, Icon: "Zap", Color: "#8B5CF6"},
	{Name: "Entertainment", Type: KindExpense, Icon: "Film", Color: "#EC4899"},
	{Name: "Dining Out", Type: KindExpense, Icon: "UtensilsCrossed", Color: "#EF4444"},
	{Name: "Healthcare", Type: KindExpense, Icon: "Heart", Color: "#06B6D4"},
	{Name: "Shopping", Type: KindExpense, Icon: "ShoppingBag", Color: "#84CC16"},
	{Name: "Personal", Type: KindExpense, Icon: "User", Color: "#F97316"},
	{Name: "Education", Type: KindExpense, Icon: "GraduationCap", Color: "#6366F1"},
	{Name: "Travel", Type: KindExpense, Icon: "Plane", Color: "#14B8A6"},
	{Name: "Subscriptions", Type: KindExpense, Icon: "Repeat", Color: "#A855F7"},
	{Name: "Other", Type: KindExpense, Icon: "MoreHorizontal", Color: "#6B7280"},
	{Name: "Salary", Type: KindIncome, Icon: "Briefcase", Color: "#22C55E"},
	{Name: "Freelance", Type: KindIncome, Icon: "Laptop", Color: "#3B82F6"},
	{Name: "Investments", Type: KindIncome, Icon: "TrendingUp", Color: "#8B5CF6"},
	{Name: "Gifts", Type: KindIncome, Icon: "Gift", Color: "#EC4899"},
	{Name: "Other Income", Type: KindIncome, Icon: "DollarSign", Color: "#6B7280"},
}

// DefaultCategories returns the built-in expense categories followed by the
// income categories. IDs and timestamps are left for the caller to assign.
func DefaultCategories() []Category {
	categories := make([]Category, len(defaultCategories))
	order := map[Kind]int{}
	for i, category := range defaultCategories {
		category.IsDefault = true
		category.SortOrder = order[category.Type]
		order[category.Type]++
		categories[i] = category
	}
	return categories
}

// FilterByKind returns the categories of one kind, keeping their order.
func FilterByKind(categories []Category, kind Kind) []Category {
	matched := []Category{}
	for _, category := range categories {
		if category.Type == kind {
			matched = append(matched, category)
		}
	}
	return matched
}
