package spending

import (
	"sort"
	"time"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/datetime"
)

// Totals sums a set of transactions by direction.
type Totals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Count    int     `json:"count"`
}

// CategorySummary is one category's share of expenses.
type CategorySummary struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Color        string  `json:"color"`
	Total        float64 `json:"total"`
	Percentage   float64 `json:"percentage"`
	Count        int     `json:"count"`
}

// TrendPoint holds one month's totals.
type TrendPoint struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// Averages are per-month means over the months that had any activity.
type Averages struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// Report summarizes one month against the months before it. SavingsRate is
// the percentage of income not spent and SpendingChange the percentage change
// in expenses from the previous month; each is zero when its base is zero.
type Report struct {
	Month          string            `json:"month"`
	Totals         Totals            `json:"totals"`
	PreviousMonth  Totals            `json:"previousMonth"`
	SavingsRate    float64           `json:"savingsRate"`
	SpendingChange float64           `json:"spendingChange"`
	ByCategory     []CategorySummary `json:"byCategory"`
	Trend          []TrendPoint      `json:"trend"`
	Average        Averages          `json:"average"`
}

// Summarize totals the given transactions.
func Summarize(transactions []Transaction) Totals {
	var totals Totals
	for _, tx := range transactions {
		switch tx.Type {
		case KindIncome:
			totals.Income += tx.Amount
		case KindExpense:
			totals.Expenses += tx.Amount
		default:
			continue
		}
		totals.Count++
	}
	totals.Net = totals.Income - totals.Expenses
	return totals
}

// InMonth returns the transactions dated within the calendar month of month.
func InMonth(transactions []Transaction, month time.Time) []Transaction {
	label := datetime.FormatMonth(month)
	matched := []Transaction{}
	for _, tx := range transactions {
		if day := tx.Day(); day != "" && day[:len(label)] == label {
			matched = append(matched, tx)
		}
	}
	return matched
}

// MonthlyTotals totals the transactions of one calendar month.
func MonthlyTotals(transactions []Transaction, month time.Time) Totals {
	return Summarize(InMonth(transactions, month))
}

// ByCategory splits expenses across categories, largest first. Categories
// without spending are omitted; expenses in unknown categories still count
// toward the percentage base.
func ByCategory(transactions []Transaction, categories []Category) []CategorySummary {
	totals := map[string]float64{}
	counts := map[string]int{}
	overall := 0.0
	for _, tx := range transactions {
		if tx.Type != KindExpense {
			continue
		}
		totals[tx.CategoryID] += tx.Amount
		counts[tx.CategoryID]++
		overall += tx.Amount
	}

	summaries := []CategorySummary{}
	for _, category := range categories {
		total := totals[category.ID]
		if total <= 0 {
			continue
		}
		summaries = append(summaries, CategorySummary{
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Color:        category.Color,
			Total:        total,
			Percentage:   total / overall * constants.PercentageMultiplier,
			Count:        counts[category.ID],
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Total > summaries[j].Total
	})
	return summaries
}

// MonthlyTrend returns one point per month for the months ending with
// through, oldest first.
func MonthlyTrend(transactions []Transaction, months int, through time.Time) []TrendPoint {
	if months <= 0 {
		return []TrendPoint{}
	}
	months = min(months, constants.MaxTrendMonths)

	buckets := map[string]*TrendPoint{}
	trend := make([]TrendPoint, months)
	first := firstOfMonth(through)
	for i := range trend {
		trend[i].Month = datetime.FormatMonth(datetime.AddMonths(first, i-months+1))
		buckets[trend[i].Month] = &trend[i]
	}

	for _, tx := range transactions {
		day := tx.Day()
		if day == "" {
			continue
		}
		point, ok := buckets[day[:len(constants.MonthLayout)]]
		if !ok {
			continue
		}
		switch tx.Type {
		case KindIncome:
			point.Income += tx.Amount
		case KindExpense:
			point.Expenses += tx.Amount
		}
	}
	for i := range trend {
		trend[i].Savings = trend[i].Income - trend[i].Expenses
	}
	return trend
}

// Average averages the trend over months with any income or expenses.
func Average(trend []TrendPoint) Averages {
	var avg Averages
	active := 0
	for _, point := range trend {
		if point.Income <= 0 && point.Expenses <= 0 {
			continue
		}
		avg.Income += point.Income
		avg.Expenses += point.Expenses
		avg.Savings += point.Savings
		active++
	}
	if active == 0 {
		return Averages{}
	}
	n := float64(active)
	return Averages{Income: avg.Income / n, Expenses: avg.Expenses / n, Savings: avg.Savings / n}
}

// BuildReport summarizes month with a trend covering the given number of
// months up to and including it.
func BuildReport(transactions []Transaction, categories []Category, month time.Time, months int) Report {
	current := InMonth(transactions, month)
	report := Report{
		Month:         datetime.FormatMonth(month),
		Totals:        Summarize(current),
		PreviousMonth: MonthlyTotals(transactions, datetime.AddMonths(firstOfMonth(month), -1)),
		ByCategory:    ByCategory(current, categories),
		Trend:         MonthlyTrend(transactions, months, month),
	}
	report.Average = Average(report.Trend)
	if report.Totals.Income > 0 {
		report.SavingsRate = report.Totals.Net / report.Totals.Income * constants.PercentageMultiplier
	}
	if report.PreviousMonth.Expenses > 0 {
		report.SpendingChange = (report.Totals.Expenses - report.PreviousMonth.Expenses) /
			report.PreviousMonth.Expenses * constants.PercentageMultiplier
	}
	return report
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
