// Package output renders schedules, projections and summaries as
// human-readable tables or CSV.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/format"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// PrettySchedule writes an amortization schedule as a human-readable table.
func PrettySchedule(w io.Writer, name string, schedule loans.Schedule) {
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Amortization schedule for %s ---\n", name)
	_, _ = fmt.Fprintf(w, "#    | Date       | Payment | Principal | Interest | Extra | Balance | Cumulative Interest\n")
	_, _ = fmt.Fprintf(w, "_    | __________ | _______ | _________ | ________ | _____ | _______ | ___________________\n")
	for _, entry := range schedule.Entries {
		_, _ = p.Fprintf(w, "%-4d | %s | %s | %s | %s | %s | %s | %s\n",
			entry.PaymentNumber,
			entry.Date,
			format.Currency(entry.Payment),
			format.Currency(entry.Principal),
			format.Currency(entry.Interest),
			format.Currency(entry.ExtraPayment),
			format.Currency(entry.RemainingBalance),
			format.Currency(entry.CumulativeInterest),
		)
	}
	if schedule.Capped {
		last, _ := schedule.Last()
		_, _ = p.Fprintf(w, "WARNING: payment never amortizes the loan; stopped after %d payments with %s outstanding\n",
			schedule.Len(), format.Currency(last.RemainingBalance))
	}
}

// CsvSchedule writes an amortization schedule in comma-separated value format.
func CsvSchedule(w io.Writer, schedule loans.Schedule) {
	writeCsvRow(w, "payment", "date", "payment amount", "principal", "interest", "extra payment",
		"remaining balance", "cumulative principal", "cumulative interest", "equity")
	for _, entry := range schedule.Entries {
		writeCsvRow(w,
			fmt.Sprintf("%d", entry.PaymentNumber),
			entry.Date,
			format.PlainCurrency(entry.Payment),
			format.PlainCurrency(entry.Principal),
			format.PlainCurrency(entry.Interest),
			format.PlainCurrency(entry.ExtraPayment),
			format.PlainCurrency(entry.RemainingBalance),
			format.PlainCurrency(entry.CumulativePrincipal),
			format.PlainCurrency(entry.CumulativeInterest),
			format.PlainCurrency(entry.Equity),
		)
	}
}

// PrettyMortgageSummary writes the point-in-time mortgage summary.
func PrettyMortgageSummary(w io.Writer, name string, summary *loans.MortgageSummary) {
	if summary == nil {
		_, _ = fmt.Fprintf(w, "No mortgage to summarize\n")
		return
	}
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Mortgage summary for %s ---\n", name)
	_, _ = fmt.Fprintf(w, "Original principal:    %s\n", format.Currency(summary.OriginalPrincipal))
	_, _ = fmt.Fprintf(w, "Current balance:       %s\n", format.Currency(summary.CurrentBalance))
	_, _ = fmt.Fprintf(w, "Equity:                %s (%s)\n", format.Currency(summary.EquityAmount), format.Percentage(summary.EquityPercentage))
	_, _ = fmt.Fprintf(w, "Total paid:            %s\n", format.Currency(summary.TotalPaid))
	_, _ = fmt.Fprintf(w, "Total interest:        %s\n", format.Currency(summary.TotalInterestPaid))
	_, _ = p.Fprintf(w, "Remaining payments:    %d\n", summary.RemainingPayments)
	_, _ = fmt.Fprintf(w, "Estimated payoff date: %s\n", summary.EstimatedPayoffDate)
	_, _ = fmt.Fprintf(w, "Monthly breakdown:\n")
	breakdown := summary.MonthlyBreakdown
	_, _ = fmt.Fprintf(w, "  Principal: %s\n", format.Currency(breakdown.Principal))
	_, _ = fmt.Fprintf(w, "  Interest:  %s\n", format.Currency(breakdown.Interest))
	_, _ = fmt.Fprintf(w, "  Escrow:    %s\n", format.Currency(breakdown.Escrow))
	_, _ = fmt.Fprintf(w, "  PMI:       %s\n", format.Currency(breakdown.PMI))
	_, _ = fmt.Fprintf(w, "  Total:     %s\n", format.Currency(breakdown.Total))
}

// PrettyImpact writes the comparison between paying with and without extra principal.
func PrettyImpact(w io.Writer, name string, impact *loans.ExtraPaymentScenario) {
	if impact == nil {
		_, _ = fmt.Fprintf(w, "No mortgage to compare\n")
		return
	}
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Extra payment of %s/month on %s ---\n", format.Currency(impact.ExtraAmount), name)
	_, _ = fmt.Fprintf(w, "Original payoff date: %s\n", impact.OriginalPayoffDate)
	_, _ = fmt.Fprintf(w, "New payoff date:      %s\n", impact.NewPayoffDate)
	_, _ = p.Fprintf(w, "Months saved:         %d (%.1f years)\n", impact.MonthsSaved, float64(impact.MonthsSaved)/constants.MonthsPerYear)
	_, _ = fmt.Fprintf(w, "Interest saved:       %s\n", format.Currency(impact.InterestSaved))
}

// PrettyProjections writes a year-by-year retirement projection.
func PrettyProjections(w io.Writer, name string, projections []retirement.Projection) {
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Retirement projection for %s ---\n", name)
	_, _ = fmt.Fprintf(w, "Year | Age | Starting | Contributions | Employer Match | Growth | Ending\n")
	_, _ = fmt.Fprintf(w, "____ | ___ | ________ | _____________ | ______________ | ______ | ______\n")
	for _, row := range projections {
		_, _ = p.Fprintf(w, "%-4d | %s | %s | %s | %s | %s | %s\n",
			row.Year,
			formatAge(row.Age),
			format.Currency(row.StartingBalance),
			format.Currency(row.Contributions),
			format.Currency(row.EmployerMatch),
			format.Currency(row.Growth),
			format.Currency(row.EndingBalance),
		)
	}
}

// CsvProjections writes a year-by-year retirement projection in comma-separated value format.
func CsvProjections(w io.Writer, projections []retirement.Projection) {
	writeCsvRow(w, "year", "age", "starting balance", "contributions", "employer match", "growth", "ending balance")
	for _, row := range projections {
		age := ""
		if row.Age != nil {
			age = fmt.Sprintf("%d", *row.Age)
		}
		writeCsvRow(w,
			fmt.Sprintf("%d", row.Year),
			age,
			format.PlainCurrency(row.StartingBalance),
			format.PlainCurrency(row.Contributions),
			format.PlainCurrency(row.EmployerMatch),
			format.PlainCurrency(row.Growth),
			format.PlainCurrency(row.EndingBalance),
		)
	}
}

// PrettyRetirementSummary writes the portfolio summary.
func PrettyRetirementSummary(w io.Writer, summary retirement.Summary) {
	p := newPrinter()
	_, _ = fmt.Fprintf(w, "--- Retirement summary ---\n")
	_, _ = p.Fprintf(w, "Active accounts:      %d\n", summary.AccountCount)
	_, _ = fmt.Fprintf(w, "Total balance:        %s\n", format.Currency(summary.TotalBalance))
	_, _ = fmt.Fprintf(w, "Total contributed:    %s\n", format.Currency(summary.TotalContributed))
	_, _ = fmt.Fprintf(w, "Total employer match: %s\n", format.Currency(summary.TotalEmployerMatch))
	_, _ = fmt.Fprintf(w, "Total growth:         %s\n", format.Currency(summary.TotalGrowth))
	if summary.YearsToRetirement != nil {
		_, _ = p.Fprintf(w, "Years to retirement:  %d\n", *summary.YearsToRetirement)
	}
	if summary.ProjectedBalanceAtRetirement != nil {
		_, _ = fmt.Fprintf(w, "Projected balance:    %s\n", format.Currency(*summary.ProjectedBalanceAtRetirement))
	}
	if summary.MonthlyIncomeAtRetirement != nil {
		_, _ = fmt.Fprintf(w, "Monthly income:       %s (4%% rule, after 22%% tax)\n", format.Currency(*summary.MonthlyIncomeAtRetirement))
	}
}

// PrettySpendingReport writes a month's income, expenses, category breakdown
// and trend.
func PrettySpendingReport(w io.Writer, report spending.Report) {
	p := newPrinter()
	totals := report.Totals
	_, _ = fmt.Fprintf(w, "--- Spending for %s ---\n", report.Month)
	_, _ = p.Fprintf(w, "Transactions:    %d\n", totals.Count)
	_, _ = fmt.Fprintf(w, "Income:          %s\n", format.Currency(totals.Income))
	_, _ = fmt.Fprintf(w, "Expenses:        %s\n", format.Currency(totals.Expenses))
	_, _ = fmt.Fprintf(w, "Net:             %s\n", format.Currency(totals.Net))
	_, _ = fmt.Fprintf(w, "Savings rate:    %s\n", format.Percentage(report.SavingsRate))
	_, _ = fmt.Fprintf(w, "vs. last month:  %s\n", format.Percentage(report.SpendingChange))

	if len(report.ByCategory) > 0 {
		_, _ = fmt.Fprintf(w, "Category             | Total | Share | Count\n")
		_, _ = fmt.Fprintf(w, "____________________ | _____ | _____ | _____\n")
		for _, row := range report.ByCategory {
			_, _ = p.Fprintf(w, "%-20s | %s | %s | %d\n",
				row.CategoryName,
				format.Currency(row.Total),
				format.Percentage(row.Percentage),
				row.Count,
			)
		}
	}

	_, _ = fmt.Fprintf(w, "Month   | Income | Expenses | Savings\n")
	_, _ = fmt.Fprintf(w, "_______ | ______ | ________ | _______\n")
	for _, point := range report.Trend {
		_, _ = fmt.Fprintf(w, "%s | %s | %s | %s\n",
			point.Month,
			format.Currency(point.Income),
			format.Currency(point.Expenses),
			format.Currency(point.Savings),
		)
	}
	avg := report.Average
	_, _ = fmt.Fprintf(w, "Monthly average: income %s, expenses %s, savings %s\n",
		format.Currency(avg.Income), format.Currency(avg.Expenses), format.Currency(avg.Savings))
}

// CsvSpendingTrend writes the monthly trend in comma-separated value format.
func CsvSpendingTrend(w io.Writer, trend []spending.TrendPoint) {
	writeCsvRow(w, "month", "income", "expenses", "savings")
	for _, point := range trend {
		writeCsvRow(w,
			point.Month,
			format.PlainCurrency(point.Income),
			format.PlainCurrency(point.Expenses),
			format.PlainCurrency(point.Savings),
		)
	}
}

// CsvTransactions writes transactions with their category names in
// comma-separated value format.
func CsvTransactions(w io.Writer, transactions []spending.Transaction, categories []spending.Category) {
	names := make(map[string]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	writeCsvRow(w, "date", "type", "category", "description", "amount", "notes")
	for _, tx := range transactions {
		name, ok := names[tx.CategoryID]
		if !ok {
			name = tx.CategoryID
		}
		writeCsvRow(w, tx.Date, string(tx.Type), name, tx.Description, format.PlainCurrency(tx.Amount), tx.Notes)
	}
}

func formatAge(age *int) string {
	if age == nil {
		return "  -"
	}
	return fmt.Sprintf("%3d", *age)
}

func writeCsvRow(w io.Writer, fields ...string) {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	_, _ = fmt.Fprintf(w, "%s\n", strings.Join(quoted, ","))
}
