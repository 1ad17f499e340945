package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
)

func testSchedule() loans.Schedule {
	return loans.Schedule{
		Entries: []loans.AmortizationEntry{
			{PaymentNumber: 1, Date: "2024-02-01", Payment: 1798.65, Principal: 298.65, Interest: 1500, RemainingBalance: 299701.35, CumulativePrincipal: 298.65, CumulativeInterest: 1500, Equity: 298.65},
			{PaymentNumber: 2, Date: "2024-03-01", Payment: 1798.65, Principal: 300.14, Interest: 1498.51, RemainingBalance: 299401.21, CumulativePrincipal: 598.79, CumulativeInterest: 2998.51, Equity: 598.79},
		},
	}
}

func TestPrettySchedule(t *testing.T) {
	var buf bytes.Buffer
	PrettySchedule(&buf, "Home", testSchedule())
	output := buf.String()

	expected := []string{
		"--- Amortization schedule for Home ---",
		"#    | Date       | Payment",
		"2024-02-01",
		"$1,798.65",
		"$299,701.35",
		"$2,998.51",
	}
	for _, element := range expected {
		if !strings.Contains(output, element) {
			t.Errorf("PrettySchedule missing %q in output:\n%s", element, output)
		}
	}
	if strings.Contains(output, "WARNING") {
		t.Error("PrettySchedule should not warn for an amortizing schedule")
	}
}

func TestPrettyScheduleCapped(t *testing.T) {
	schedule := testSchedule()
	schedule.Capped = true

	var buf bytes.Buffer
	PrettySchedule(&buf, "Home", schedule)

	if !strings.Contains(buf.String(), "WARNING: payment never amortizes the loan; stopped after 2 payments with $299,401.21 outstanding") {
		t.Errorf("expected capped warning, got:\n%s", buf.String())
	}
}

func TestCsvSchedule(t *testing.T) {
	var buf bytes.Buffer
	CsvSchedule(&buf, testSchedule())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], `"payment","date","payment amount"`) {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != `"1","2024-02-01","1798.65","298.65","1500.00","0.00","299701.35","298.65","1500.00","298.65"` {
		t.Errorf("unexpected first row %q", lines[1])
	}
}

func TestPrettyMortgageSummary(t *testing.T) {
	summary := &loans.MortgageSummary{
		OriginalPrincipal:   300000,
		CurrentBalance:      250000,
		EquityAmount:        50000,
		EquityPercentage:    16.666666,
		TotalPaid:           647514.57,
		TotalInterestPaid:   347514.57,
		RemainingPayments:   360,
		EstimatedPayoffDate: "2054-01-01",
		MonthlyBreakdown:    loans.MonthlyBreakdown{Principal: 548.65, Interest: 1250, Escrow: 300, Total: 2098.65},
	}

	var buf bytes.Buffer
	PrettyMortgageSummary(&buf, "Home", summary)
	output := buf.String()

	for _, element := range []string{"$50,000.00 (16.67%)", "Remaining payments:    360", "2054-01-01", "Total:     $2,098.65"} {
		if !strings.Contains(output, element) {
			t.Errorf("PrettyMortgageSummary missing %q in output:\n%s", element, output)
		}
	}

	buf.Reset()
	PrettyMortgageSummary(&buf, "Home", nil)
	if !strings.Contains(buf.String(), "No mortgage to summarize") {
		t.Errorf("expected placeholder for nil summary, got %q", buf.String())
	}
}

func TestPrettyImpact(t *testing.T) {
	impact := &loans.ExtraPaymentScenario{
		ExtraAmount:        200,
		OriginalPayoffDate: "2054-01-01",
		NewPayoffDate:      "2047-10-01",
		MonthsSaved:        78,
		InterestSaved:      72000.5,
	}

	var buf bytes.Buffer
	PrettyImpact(&buf, "Home", impact)
	output := buf.String()

	for _, element := range []string{"Extra payment of $200.00/month on Home", "Months saved:         78 (6.5 years)", "$72,000.50"} {
		if !strings.Contains(output, element) {
			t.Errorf("PrettyImpact missing %q in output:\n%s", element, output)
		}
	}
}

func TestProjectionsOutput(t *testing.T) {
	age := 64
	nextAge := 65
	projections := []retirement.Projection{
		{Year: 0, Age: &age, StartingBalance: 10000, EndingBalance: 10000},
		{Year: 1, Age: &nextAge, StartingBalance: 10000, Contributions: 6000, EmployerMatch: 3000, Growth: 1330, EndingBalance: 20330},
	}

	var pretty bytes.Buffer
	PrettyProjections(&pretty, "401k", projections)
	for _, element := range []string{"--- Retirement projection for 401k ---", " 65 | $10,000.00 | $6,000.00 | $3,000.00 | $1,330.00 | $20,330.00"} {
		if !strings.Contains(pretty.String(), element) {
			t.Errorf("PrettyProjections missing %q in output:\n%s", element, pretty.String())
		}
	}

	var csv bytes.Buffer
	CsvProjections(&csv, projections)
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[2] != `"1","65","10000.00","6000.00","3000.00","1330.00","20330.00"` {
		t.Errorf("unexpected row %q", lines[2])
	}

	csv.Reset()
	CsvProjections(&csv, []retirement.Projection{{Year: 0, StartingBalance: 5, EndingBalance: 5}})
	if !strings.Contains(csv.String(), `"0","","5.00"`) {
		t.Errorf("expected empty age column, got %q", csv.String())
	}
}

func TestPrettyRetirementSummary(t *testing.T) {
	years := 1
	projected := 20330.0
	income := projected * 0.04 * 0.78 / 12
	summary := retirement.Summary{
		TotalBalance:                 10000,
		TotalContributed:             4000,
		TotalEmployerMatch:           2000,
		TotalGrowth:                  4000,
		AccountCount:                 1,
		YearsToRetirement:            &years,
		ProjectedBalanceAtRetirement: &projected,
		MonthlyIncomeAtRetirement:    &income,
	}

	var buf bytes.Buffer
	PrettyRetirementSummary(&buf, summary)
	output := buf.String()

	for _, element := range []string{"Active accounts:      1", "Years to retirement:  1", "$20,330.00", "$52.86 (4% rule, after 22% tax)"} {
		if !strings.Contains(output, element) {
			t.Errorf("PrettyRetirementSummary missing %q in output:\n%s", element, output)
		}
	}

	buf.Reset()
	PrettyRetirementSummary(&buf, retirement.Summary{})
	if strings.Contains(buf.String(), "Years to retirement") {
		t.Error("expected optional lines to be omitted")
	}
}

func testSpendingReport() spending.Report {
	return spending.Report{
		Month:          "2024-03",
		Totals:         spending.Totals{Income: 5000, Expenses: 2050, Net: 2950, Count: 5},
		SavingsRate:    59,
		SpendingChange: 28.125,
		ByCategory: []spending.CategorySummary{
			{CategoryID: "housing", CategoryName: "Housing", Total: 1500, Percentage: 73.17, Count: 1},
		},
		Trend: []spending.TrendPoint{
			{Month: "2024-02", Income: 4000, Expenses: 1600, Savings: 2400},
			{Month: "2024-03", Income: 5000, Expenses: 2050, Savings: 2950},
		},
		Average: spending.Averages{Income: 4500, Expenses: 1825, Savings: 2675},
	}
}

func TestPrettySpendingReport(t *testing.T) {
	var buf bytes.Buffer
	PrettySpendingReport(&buf, testSpendingReport())
	output := buf.String()

	expected := []string{
		"--- Spending for 2024-03 ---",
		"Income:          $5,000.00",
		"Savings rate:    59.00%",
		"vs. last month:  28.13%",
		"Housing              | $1,500.00 | 73.17% | 1",
		"2024-02 | $4,000.00 | $1,600.00 | $2,400.00",
		"Monthly average: income $4,500.00, expenses $1,825.00, savings $2,675.00",
	}
	for _, element := range expected {
		if !strings.Contains(output, element) {
			t.Errorf("PrettySpendingReport missing %q in output:\n%s", element, output)
		}
	}
}

func TestCsvSpendingTrend(t *testing.T) {
	var buf bytes.Buffer
	CsvSpendingTrend(&buf, testSpendingReport().Trend)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != `"month","income","expenses","savings"` {
		t.Errorf("unexpected header %s", lines[0])
	}
	if lines[2] != `"2024-03","5000.00","2050.00","2950.00"` {
		t.Errorf("unexpected row %s", lines[2])
	}
}

func TestCsvTransactions(t *testing.T) {
	categories := []spending.Category{{ID: "food", Name: "Groceries"}}
	transactions := []spending.Transaction{
		{Type: spending.KindExpense, Amount: 82.4, Description: `The "big" shop`, CategoryID: "food", Date: "2024-03-02"},
		{Type: spending.KindExpense, Amount: 5, Description: "Coffee", CategoryID: "gone", Date: "2024-03-01"},
	}

	var buf bytes.Buffer
	CsvTransactions(&buf, transactions, categories)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if lines[1] != `"2024-03-02","expense","Groceries","The ""big"" shop","82.40",""` {
		t.Errorf("unexpected row %s", lines[1])
	}
	if !strings.Contains(lines[2], `"gone"`) {
		t.Errorf("expected unknown category ID to be written as is, got %s", lines[2])
	}
}
