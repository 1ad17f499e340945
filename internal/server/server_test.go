package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iwvelando/finance-tracker/internal/config"
	"github.com/iwvelando/finance-tracker/internal/tracker"
	"github.com/iwvelando/finance-tracker/pkg/constants"
	"github.com/iwvelando/finance-tracker/pkg/loans"
	"github.com/iwvelando/finance-tracker/pkg/retirement"
	"github.com/iwvelando/finance-tracker/pkg/spending"
	"github.com/iwvelando/finance-tracker/pkg/testutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const testConfigJSON = `{
  "profile": {"currentAge": 40, "retirementAge": 65},
  "mortgage": {
    "name": "Primary Residence",
    "originalPrincipal": 300000,
    "interestRate": 6,
    "termMonths": 360,
    "startDate": "2024-01-01",
    "escrow": 400
  },
  "retirementAccounts": [
    {
      "name": "Work 401k",
      "type": "401k",
      "currentBalance": 50000,
      "contributionAmount": 500,
      "contributionFrequency": "per-paycheck",
      "employerMatchPercentage": 50,
      "expectedReturnRate": 7
    },
    {
      "name": "Old IRA",
      "type": "ira",
      "currentBalance": 10000,
      "contributionAmount": 0,
      "contributionFrequency": "yearly",
      "expectedReturnRate": 5,
      "active": false
    }
  ],
  "contributions": [
    {"account": "Work 401k", "date": "2024-01-15", "employeeAmount": 500, "employerAmount": 250, "balanceAfter": 50000}
  ]
}`

func newTestHandler(opts ...Option) http.Handler {
	return NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "test", opts...)
}

func postJSON(t *testing.T, handler http.Handler, path, options string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"config": ` + testConfigJSON
	if options != "" {
		body += `, "options": ` + options
	}
	body += `}`

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response: %v: %s", err, rr.Body.String())
	}
}

func TestHandleScheduleSuccess(t *testing.T) {
	rr := postJSON(t, newTestHandler(), "/api/mortgage/schedule", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Schedule loans.Schedule `json:"schedule"`
		CSV      string         `json:"csv"`
		Duration string         `json:"duration"`
	}
	decodeResponse(t, rr, &resp)

	if resp.Schedule.Len() != 360 {
		t.Errorf("expected 360 payments, got %d", resp.Schedule.Len())
	}
	if resp.Schedule.Capped {
		t.Error("expected an amortizing schedule")
	}
	first := resp.Schedule.Entries[0]
	if first.Date != "2024-02-01" || first.Interest != 1500 {
		t.Errorf("unexpected first payment %+v", first)
	}
	if lines := strings.Count(resp.CSV, "\n"); lines != 361 {
		t.Errorf("expected 361 CSV lines, got %d", lines)
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleScheduleWithExtra(t *testing.T) {
	rr := postJSON(t, newTestHandler(), "/api/mortgage/schedule", `{"extra": 500}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp scheduleResponse
	decodeResponse(t, rr, &resp)
	if resp.Schedule.Len() >= 360 {
		t.Errorf("expected extra payments to shorten the schedule, got %d payments", resp.Schedule.Len())
	}

	rr = postJSON(t, newTestHandler(), "/api/mortgage/schedule", `{"extra": -5}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for negative extra, got %d", rr.Code)
	}
}

func TestHandleMortgageSummary(t *testing.T) {
	rr := postJSON(t, newTestHandler(), "/api/mortgage/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp mortgageSummaryResponse
	decodeResponse(t, rr, &resp)
	if resp.Summary == nil {
		t.Fatal("expected a summary")
	}
	if resp.Summary.RemainingPayments != 360 {
		t.Errorf("expected 360 remaining payments, got %d", resp.Summary.RemainingPayments)
	}
	if resp.Summary.MonthlyBreakdown.Escrow != 400 {
		t.Errorf("expected escrow 400, got %.2f", resp.Summary.MonthlyBreakdown.Escrow)
	}
}

func TestHandleImpact(t *testing.T) {
	handler := newTestHandler()

	rr := postJSON(t, handler, "/api/mortgage/impact", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without extra, got %d", rr.Code)
	}

	rr = postJSON(t, handler, "/api/mortgage/impact", `{"extra": 200}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp impactResponse
	decodeResponse(t, rr, &resp)
	if resp.Impact == nil || resp.Impact.MonthsSaved <= 0 || resp.Impact.InterestSaved <= 0 {
		t.Errorf("expected positive savings, got %+v", resp.Impact)
	}
	if resp.Impact.OriginalPayoffDate != "2054-01-01" {
		t.Errorf("expected original payoff 2054-01-01, got %s", resp.Impact.OriginalPayoffDate)
	}
}

func TestHandleProjections(t *testing.T) {
	handler := newTestHandler()

	rr := postJSON(t, handler, "/api/retirement/projections", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var combined projectionsResponse
	decodeResponse(t, rr, &combined)
	if combined.Years != 25 || len(combined.Projections) != 26 {
		t.Fatalf("expected 25 years to retirement, got %d years and %d rows", combined.Years, len(combined.Projections))
	}
	if combined.Projections[0].StartingBalance != 50000 {
		t.Errorf("expected inactive account excluded, starting balance %.2f", combined.Projections[0].StartingBalance)
	}
	if age := combined.Projections[25].Age; age == nil || *age != 65 {
		t.Errorf("expected final age 65, got %v", age)
	}

	rr = postJSON(t, handler, "/api/retirement/projections", `{"account": "Old IRA", "years": 3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var single projectionsResponse
	decodeResponse(t, rr, &single)
	if single.Account != "Old IRA" || len(single.Projections) != 4 {
		t.Errorf("unexpected single-account projection %+v", single)
	}
	if single.Projections[0].Growth != 500 {
		t.Errorf("expected 5%% growth on 10000, got %.2f", single.Projections[0].Growth)
	}

	rr = postJSON(t, handler, "/api/retirement/projections", `{"account": "Pension"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown account, got %d", rr.Code)
	}

	rr = postJSON(t, handler, "/api/retirement/projections", `{"years": -1}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for negative years, got %d", rr.Code)
	}
}

func TestHandleProjectionsRejectsUnboundedInput(t *testing.T) {
	handler := newTestHandler()

	tests := []struct {
		name    string
		path    string
		options string
	}{
		{"huge horizon", "/api/retirement/projections", `{"years": 1000000000}`},
		{"max int horizon", "/api/retirement/projections", `{"years": 9223372036854775807}`},
		{"one past the limit", "/api/retirement/projections", `{"years": 151}`},
		{"negative current age", "/api/retirement/projections", `{"currentAge": -1}`},
		{"huge retirement age", "/api/retirement/summary", `{"retirementAge": 1000000000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handler, tt.path, tt.options)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}

	rr := postJSON(t, handler, "/api/retirement/projections", `{"years": 150}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected the longest horizon to be accepted, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleRetirementSummary(t *testing.T) {
	rr := postJSON(t, newTestHandler(), "/api/retirement/summary", `{"retirementAge": 60}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp retirementSummaryResponse
	decodeResponse(t, rr, &resp)
	summary := resp.Summary
	if summary.AccountCount != 1 || summary.TotalBalance != 50000 {
		t.Errorf("unexpected totals %+v", summary)
	}
	if summary.TotalContributed != 500 || summary.TotalEmployerMatch != 250 {
		t.Errorf("unexpected ledger totals %+v", summary)
	}
	if summary.YearsToRetirement == nil || *summary.YearsToRetirement != 20 {
		t.Errorf("expected 20 years to retirement, got %v", summary.YearsToRetirement)
	}
	if summary.ProjectedBalanceAtRetirement == nil || summary.MonthlyIncomeAtRetirement == nil {
		t.Fatal("expected projected balance and income")
	}
	expected := retirement.MonthlyIncome(*summary.ProjectedBalanceAtRetirement)
	if diff := *summary.MonthlyIncomeAtRetirement - expected; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("monthly income %.2f, expected %.2f", *summary.MonthlyIncomeAtRetirement, expected)
	}
}

func TestHandleExport(t *testing.T) {
	rr := postJSON(t, newTestHandler(), "/api/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	decodeResponse(t, rr, &resp)

	var exported config.Configuration
	if err := yaml.Unmarshal([]byte(resp["configYaml"]), &exported); err != nil {
		t.Fatalf("failed to parse exported YAML: %v", err)
	}
	if exported.Mortgage == nil || exported.Mortgage.InterestRate != 6 {
		t.Errorf("expected mortgage rate in percent, got %+v", exported.Mortgage)
	}
	if len(exported.RetirementAccounts) != 2 || len(exported.Contributions) != 1 {
		t.Errorf("expected 2 accounts and 1 contribution, got %d and %d",
			len(exported.RetirementAccounts), len(exported.Contributions))
	}
	if exported.Contributions[0].Account != "Work 401k" {
		t.Errorf("expected contribution to reference account by name, got %q", exported.Contributions[0].Account)
	}
}

func TestCalculationErrors(t *testing.T) {
	handler := newTestHandler()

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{name: "wrong method", method: http.MethodGet, status: http.StatusMethodNotAllowed},
		{name: "missing config", method: http.MethodPost, body: `{}`, status: http.StatusBadRequest},
		{name: "empty body", method: http.MethodPost, body: ``, status: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, body: `{"config": }`, status: http.StatusBadRequest},
		{
			name:   "invalid mortgage",
			method: http.MethodPost,
			body:   `{"config": {"mortgage": {"name": "Bad", "originalPrincipal": -1, "interestRate": 5, "termMonths": 360, "startDate": "2024-01-01"}}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "non-amortizing term",
			method: http.MethodPost,
			body:   `{"config": {"mortgage": {"name": "Long", "originalPrincipal": 300000, "interestRate": 50, "termMonths": 20000, "startDate": "2024-01-01"}}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "no mortgage",
			method: http.MethodPost,
			body:   `{"config": {"profile": {"currentAge": 30}}}`,
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/mortgage/schedule", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusMethodNotAllowed {
				var resp map[string]string
				decodeResponse(t, rr, &resp)
				if resp["error"] == "" {
					t.Error("expected error message in response")
				}
			}
		})
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()
	h.writeJSON(rr, http.StatusOK, map[string]float64{"payment": math.NaN()})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	decodeResponse(t, rr, &resp)
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestRequestTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/mortgage/schedule", strings.NewReader(`{"config": `+testConfigJSON+`}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestTrackerBackedEndpoints(t *testing.T) {
	ctx := context.Background()
	state := tracker.New(nil, nil)
	if _, err := state.SetMortgage(ctx, testutil.SampleMortgage()); err != nil {
		t.Fatalf("SetMortgage() error = %v", err)
	}

	currentAge := 50
	handler := newTestHandler(WithTracker(state, config.Profile{CurrentAge: &currentAge}))

	req := httptest.NewRequest(http.MethodPost, "/api/mortgage/summary", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 from stored state, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var snapshot tracker.Snapshot
	decodeResponse(t, rr, &snapshot)
	if snapshot.Mortgage == nil || snapshot.Mortgage.Name != "Primary Residence" {
		t.Errorf("unexpected state %+v", snapshot)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(`retirementAccounts:
  - name: Roth IRA
    type: roth-ira
    currentBalance: 12000
    contributionAmount: 500
    contributionFrequency: monthly
    expectedReturnRate: 6
`)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 from import, got %d: %s", rr.Code, rr.Body.String())
	}

	var imported importResponse
	decodeResponse(t, rr, &imported)
	if imported.Mortgage || imported.Accounts != 1 {
		t.Errorf("unexpected import result %+v", imported)
	}
	if imported.Categories != len(spending.DefaultCategories()) || imported.Transactions != 0 {
		t.Errorf("expected default categories and no transactions, got %+v", imported)
	}
	if _, ok := state.Mortgage(); ok {
		t.Error("expected import to replace the stored mortgage")
	}
	if testutil.FindAccount(state.Accounts(), "Roth IRA") == nil {
		t.Error("expected imported account in tracker")
	}
}

func TestStateEndpointsWithoutTracker(t *testing.T) {
	handler := newTestHandler()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/state"},
		{http.MethodPost, "/api/import"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected status 404, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	handler := newTestHandler(WithRateLimit(0.001, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst of 2 to be allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request to be limited, got %d", codes[2])
	}
}

func TestVersionAndMetrics(t *testing.T) {
	handler := NewHandler(nil, 0, "  v1.2.3  ")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var resp map[string]string
	decodeResponse(t, rr, &resp)
	if resp["version"] != "v1.2.3" {
		t.Errorf("expected trimmed version, got %q", resp["version"])
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "finance_tracker_http_requests_total") {
		t.Error("expected request counter in metrics output")
	}
}

const spendingConfigJSON = `{
  "transactions": [
    {"type": "income", "amount": 5000, "description": "Paycheck", "category": "Salary", "date": "2024-03-01"},
    {"type": "expense", "amount": 1500, "description": "Rent", "category": "Housing", "date": "2024-03-02"},
    {"type": "expense", "amount": 250, "description": "Groceries", "category": "Groceries", "date": "2024-03-09"},
    {"type": "expense", "amount": 1500, "description": "Rent", "category": "Housing", "date": "2024-02-02"}
  ]
}`

func postSpending(t *testing.T, handler http.Handler, path, options string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"config": ` + spendingConfigJSON
	if options != "" {
		body += `, "options": ` + options
	}
	body += `}`

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleSpendingSummary(t *testing.T) {
	rr := postSpending(t, newTestHandler(), "/api/spending/summary", `{"month": "2024-03", "months": 3}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Report struct {
			Month  string `json:"month"`
			Totals struct {
				Income   float64 `json:"income"`
				Expenses float64 `json:"expenses"`
			} `json:"totals"`
			SavingsRate float64 `json:"savingsRate"`
			ByCategory  []struct {
				CategoryName string  `json:"categoryName"`
				Total        float64 `json:"total"`
			} `json:"byCategory"`
			Trend []struct {
				Month string `json:"month"`
			} `json:"trend"`
		} `json:"report"`
		CSV string `json:"csv"`
	}
	decodeResponse(t, rr, &resp)

	report := resp.Report
	if report.Month != "2024-03" || report.Totals.Income != 5000 || report.Totals.Expenses != 1750 {
		t.Errorf("unexpected report %+v", report)
	}
	if math.Abs(report.SavingsRate-65) > 1e-9 {
		t.Errorf("SavingsRate = %v, expected 65", report.SavingsRate)
	}
	if len(report.ByCategory) != 2 || report.ByCategory[0].CategoryName != "Housing" {
		t.Errorf("unexpected category breakdown %+v", report.ByCategory)
	}
	if len(report.Trend) != 3 || report.Trend[0].Month != "2024-01" {
		t.Errorf("unexpected trend %+v", report.Trend)
	}
	if lines := strings.Count(resp.CSV, "\n"); lines != 4 {
		t.Errorf("expected 4 CSV lines, got %d", lines)
	}
}

func TestHandleSpendingSummaryRejectsBadOptions(t *testing.T) {
	handler := newTestHandler()
	for _, options := range []string{
		`{"month": "March"}`,
		`{"month": "2024-03", "months": 0}`,
		`{"month": "2024-03", "months": 1000000000}`,
	} {
		rr := postSpending(t, handler, "/api/spending/summary", options)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("options %s: expected status 400, got %d: %s", options, rr.Code, rr.Body.String())
		}
	}
}

func TestHandleTransactions(t *testing.T) {
	handler := newTestHandler()

	rr := postSpending(t, handler, "/api/spending/transactions", `{"filter": {"type": "expense", "from": "2024-03-01"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Transactions []struct {
			Description string `json:"description"`
			Date        string `json:"date"`
		} `json:"transactions"`
		Totals struct {
			Expenses float64 `json:"expenses"`
			Count    int     `json:"count"`
		} `json:"totals"`
		CSV string `json:"csv"`
	}
	decodeResponse(t, rr, &resp)

	if len(resp.Transactions) != 2 || resp.Transactions[0].Date != "2024-03-09" {
		t.Errorf("expected two March expenses newest first, got %+v", resp.Transactions)
	}
	if resp.Totals.Expenses != 1750 || resp.Totals.Count != 2 {
		t.Errorf("unexpected totals %+v", resp.Totals)
	}
	if !strings.Contains(resp.CSV, `"2024-03-02","expense","Housing","Rent","1500.00",""`) {
		t.Errorf("unexpected CSV:\n%s", resp.CSV)
	}

	for _, options := range []string{`{"filter": {"type": "transfer"}}`, `{"filter": {"from": "yesterday"}}`} {
		rr := postSpending(t, handler, "/api/spending/transactions", options)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("options %s: expected status 400, got %d", options, rr.Code)
		}
	}
}
