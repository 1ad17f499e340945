// Package loans implements fixed-rate mortgage amortization: the monthly
// payment formula, payment-by-payment schedules with optional extra
// principal, point-in-time summaries and extra-payment comparisons.
//
// Every function here is a pure transformation of its inputs. Records are
// read, never modified, and results are new values.
package loans

import (
	"time"

	"github.com/iwvelando/finance-tracker/pkg/units"
)

// Mortgage is the single mortgage record tracked per user.
type Mortgage struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	PropertyAddress    string     `json:"propertyAddress,omitempty"`
	OriginalPrincipal  float64    `json:"originalPrincipal"`
	CurrentBalance     float64    `json:"currentBalance"`
	InterestRate       units.Rate `json:"interestRate"`
	TermMonths         int        `json:"termMonths"`
	StartDate          time.Time  `json:"startDate"`
	PaymentDay         int        `json:"paymentDay,omitempty"`
	MonthlyPayment     float64    `json:"monthlyPayment"`
	ExtraPaymentAmount float64    `json:"extraPaymentAmount,omitempty"`
	EscrowAmount       float64    `json:"escrowAmount,omitempty"`
	PMIAmount          float64    `json:"pmiAmount,omitempty"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// RecalculatePayment refreshes the cached monthly payment from the original
// principal, rate and term. The current balance is never used.
func (m *Mortgage) RecalculatePayment() {
	m.MonthlyPayment = CalculateMonthlyPayment(m.OriginalPrincipal, m.InterestRate, m.TermMonths)
}

// AmortizationEntry is one simulated payment.
type AmortizationEntry struct {
	PaymentNumber       int     `json:"paymentNumber"`
	Date                string  `json:"date"`
	Payment             float64 `json:"payment"`
	Principal           float64 `json:"principal"`
	Interest            float64 `json:"interest"`
	ExtraPayment        float64 `json:"extraPayment"`
	RemainingBalance    float64 `json:"remainingBalance"`
	CumulativePrincipal float64 `json:"cumulativePrincipal"`
	CumulativeInterest  float64 `json:"cumulativeInterest"`
	Equity              float64 `json:"equity"`
}

// Schedule is a chronological amortization schedule.
type Schedule struct {
	Entries []AmortizationEntry `json:"entries"`
	// Capped is set when generation stopped at the iteration cap with a
	// balance still outstanding, i.e. the payment never amortizes the loan.
	Capped bool `json:"capped"`
}

// Len returns the number of payments in the schedule.
func (s Schedule) Len() int {
	return len(s.Entries)
}

// Last returns the final payment, if any.
func (s Schedule) Last() (AmortizationEntry, bool) {
	if len(s.Entries) == 0 {
		return AmortizationEntry{}, false
	}
	return s.Entries[len(s.Entries)-1], true
}

// MonthlyBreakdown splits today's monthly cost into its parts.
type MonthlyBreakdown struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Escrow    float64 `json:"escrow"`
	PMI       float64 `json:"pmi"`
	Total     float64 `json:"total"`
}

// MortgageSummary combines the record's current state with schedule totals.
type MortgageSummary struct {
	OriginalPrincipal   float64          `json:"originalPrincipal"`
	CurrentBalance      float64          `json:"currentBalance"`
	EquityAmount        float64          `json:"equityAmount"`
	EquityPercentage    float64          `json:"equityPercentage"`
	TotalPaid           float64          `json:"totalPaid"`
	TotalInterestPaid   float64          `json:"totalInterestPaid"`
	RemainingPayments   int              `json:"remainingPayments"`
	EstimatedPayoffDate string           `json:"estimatedPayoffDate"`
	MonthlyBreakdown    MonthlyBreakdown `json:"monthlyBreakdown"`
}

// ExtraPaymentScenario compares a schedule with and without extra principal.
type ExtraPaymentScenario struct {
	ExtraAmount        float64 `json:"extraAmount"`
	OriginalPayoffDate string  `json:"originalPayoffDate"`
	NewPayoffDate      string  `json:"newPayoffDate"`
	MonthsSaved        int     `json:"monthsSaved"`
	InterestSaved      float64 `json:"interestSaved"`
}
