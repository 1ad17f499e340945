package loans

import "go.uber.org/zap"

// GetSummary builds a summary with a no-op logger.
func GetSummary(mortgage *Mortgage) *MortgageSummary {
	return NewAmortizationScheduleGenerator(nil).GetSummary(mortgage)
}

// GetSummary derives point-in-time metrics for a mortgage. It returns nil
// when there is no mortgage or its schedule is empty.
//
// Two balances are in play. Totals and the payoff date come from the
// schedule, which starts at the original principal and applies the record's
// extra payment from month one. The monthly breakdown instead splits today's
// payment using the record's current balance. The two are intentionally not
// reconciled.
func (g *AmortizationScheduleGenerator) GetSummary(mortgage *Mortgage) *MortgageSummary {
	if mortgage == nil {
		return nil
	}

	schedule := g.GenerateSchedule(mortgage, mortgage.ExtraPaymentAmount)
	last, ok := schedule.Last()
	if !ok {
		g.logger.Debug("mortgage produced an empty schedule",
			zap.String("op", "loans.GetSummary"),
			zap.String("mortgage", mortgage.Name),
		)
		return nil
	}

	equity := mortgage.OriginalPrincipal - mortgage.CurrentBalance
	currentInterest := CalculateInterestPayment(mortgage.CurrentBalance, mortgage.InterestRate)
	currentPrincipal := mortgage.MonthlyPayment - currentInterest

	return &MortgageSummary{
		OriginalPrincipal:   mortgage.OriginalPrincipal,
		CurrentBalance:      mortgage.CurrentBalance,
		EquityAmount:        equity,
		EquityPercentage:    equity / mortgage.OriginalPrincipal * 100,
		TotalPaid:           last.CumulativePrincipal + last.CumulativeInterest,
		TotalInterestPaid:   last.CumulativeInterest,
		RemainingPayments:   schedule.Len(),
		EstimatedPayoffDate: last.Date,
		MonthlyBreakdown: MonthlyBreakdown{
			Principal: currentPrincipal,
			Interest:  currentInterest,
			Escrow:    mortgage.EscrowAmount,
			PMI:       mortgage.PMIAmount,
			Total:     mortgage.MonthlyPayment + mortgage.EscrowAmount + mortgage.PMIAmount,
		},
	}
}
