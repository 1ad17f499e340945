package loans

import "go.uber.org/zap"

// CalculateImpact compares schedules with a no-op logger.
func CalculateImpact(mortgage *Mortgage, extraMonthly float64) *ExtraPaymentScenario {
	return NewAmortizationScheduleGenerator(nil).CalculateImpact(mortgage, extraMonthly)
}

// CalculateImpact runs the schedule twice, without and with extraMonthly,
// and reports how much earlier the loan is paid off and how much interest is
// avoided. It returns nil when there is no mortgage or either schedule is
// empty.
func (g *AmortizationScheduleGenerator) CalculateImpact(mortgage *Mortgage, extraMonthly float64) *ExtraPaymentScenario {
	if mortgage == nil {
		return nil
	}

	baseline := g.GenerateSchedule(mortgage, 0)
	scenario := g.GenerateSchedule(mortgage, extraMonthly)

	baselineLast, ok := baseline.Last()
	if !ok {
		return nil
	}
	scenarioLast, ok := scenario.Last()
	if !ok {
		return nil
	}

	impact := &ExtraPaymentScenario{
		ExtraAmount:        extraMonthly,
		OriginalPayoffDate: baselineLast.Date,
		NewPayoffDate:      scenarioLast.Date,
		MonthsSaved:        baseline.Len() - scenario.Len(),
		InterestSaved:      baselineLast.CumulativeInterest - scenarioLast.CumulativeInterest,
	}

	g.logger.Debug("computed extra payment impact",
		zap.String("op", "loans.CalculateImpact"),
		zap.Float64("extra", extraMonthly),
		zap.Int("months_saved", impact.MonthsSaved),
		zap.Float64("interest_saved", impact.InterestSaved),
	)

	return impact
}
