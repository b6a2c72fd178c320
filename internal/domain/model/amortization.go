package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmortizationEntry is one installment of a level-payment schedule.
type AmortizationEntry struct {
	Period           int
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
}

// AmortizationSchedule lists installments in due-date order.
type AmortizationSchedule []AmortizationEntry

// TotalInterest sums the interest portion of every installment.
func (s AmortizationSchedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Interest)
	}
	return total
}

// TotalPaid sums every installment.
func (s AmortizationSchedule) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s {
		total = total.Add(e.Total)
	}
	return total
}
