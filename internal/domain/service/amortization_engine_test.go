package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/service"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthlyPayment_KnownValues(t *testing.T) {
	engine := service.NewAmortizationEngine()

	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		want      string
	}{
		{"100k at 5% for 30 years", "100000", "0.05", 360, "536.82"},
		{"300k at 7.5% for 30 years", "300000", "0.075", 360, "2097.64"},
		{"700k at 7.5% for 30 years", "700000", "0.075", 360, "4894.50"},
		{"zero rate", "120000", "0", 360, "333.33"},
		{"zero principal", "0", "0.05", 360, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.MonthlyPayment(dec(tt.principal), dec(tt.rate), tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestMonthlyPayment_InvalidTerm(t *testing.T) {
	engine := service.NewAmortizationEngine()

	for _, term := range []int{0, -12} {
		_, err := engine.MonthlyPayment(dec("100000"), dec("0.05"), term)
		assert.ErrorIs(t, err, model.ErrInvalidTerm)
	}

	_, err := engine.MonthlyPayment(dec("-1"), dec("0.05"), 360)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestMonthlyPayment_ZeroRateIsExact(t *testing.T) {
	engine := service.NewAmortizationEngine()

	principal := dec("90000")
	got, err := engine.MonthlyPayment(principal, decimal.Zero, 360)
	require.NoError(t, err)
	assert.True(t, got.Mul(decimal.NewFromInt(360)).Equal(principal), "got %s", got)
}

func TestMonthlyPayment_Monotonic(t *testing.T) {
	engine := service.NewAmortizationEngine()

	prev := decimal.Zero
	for _, p := range []string{"1000", "50000", "250000", "1000000"} {
		got, err := engine.MonthlyPayment(dec(p), dec("0.065"), 360)
		require.NoError(t, err)
		assert.True(t, got.GreaterThan(prev), "payment for %s should exceed %s", p, prev)
		prev = got
	}
}

func TestPaymentFactor(t *testing.T) {
	engine := service.NewAmortizationEngine()

	f, err := engine.PaymentFactor(dec("0.075"), 360)
	require.NoError(t, err)
	assert.Equal(t, "0.006992", f.StringFixed(6))

	f, err = engine.PaymentFactor(decimal.Zero, 100)
	require.NoError(t, err)
	assert.True(t, f.Equal(dec("0.01")))

	_, err = engine.PaymentFactor(dec("0.05"), 0)
	assert.ErrorIs(t, err, model.ErrInvalidTerm)
}

func TestMaxPrincipal_InvertsPayment(t *testing.T) {
	engine := service.NewAmortizationEngine()

	for _, target := range []string{"1500", "4000", "1333.3333"} {
		t.Run(target, func(t *testing.T) {
			p, err := engine.MaxPrincipal(dec(target), dec("0.075"), 360)
			require.NoError(t, err)
			require.True(t, p.IsPositive())

			payment, err := engine.MonthlyPayment(p, dec("0.075"), 360)
			require.NoError(t, err)
			assert.True(t, payment.LessThanOrEqual(dec(target)), "payment %s exceeds %s", payment, target)

			above, err := engine.MonthlyPayment(p.Add(dec("0.05")), dec("0.075"), 360)
			require.NoError(t, err)
			assert.True(t, above.GreaterThan(dec(target)), "principal %s is not maximal", p)
		})
	}
}

func TestMaxPrincipal_ZeroRate(t *testing.T) {
	engine := service.NewAmortizationEngine()

	p, err := engine.MaxPrincipal(dec("1000"), decimal.Zero, 360)
	require.NoError(t, err)

	payment, err := engine.MonthlyPayment(p, decimal.Zero, 360)
	require.NoError(t, err)
	assert.True(t, payment.LessThanOrEqual(dec("1000")))
	assert.True(t, p.GreaterThanOrEqual(dec("360000")))
}

func TestMaxPrincipal_NonPositivePayment(t *testing.T) {
	engine := service.NewAmortizationEngine()

	for _, target := range []string{"0", "-250", "0.004"} {
		p, err := engine.MaxPrincipal(dec(target), dec("0.05"), 360)
		require.NoError(t, err)
		assert.True(t, p.IsZero(), "target %s", target)
	}
}

func TestGenerateSchedule(t *testing.T) {
	engine := service.NewAmortizationEngine()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := engine.GenerateSchedule(dec("12000"), dec("0.06"), 12, start)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	assert.Equal(t, 1, schedule[0].Period)
	assert.Equal(t, start.AddDate(0, 1, 0), schedule[0].DueDate)
	assert.Equal(t, "60.00", schedule[0].Interest.StringFixed(2))

	totalPrincipal := decimal.Zero
	for _, entry := range schedule {
		totalPrincipal = totalPrincipal.Add(entry.Principal)
		assert.True(t, entry.Total.Equal(entry.Principal.Add(entry.Interest)))
	}
	assert.True(t, totalPrincipal.Equal(dec("12000")))
	assert.True(t, schedule[len(schedule)-1].RemainingBalance.IsZero())
	assert.True(t, schedule.TotalPaid().Equal(dec("12000").Add(schedule.TotalInterest())))
}

func TestGenerateSchedule_ZeroPrincipal(t *testing.T) {
	engine := service.NewAmortizationEngine()

	schedule, err := engine.GenerateSchedule(decimal.Zero, dec("0.06"), 12, time.Now())
	require.NoError(t, err)
	assert.Empty(t, schedule)

	_, err = engine.GenerateSchedule(dec("1000"), dec("0.06"), 0, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidTerm)
}
