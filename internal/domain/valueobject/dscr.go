package valueobject

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DSCRPlaces is the number of fractional digits a coverage ratio carries.
const DSCRPlaces int32 = 4

const uncappedLabel = "UNCAPPED"

// DSCR is a debt-service coverage ratio. When there is no debt service to
// cover, the ratio is "uncapped": it compares greater than every finite ratio
// but is never represented as a floating-point infinity.
type DSCR struct {
	value    decimal.Decimal
	uncapped bool
}

// UncappedDSCR is the sentinel used when debt service is zero or negative.
var UncappedDSCR = DSCR{uncapped: true}

// NewDSCR wraps a finite ratio, rounding it half-to-even to DSCRPlaces.
func NewDSCR(v decimal.Decimal) DSCR {
	return DSCR{value: v.RoundBank(DSCRPlaces)}
}

// ParseDSCR reconstructs a DSCR from its String form.
func ParseDSCR(s string) (DSCR, error) {
	if s == uncappedLabel {
		return UncappedDSCR, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return DSCR{}, fmt.Errorf("invalid dscr %q: %w", s, err)
	}
	return NewDSCR(d), nil
}

// IsUncapped reports whether the ratio is the uncapped sentinel.
func (d DSCR) IsUncapped() bool { return d.uncapped }

// Value returns the finite ratio. It is zero for the uncapped sentinel; check
// IsUncapped first.
func (d DSCR) Value() decimal.Decimal { return d.value }

// Cmp compares d with other: -1 if d < other, 0 if equal, +1 if d > other.
func (d DSCR) Cmp(other DSCR) int {
	switch {
	case d.uncapped && other.uncapped:
		return 0
	case d.uncapped:
		return 1
	case other.uncapped:
		return -1
	default:
		return d.value.Cmp(other.value)
	}
}

// LessThan reports whether the ratio is strictly below the finite threshold.
func (d DSCR) LessThan(threshold decimal.Decimal) bool {
	return !d.uncapped && d.value.LessThan(threshold)
}

// AtLeast reports whether the ratio meets or exceeds the finite threshold.
func (d DSCR) AtLeast(threshold decimal.Decimal) bool {
	return !d.LessThan(threshold)
}

// Equal returns true when both ratios are identical.
func (d DSCR) Equal(other DSCR) bool { return d.Cmp(other) == 0 }

// String renders the ratio with DSCRPlaces digits, or "UNCAPPED".
func (d DSCR) String() string {
	if d.uncapped {
		return uncappedLabel
	}
	return d.value.StringFixed(DSCRPlaces)
}

// MarshalJSON encodes the ratio as its String form.
func (d DSCR) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the String form produced by MarshalJSON.
func (d *DSCR) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dscr must be a string: %w", err)
	}
	parsed, err := ParseDSCR(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
