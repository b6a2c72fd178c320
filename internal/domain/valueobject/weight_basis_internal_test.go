package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightBasis_IsKnown(t *testing.T) {
	assert.True(t, WeightBasis{}.IsKnown())
	assert.True(t, WeightBasisByValue.IsKnown())
	assert.True(t, WeightBasisByIncome.IsKnown())
	assert.False(t, WeightBasis{value: "BY_AREA"}.IsKnown())
}
