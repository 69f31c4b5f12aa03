package impact

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthFromCode(t *testing.T) {
	tests := []struct {
		code uint32
		want HealthStatus
		name string
	}{
		{0, Germinating, "Germinating"},
		{1, Sprouted, "Sprouted"},
		{2, ReadyForTransplant, "ReadyForTransplant"},
		{3, Planted, "Planted"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HealthFromCode(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.name, got.String())
		})
	}

	for _, code := range []uint32{4, 99, 1 << 31} {
		_, err := HealthFromCode(code)
		assert.ErrorIs(t, err, ErrInvalidHealthCode)
	}
	assert.Equal(t, "HealthStatus(7)", HealthStatus(7).String())
}

func TestDefaultMetrics(t *testing.T) {
	m := DefaultMetrics()
	assert.Equal(t, 0, m.Biomass.Sign())
	assert.Equal(t, 0, m.CO2Captured.Sign())
	assert.Equal(t, Germinating, m.Health)
}

func TestMetricsEqual(t *testing.T) {
	a := Metrics{Biomass: big.NewInt(1500), CO2Captured: big.NewInt(450), Health: Planted}
	b := Metrics{Biomass: new(big.Int).SetInt64(1500), CO2Captured: big.NewInt(450), Health: Planted}
	assert.True(t, a.Equal(b))

	b.Health = Sprouted
	assert.False(t, a.Equal(b))
	assert.Equal(t, "{biomass:1500 co2_captured:450 health:Planted}", a.String())
}

func TestCheckI128(t *testing.T) {
	assert.NoError(t, CheckI128(big.NewInt(-1)))
	assert.NoError(t, CheckI128(maxI128))
	assert.NoError(t, CheckI128(minI128))
	assert.ErrorIs(t, CheckI128(nil), ErrNilAmount)
	assert.ErrorIs(t, CheckI128(new(big.Int).Add(maxI128, big.NewInt(1))), ErrAmountOutOfRange)
	assert.ErrorIs(t, CheckI128(new(big.Int).Sub(minI128, big.NewInt(1))), ErrAmountOutOfRange)
}
