// Package impact holds the domain types shared by the registry and the oracle.
package impact

import (
	"fmt"
	"math/big"
)

// HealthStatus is the growth stage of a tracked asset.
type HealthStatus uint32

const (
	Germinating HealthStatus = iota
	Sprouted
	ReadyForTransplant
	Planted
)

var healthNames = [...]string{"Germinating", "Sprouted", "ReadyForTransplant", "Planted"}

func (h HealthStatus) String() string {
	if h.Valid() {
		return healthNames[h]
	}
	return fmt.Sprintf("HealthStatus(%d)", uint32(h))
}

// Valid reports whether h is one of the four growth stages.
func (h HealthStatus) Valid() bool { return h <= Planted }

// HealthFromCode maps a wire code to a HealthStatus.
func HealthFromCode(code uint32) (HealthStatus, error) {
	h := HealthStatus(code)
	if !h.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidHealthCode, code)
	}
	return h, nil
}

// Metrics is the measurement record kept per asset.
type Metrics struct {
	Biomass     *big.Int     // grams
	CO2Captured *big.Int     // milligrams
	Health      HealthStatus
}

// DefaultMetrics is the record synthesized for an asset with no measurements yet.
func DefaultMetrics() Metrics {
	return Metrics{Biomass: new(big.Int), CO2Captured: new(big.Int), Health: Germinating}
}

// Equal reports whether m and o hold the same values.
func (m Metrics) Equal(o Metrics) bool {
	return cmpAmount(m.Biomass, o.Biomass) && cmpAmount(m.CO2Captured, o.CO2Captured) && m.Health == o.Health
}

func cmpAmount(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}

func (m Metrics) String() string {
	return fmt.Sprintf("{biomass:%s co2_captured:%s health:%s}", m.Biomass, m.CO2Captured, m.Health)
}

// Geo is a parcel's position in degrees scaled by the registry's precision.
type Geo struct {
	Latitude  int32
	Longitude int32
}

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// CheckI128 validates that v is set and fits a signed 128-bit integer.
func CheckI128(v *big.Int) error {
	if v == nil {
		return ErrNilAmount
	}
	if v.Cmp(maxI128) > 0 || v.Cmp(minI128) < 0 {
		return fmt.Errorf("%w: %s", ErrAmountOutOfRange, v)
	}
	return nil
}
