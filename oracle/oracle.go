// Package oracle is the Impact Oracle contract: a single-writer store of
// per-asset impact metrics, readable by anyone and by other contracts.
package oracle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/impact"
	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/ownable"
)

// Method names.
const (
	MethodLastPrice           = "lastprice"
	MethodAddPrice            = "add_price"
	MethodUpdateImpactMetrics = "update_impact_metrics"
	MethodGetMetrics          = "get_metrics"
	MethodExtendTTL           = "extend_ttl"
	MethodGetOwner            = ownable.MethodGetOwner
)

// RecordTTL is the lifetime, in ledgers, every write grants a record.
const RecordTTL = 30 * ledger.LedgersPerDay

// MetricsKey is the persistent key holding an asset's record.
func MetricsKey(assetID uint32) ledger.Key { return ledger.U32Key("OracleData", assetID) }

// MetricsEvent is published whenever a record is written.
type MetricsEvent struct {
	AssetID uint32
	Metrics impact.Metrics
}

// Contract is the oracle contract code.
type Contract struct{}

var (
	_ host.Contract    = Contract{}
	_ host.Constructor = Contract{}
)

// Construct expects (admin auth.Address).
func (Contract) Construct(env *host.Env, args []any) error {
	if err := host.ArgCount(args, 1); err != nil {
		return err
	}
	admin, err := host.Arg[auth.Address](args, 0)
	if err != nil {
		return err
	}
	if err := ownable.SetOwner(env, admin); err != nil {
		return err
	}
	return env.ExtendInstanceTTL(ledger.MinPersistentTTL, RecordTTL)
}

// Call dispatches an oracle method.
func (Contract) Call(env *host.Env, method string, args []any) (any, error) {
	switch method {
	case MethodGetOwner:
		if err := host.ArgCount(args, 0); err != nil {
			return nil, err
		}
		return ownable.Owner(env)

	case MethodLastPrice:
		assetID, err := assetArg(args, 1)
		if err != nil {
			return nil, err
		}
		m, err := load(env, assetID)
		if err != nil || m == nil {
			return nil, err
		}
		return m.Biomass, nil

	case MethodGetMetrics:
		assetID, err := assetArg(args, 1)
		if err != nil {
			return nil, err
		}
		m, err := load(env, assetID)
		if err != nil || m == nil {
			return nil, err
		}
		return m, nil

	case MethodAddPrice:
		assetID, err := assetArg(args, 2)
		if err != nil {
			return nil, err
		}
		price, err := host.Arg[*big.Int](args, 1)
		if err != nil {
			return nil, err
		}
		return nil, addPrice(env, assetID, price)

	case MethodUpdateImpactMetrics:
		assetID, err := assetArg(args, 4)
		if err != nil {
			return nil, err
		}
		biomass, err := host.Arg[*big.Int](args, 1)
		if err != nil {
			return nil, err
		}
		co2, err := host.Arg[*big.Int](args, 2)
		if err != nil {
			return nil, err
		}
		code, err := host.Arg[uint32](args, 3)
		if err != nil {
			return nil, err
		}
		return nil, updateImpactMetrics(env, assetID, biomass, co2, code)

	case MethodExtendTTL:
		assetID, err := assetArg(args, 1)
		if err != nil {
			return nil, err
		}
		err = env.Persistent().ExtendTTL(MetricsKey(assetID), ledger.MinPersistentTTL, RecordTTL)
		if errors.Is(err, ledger.ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrRecordNotFound, assetID)
		}
		if err != nil {
			return nil, err
		}
		return nil, env.ExtendInstanceTTL(ledger.MinPersistentTTL, RecordTTL)
	}
	return nil, fmt.Errorf("%w: %s", host.ErrUnknownMethod, method)
}

// assetArg checks the argument count and reads the leading asset id.
func assetArg(args []any, n int) (uint32, error) {
	if err := host.ArgCount(args, n); err != nil {
		return 0, err
	}
	return host.Arg[uint32](args, 0)
}

func addPrice(env *host.Env, assetID uint32, price *big.Int) error {
	if err := ownable.EnforceOwner(env); err != nil {
		return err
	}
	if err := impact.CheckI128(price); err != nil {
		return err
	}
	m, err := load(env, assetID)
	if err != nil {
		return err
	}
	if m == nil {
		d := impact.DefaultMetrics()
		m = &d
	}
	m.Biomass = price
	return store(env, assetID, *m)
}

func updateImpactMetrics(env *host.Env, assetID uint32, biomass, co2 *big.Int, code uint32) error {
	if err := ownable.EnforceOwner(env); err != nil {
		return err
	}
	health, err := impact.HealthFromCode(code)
	if err != nil {
		return err
	}
	if err := impact.CheckI128(biomass); err != nil {
		return err
	}
	if err := impact.CheckI128(co2); err != nil {
		return err
	}
	return store(env, assetID, impact.Metrics{Biomass: biomass, CO2Captured: co2, Health: health})
}

// load returns the stored record, or nil if there is none.
func load(env *host.Env, assetID uint32) (*impact.Metrics, error) {
	var m impact.Metrics
	ok, err := env.Persistent().Get(MetricsKey(assetID), &m)
	if err != nil || !ok {
		return nil, err
	}
	if m.Biomass == nil {
		m.Biomass = new(big.Int)
	}
	if m.CO2Captured == nil {
		m.CO2Captured = new(big.Int)
	}
	return &m, nil
}

func store(env *host.Env, assetID uint32, m impact.Metrics) error {
	records := env.Persistent()
	if err := records.Set(MetricsKey(assetID), m); err != nil {
		return err
	}
	if err := records.ExtendTTL(MetricsKey(assetID), ledger.MinPersistentTTL, RecordTTL); err != nil {
		return err
	}
	if err := env.ExtendInstanceTTL(ledger.MinPersistentTTL, RecordTTL); err != nil {
		return err
	}
	env.Logger().Debug("metrics stored")
	env.Publish("metrics", MetricsEvent{AssetID: assetID, Metrics: m})
	return nil
}
