// Package registry is the Asset Registry contract. It sells numbered,
// geo-tagged parcels for a fixed price in a payment token and serves each
// parcel's live impact metrics from the Impact Oracle.
//
// Collection configuration lives in the instance tier. Geo records live in
// the persistent tier, one entry per parcel, and are kept alive on mint.
package registry

import (
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/impact"
	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/nft"
	"github.com/boscora/impacta-go/oracle"
	"github.com/boscora/impacta-go/ownable"
	"github.com/boscora/impacta-go/token"
)

// Method names.
const (
	MethodMint           = "mint"
	MethodGetLiveImpact  = "get_live_impact"
	MethodGeoCoordinates = "geo_coordinates"
	MethodOwnerOf        = "owner_of"
	MethodTokenURI       = "token_uri"
	MethodName           = "name"
	MethodSymbol         = "symbol"
	MethodBalance        = "balance"
	MethodMaxParcels     = "max_parcels"
	MethodPrice          = "price"
	MethodExtendTTL      = "extend_ttl"
	MethodGetOwner       = ownable.MethodGetOwner
)

// Collection metadata set at construction.
const (
	CollectionURI    = "ipfs://collection-metadata"
	CollectionName   = "Boscora Impacta"
	CollectionSymbol = "BSCR"
	TokenURI         = "ipfs://boscora-dynamic-impact-oracle"
)

// GeoTTL is the lifetime, in ledgers, a mint grants the parcel's geo record.
const GeoTTL = 30 * ledger.LedgersPerDay

// Instance-tier configuration keys.
var (
	OracleContractKey = ledger.Named("OracleContract")
	MaxParcelsKey     = ledger.Named("MaxParcels")
	PaymentTokenKey   = ledger.Named("PaymentToken")
	PriceKey          = ledger.Named("Price")
)

// GeoKey is the persistent key holding a parcel's coordinates.
func GeoKey(id uint32) ledger.Key { return ledger.U32Key("Geo", id) }

// ParcelKeys lists the persistent entries that make up parcel id.
func ParcelKeys(id uint32) []ledger.Key { return []ledger.Key{GeoKey(id), nft.OwnerKey(id)} }

// Config is the registry's construction-time configuration.
type Config struct {
	Admin        auth.Address
	Oracle       auth.Address
	MaxParcels   uint32
	PaymentToken auth.Address
	Price        *big.Int
}

// Args returns c in constructor argument order.
func (c Config) Args() []any {
	return []any{c.Admin, c.Oracle, c.MaxParcels, c.PaymentToken, c.Price}
}

func (c Config) validate() error {
	for name, a := range map[string]auth.Address{"admin": c.Admin, "oracle": c.Oracle, "payment token": c.PaymentToken} {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
	}
	if err := impact.CheckI128(c.Price); err != nil {
		return fmt.Errorf("%w: price: %w", ErrInvalidConfig, err)
	}
	if c.Price.Sign() < 0 {
		return fmt.Errorf("%w: negative price %s", ErrInvalidConfig, c.Price)
	}
	return nil
}

// Contract is the registry contract code.
type Contract struct{}

var (
	_ host.Contract    = Contract{}
	_ host.Constructor = Contract{}
)

// Construct expects the arguments of Config.Args.
func (Contract) Construct(env *host.Env, args []any) error {
	if err := host.ArgCount(args, 5); err != nil {
		return err
	}
	var (
		c   Config
		err error
	)
	if c.Admin, err = host.Arg[auth.Address](args, 0); err != nil {
		return err
	}
	if c.Oracle, err = host.Arg[auth.Address](args, 1); err != nil {
		return err
	}
	if c.MaxParcels, err = host.Arg[uint32](args, 2); err != nil {
		return err
	}
	if c.PaymentToken, err = host.Arg[auth.Address](args, 3); err != nil {
		return err
	}
	if c.Price, err = host.Arg[*big.Int](args, 4); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	if err := ownable.SetOwner(env, c.Admin); err != nil {
		return err
	}
	cfg := env.Instance()
	for _, kv := range []struct {
		key ledger.Key
		val any
	}{
		{OracleContractKey, c.Oracle},
		{MaxParcelsKey, c.MaxParcels},
		{PaymentTokenKey, c.PaymentToken},
		{PriceKey, c.Price},
	} {
		if err := cfg.Set(kv.key, kv.val); err != nil {
			return err
		}
	}
	if err := nft.SetMetadata(env, nft.Metadata{BaseURI: CollectionURI, Name: CollectionName, Symbol: CollectionSymbol}); err != nil {
		return err
	}
	if err := env.ExtendInstanceTTL(ledger.MinPersistentTTL, GeoTTL); err != nil {
		return err
	}
	env.Logger().Info("registry constructed",
		zap.String("oracle", c.Oracle.String()),
		zap.String("payment_token", c.PaymentToken.String()),
		zap.Uint32("max_parcels", c.MaxParcels))
	return nil
}

// Call dispatches a registry method.
func (Contract) Call(env *host.Env, method string, args []any) (any, error) {
	switch method {
	case MethodMint:
		if err := host.ArgCount(args, 3); err != nil {
			return nil, err
		}
		to, err := host.Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		id, err := host.Arg[uint32](args, 1)
		if err != nil {
			return nil, err
		}
		geo, err := host.Arg[impact.Geo](args, 2)
		if err != nil {
			return nil, err
		}
		return nil, mint(env, to, id, geo)

	case MethodGetLiveImpact:
		id, err := host.Arg[uint32](args, 0)
		if err != nil {
			return nil, err
		}
		return liveImpact(env, id)

	case MethodGeoCoordinates:
		id, err := host.Arg[uint32](args, 0)
		if err != nil {
			return nil, err
		}
		return geoCoordinates(env, id)

	case MethodOwnerOf:
		id, err := host.Arg[uint32](args, 0)
		if err != nil {
			return nil, err
		}
		return nft.OwnerOf(env, id)

	case MethodTokenURI:
		if _, err := host.Arg[uint32](args, 0); err != nil {
			return nil, err
		}
		return TokenURI, nil

	case MethodName:
		return nft.Name(env)
	case MethodSymbol:
		return nft.Symbol(env)
	case MethodBalance:
		addr, err := host.Arg[auth.Address](args, 0)
		if err != nil {
			return nil, err
		}
		return nft.Balance(env, addr)
	case MethodGetOwner:
		return ownable.Owner(env)

	case MethodExtendTTL:
		if err := host.ArgCount(args, 1); err != nil {
			return nil, err
		}
		id, err := host.Arg[uint32](args, 0)
		if err != nil {
			return nil, err
		}
		return nil, extendTTL(env, id)

	case MethodMaxParcels:
		var n uint32
		if err := config(env, MaxParcelsKey, &n, ErrConfigMissing); err != nil {
			return nil, err
		}
		return n, nil
	case MethodPrice:
		p := new(big.Int)
		if err := config(env, PriceKey, p, ErrPriceMissing); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", host.ErrUnknownMethod, method)
}

// mint checks capacity and uniqueness before charging.
func mint(env *host.Env, to auth.Address, id uint32, geo impact.Geo) error {
	if err := env.RequireAuth(to); err != nil {
		return err
	}

	var maxParcels uint32
	if err := config(env, MaxParcelsKey, &maxParcels, ErrConfigMissing); err != nil {
		return err
	}
	if id == 0 || id > maxParcels {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidParcelID, id, maxParcels)
	}
	taken, err := env.Persistent().Has(GeoKey(id))
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %d", ErrDuplicateMint, id)
	}

	owner, err := ownable.Owner(env)
	if errors.Is(err, ownable.ErrOwnerNotSet) {
		return ErrOwnerMissing
	}
	if err != nil {
		return err
	}
	var paymentToken auth.Address
	if err := config(env, PaymentTokenKey, &paymentToken, ErrPaymentTokenMissing); err != nil {
		return err
	}
	price := new(big.Int)
	if err := config(env, PriceKey, price, ErrPriceMissing); err != nil {
		return err
	}

	if err := token.NewClient(env, paymentToken).Transfer(env.Context(), to, owner, price); err != nil {
		return err
	}
	if err := nft.Mint(env, to, id); err != nil {
		return err
	}

	parcels := env.Persistent()
	if err := parcels.Set(GeoKey(id), geo); err != nil {
		return err
	}
	if err := parcels.ExtendTTL(GeoKey(id), ledger.MinPersistentTTL, GeoTTL); err != nil {
		return err
	}
	return env.ExtendInstanceTTL(ledger.MinPersistentTTL, GeoTTL)
}

// extendTTL keeps parcel id's geo and ownership records and the registry
// instance alive for another GeoTTL ledgers. Anyone may call it.
func extendTTL(env *host.Env, id uint32) error {
	err := env.Persistent().ExtendTTL(GeoKey(id), ledger.MinPersistentTTL, GeoTTL)
	if errors.Is(err, ledger.ErrEntryNotFound) {
		return fmt.Errorf("%w: %d", ErrGeoNotFound, id)
	}
	if err != nil {
		return err
	}
	if err := nft.ExtendTTL(env, id, ledger.MinPersistentTTL, GeoTTL); err != nil {
		return err
	}
	return env.ExtendInstanceTTL(ledger.MinPersistentTTL, GeoTTL)
}

func liveImpact(env *host.Env, id uint32) (impact.Metrics, error) {
	var oracleAddr auth.Address
	if err := config(env, OracleContractKey, &oracleAddr, ErrConfigMissing); err != nil {
		return impact.Metrics{}, err
	}
	m, err := oracle.NewClient(env, oracleAddr).Metrics(env.Context(), id)
	if err != nil {
		return impact.Metrics{}, err
	}
	if m == nil {
		return impact.Metrics{}, fmt.Errorf("%w: %d", ErrMetricsNotFound, id)
	}
	return *m, nil
}

func geoCoordinates(env *host.Env, id uint32) (impact.Geo, error) {
	var g impact.Geo
	ok, err := env.Persistent().Get(GeoKey(id), &g)
	if err != nil {
		return impact.Geo{}, err
	}
	if !ok {
		return impact.Geo{}, fmt.Errorf("%w: %d", ErrGeoNotFound, id)
	}
	return g, nil
}

// config reads one instance-tier configuration entry into v.
func config(env *host.Env, key ledger.Key, v any, missing error) error {
	ok, err := env.Instance().Get(key, v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", missing, key)
	}
	return nil
}
