package registry

import (
	"context"
	"math/big"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/impact"
)

// Client calls a deployed registry.
type Client struct {
	inv  host.Invoker
	addr auth.Address
}

// NewClient returns a Client for the registry at addr.
func NewClient(inv host.Invoker, addr auth.Address) *Client {
	return &Client{inv: inv, addr: addr}
}

// Address returns the registry contract address.
func (c *Client) Address() auth.Address { return c.addr }

// Mint buys parcel id for to at the configured price. Requires to's
// authorization, which also covers the payment transfer.
func (c *Client) Mint(ctx context.Context, to auth.Address, id uint32, geo impact.Geo) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodMint, to, id, geo)
	return err
}

// ExtendTTL keeps parcel id's records and the registry alive.
func (c *Client) ExtendTTL(ctx context.Context, id uint32) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodExtendTTL, id)
	return err
}

// LiveImpact returns the oracle's current record for parcel id.
func (c *Client) LiveImpact(ctx context.Context, id uint32) (impact.Metrics, error) {
	return host.As[impact.Metrics](c.inv.InvokeContract(ctx, c.addr, MethodGetLiveImpact, id))
}

// GeoCoordinates returns the coordinates recorded for parcel id.
func (c *Client) GeoCoordinates(ctx context.Context, id uint32) (impact.Geo, error) {
	return host.As[impact.Geo](c.inv.InvokeContract(ctx, c.addr, MethodGeoCoordinates, id))
}

// OwnerOf returns the owner of parcel id.
func (c *Client) OwnerOf(ctx context.Context, id uint32) (auth.Address, error) {
	return host.As[auth.Address](c.inv.InvokeContract(ctx, c.addr, MethodOwnerOf, id))
}

// TokenURI returns the descriptive URI of parcel id.
func (c *Client) TokenURI(ctx context.Context, id uint32) (string, error) {
	return host.As[string](c.inv.InvokeContract(ctx, c.addr, MethodTokenURI, id))
}

// Name returns the collection name.
func (c *Client) Name(ctx context.Context) (string, error) {
	return host.As[string](c.inv.InvokeContract(ctx, c.addr, MethodName))
}

// Symbol returns the collection symbol.
func (c *Client) Symbol(ctx context.Context) (string, error) {
	return host.As[string](c.inv.InvokeContract(ctx, c.addr, MethodSymbol))
}

// Balance returns how many parcels owner holds.
func (c *Client) Balance(ctx context.Context, owner auth.Address) (uint32, error) {
	return host.As[uint32](c.inv.InvokeContract(ctx, c.addr, MethodBalance, owner))
}

// Owner returns the registry's administrative identity.
func (c *Client) Owner(ctx context.Context) (auth.Address, error) {
	return host.As[auth.Address](c.inv.InvokeContract(ctx, c.addr, MethodGetOwner))
}

// MaxParcels returns the collection capacity.
func (c *Client) MaxParcels(ctx context.Context) (uint32, error) {
	return host.As[uint32](c.inv.InvokeContract(ctx, c.addr, MethodMaxParcels))
}

// Price returns the parcel price in payment-token units.
func (c *Client) Price(ctx context.Context) (*big.Int, error) {
	return host.As[*big.Int](c.inv.InvokeContract(ctx, c.addr, MethodPrice))
}
