package oracle

import (
	"context"
	"math/big"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/impact"
)

// Client calls a deployed oracle. Built over a contract's Env it makes
// synchronous cross-contract calls inside the caller's invocation.
type Client struct {
	inv  host.Invoker
	addr auth.Address
}

// NewClient returns a Client for the oracle at addr.
func NewClient(inv host.Invoker, addr auth.Address) *Client {
	return &Client{inv: inv, addr: addr}
}

// Address returns the oracle contract address.
func (c *Client) Address() auth.Address { return c.addr }

// LastPrice returns the biomass of the asset's record, or nil if there is none.
func (c *Client) LastPrice(ctx context.Context, assetID uint32) (*big.Int, error) {
	return host.As[*big.Int](c.inv.InvokeContract(ctx, c.addr, MethodLastPrice, assetID))
}

// Metrics returns the asset's record, or nil if there is none.
func (c *Client) Metrics(ctx context.Context, assetID uint32) (*impact.Metrics, error) {
	return host.As[*impact.Metrics](c.inv.InvokeContract(ctx, c.addr, MethodGetMetrics, assetID))
}

// AddPrice sets the asset's biomass. Requires the admin's authorization.
func (c *Client) AddPrice(ctx context.Context, assetID uint32, price *big.Int) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodAddPrice, assetID, price)
	return err
}

// UpdateImpactMetrics replaces the asset's record. Requires the admin's authorization.
func (c *Client) UpdateImpactMetrics(ctx context.Context, assetID uint32, biomass, co2 *big.Int, healthCode uint32) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodUpdateImpactMetrics, assetID, biomass, co2, healthCode)
	return err
}

// ExtendTTL keeps the asset's record alive.
func (c *Client) ExtendTTL(ctx context.Context, assetID uint32) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodExtendTTL, assetID)
	return err
}

// Owner returns the oracle's administrative identity.
func (c *Client) Owner(ctx context.Context) (auth.Address, error) {
	return host.As[auth.Address](c.inv.InvokeContract(ctx, c.addr, MethodGetOwner))
}
