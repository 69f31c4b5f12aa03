package token

import (
	"context"
	"math/big"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/host"
)

// Client calls a deployed token contract through any Invoker: a Host, a
// Signer, or a contract's Env for cross-contract calls.
type Client struct {
	inv  host.Invoker
	addr auth.Address
}

// NewClient returns a Client for the token at addr.
func NewClient(inv host.Invoker, addr auth.Address) *Client {
	return &Client{inv: inv, addr: addr}
}

// Address returns the token contract address.
func (c *Client) Address() auth.Address { return c.addr }

// Mint creates amount new units for to. Requires the admin's authorization.
func (c *Client) Mint(ctx context.Context, to auth.Address, amount *big.Int) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodMint, to, amount)
	return err
}

// Transfer moves amount from from to to. Requires from's authorization.
func (c *Client) Transfer(ctx context.Context, from, to auth.Address, amount *big.Int) error {
	_, err := c.inv.InvokeContract(ctx, c.addr, MethodTransfer, from, to, amount)
	return err
}

// Balance returns addr's balance.
func (c *Client) Balance(ctx context.Context, addr auth.Address) (*big.Int, error) {
	return host.As[*big.Int](c.inv.InvokeContract(ctx, c.addr, MethodBalance, addr))
}

// Decimals returns the number of decimal places of the token's unit.
func (c *Client) Decimals(ctx context.Context) (uint32, error) {
	return host.As[uint32](c.inv.InvokeContract(ctx, c.addr, MethodDecimals))
}

// Name returns the token name.
func (c *Client) Name(ctx context.Context) (string, error) {
	return host.As[string](c.inv.InvokeContract(ctx, c.addr, MethodName))
}

// Symbol returns the token symbol.
func (c *Client) Symbol(ctx context.Context) (string, error) {
	return host.As[string](c.inv.InvokeContract(ctx, c.addr, MethodSymbol))
}
