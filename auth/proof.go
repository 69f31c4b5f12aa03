package auth

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
)

// Proof attests that the holder of PublicKey consented to Root (and its
// sub-invocations) on one network, once, until ExpirationLedger.
type Proof struct {
	PublicKey        []byte     `json:"public_key"` // compressed secp256k1
	Nonce            string     `json:"nonce"`
	ExpirationLedger uint32     `json:"expiration_ledger"`
	Root             Invocation `json:"root"`
	Signature        []byte     `json:"signature"` // DER
}

// signedPayload is the structure covered by the signature.
type signedPayload struct {
	Network          string     `json:"network"`
	Nonce            string     `json:"nonce"`
	ExpirationLedger uint32     `json:"expiration_ledger"`
	Root             Invocation `json:"root"`
}

// Sign creates a proof for root with a fresh random nonce.
func Sign(priv *ec.PrivateKey, network Network, expiration uint32, root Invocation) (*Proof, error) {
	return SignWithNonce(priv, network, uuid.NewString(), expiration, root)
}

// SignWithNonce creates a proof for root with the given nonce.
func SignWithNonce(priv *ec.PrivateKey, network Network, nonce string, expiration uint32, root Invocation) (*Proof, error) {
	if priv == nil {
		return nil, fmt.Errorf("%w: private key", ErrNilParam)
	}
	p := &Proof{
		PublicKey:        priv.PubKey().Compressed(),
		Nonce:            nonce,
		ExpirationLedger: expiration,
		Root:             root,
	}
	digest, err := p.digest(network)
	if err != nil {
		return nil, err
	}
	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, fmt.Errorf("auth: sign: %w", err)
	}
	p.Signature = sig.Serialize()
	return p, nil
}

// digest = SHA256(passphrase || JSON(payload)).
func (p *Proof) digest(network Network) ([]byte, error) {
	payload, err := json.Marshal(signedPayload{
		Network:          network.Name,
		Nonce:            p.Nonce,
		ExpirationLedger: p.ExpirationLedger,
		Root:             p.Root,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: encode payload: %w", err)
	}
	preimage := make([]byte, 0, len(network.Passphrase)+len(payload))
	preimage = append(preimage, network.Passphrase...)
	preimage = append(preimage, payload...)
	return bsvhash.Sha256(preimage), nil
}

// Signer returns the account address the proof speaks for.
func (p *Proof) Signer(network Network) (Address, error) {
	pub, err := ec.PublicKeyFromBytes(p.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return AccountAddress(pub, network)
}

// Verify checks the signature and expiry against the ledger sequence.
// It does not check the nonce; that is the job of the Enforcer.
func (p *Proof) Verify(network Network, sequence uint32) error {
	if p == nil {
		return fmt.Errorf("%w: proof", ErrNilParam)
	}
	if p.ExpirationLedger < sequence {
		return fmt.Errorf("%w: expired at ledger %d, now %d", ErrProofExpired, p.ExpirationLedger, sequence)
	}
	pub, err := ec.PublicKeyFromBytes(p.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	sig, err := ec.ParseDERSignature(p.Signature)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	digest, err := p.digest(network)
	if err != nil {
		return err
	}
	if !sig.Verify(digest, pub) {
		return ErrInvalidSignature
	}
	return nil
}
