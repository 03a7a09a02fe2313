// Package treasury loads the keypair that holds minted inventory and signs
// its release to buyers.
package treasury

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blocto/solana-go-sdk/types"

	"github.com/atinyakov/SolForge/internal/solana"
)

var (
	// ErrNotConfigured is returned when no treasury key source is set.
	ErrNotConfigured = errors.New("treasury key not configured")
	// ErrAddressMismatch is returned when the loaded key does not belong to
	// the configured treasury address.
	ErrAddressMismatch = errors.New("treasury key does not match configured address")
)

// Provider returns the treasury signing account.
type Provider interface {
	Treasury(ctx context.Context) (types.Account, error)
}

// KeyProvider parses a keypair given inline as a JSON int array, as read
// from TREASURY_SECRET_KEY.
type KeyProvider struct {
	secret  string
	address string

	once sync.Once
	acc  types.Account
	err  error
}

// NewKeyProvider returns a provider for secret. A non-empty address is
// checked against the derived public key.
func NewKeyProvider(secret, address string) *KeyProvider {
	return &KeyProvider{secret: strings.TrimSpace(secret), address: strings.TrimSpace(address)}
}

// Treasury parses the key on first use and returns the same result after.
func (p *KeyProvider) Treasury(context.Context) (types.Account, error) {
	p.once.Do(func() {
		if p.secret == "" {
			p.err = ErrNotConfigured
			return
		}
		acc, err := solana.ParseKeypairJSON([]byte(p.secret))
		if err != nil {
			p.err = err
			return
		}
		if err := verify(acc, p.address); err != nil {
			p.err = err
			return
		}
		p.acc = acc
	})
	return p.acc, p.err
}

// Unconfigured always fails with ErrNotConfigured.
type Unconfigured struct{}

// Treasury implements Provider.
func (Unconfigured) Treasury(context.Context) (types.Account, error) {
	return types.Account{}, ErrNotConfigured
}

// Options select the key source. SecretName wins over SecretKey.
type Options struct {
	SecretKey  string
	PublicKey  string
	SecretName string
	ProjectID  string
}

// New picks a Provider for opts. Without any key source it returns
// Unconfigured so the server can still start and report the problem on use.
func New(ctx context.Context, opts Options) (Provider, error) {
	switch {
	case strings.TrimSpace(opts.SecretName) != "":
		return NewSecretManagerProvider(ctx, opts.SecretName, opts.ProjectID, opts.PublicKey)
	case strings.TrimSpace(opts.SecretKey) != "":
		return NewKeyProvider(opts.SecretKey, opts.PublicKey), nil
	default:
		return Unconfigured{}, nil
	}
}

func verify(acc types.Account, address string) error {
	if address == "" {
		return nil
	}
	if acc.PublicKey.ToBase58() != address {
		return fmt.Errorf("%w: configured %s", ErrAddressMismatch, address)
	}
	return nil
}
