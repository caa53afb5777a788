// Package wallet connects the settlement flows to the resident's wallet.
// A Connector holds the registered wallet providers and enforces that only
// the required wallet implementation is used for signing.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/trevor-gituru/solaris-conexus/chain"
)

var (
	// ErrNoWalletSelected is returned when no wallet id was chosen.
	ErrNoWalletSelected = errors.New("no wallet selected")
	// ErrProviderUnreachable is returned when the chosen wallet cannot be reached.
	ErrProviderUnreachable = errors.New("wallet provider unreachable")
)

// WrongWalletSelectedError signals that a wallet other than the required
// one was chosen. Never a silent fallback.
type WrongWalletSelectedError struct {
	Selected string
	Required string
}

func (e *WrongWalletSelectedError) Error() string {
	return fmt.Sprintf("wrong wallet selected: %q, required %q", e.Selected, e.Required)
}

// Account is an authenticated wallet account able to sign and submit calls.
type Account interface {
	Address() string
	Execute(ctx context.Context, call *chain.InvokeCall) (txHash string, err error)
	WatchAsset(ctx context.Context, tokenAddress string) error
}

// Provider yields accounts for one wallet implementation, identified by id.
type Provider interface {
	ID() string
	Connect(ctx context.Context) (Account, error)
}

// Session binds a connected account to one chain endpoint. It lives until
// Disconnect and is owned exclusively by the connector's caller.
type Session struct {
	Account       Account
	Address       string
	ChainEndpoint string
}

func (s *Session) Disconnect() {
	s.Account = nil
	s.Address = ""
}

// Connector holds the registered providers and the required wallet id.
type Connector struct {
	providers     map[string]Provider
	required      string
	chainEndpoint string
	watchedAsset  string
	lg            zerolog.Logger
}

type ConnectorConfig struct {
	RequiredWalletID string
	ChainEndpoint    string
	// WatchedAsset is the token address the wallet is prompted to watch
	// after connecting. Best-effort; empty disables the prompt.
	WatchedAsset string
}

func NewConnector(conf ConnectorConfig, providers ...Provider) *Connector {
	c := &Connector{
		providers:     make(map[string]Provider, len(providers)),
		required:      conf.RequiredWalletID,
		chainEndpoint: conf.ChainEndpoint,
		watchedAsset:  conf.WatchedAsset,
		lg:            zerolog.New(os.Stdout).With().Str("Module", "WalletConnector").Timestamp().Logger(),
	}
	for _, p := range providers {
		c.providers[p.ID()] = p
	}
	return c
}

// Connect opens a wallet session for the preferred wallet id. Selecting
// anything but the required wallet is a failure, not a fallback. The
// watched-asset prompt after connecting is best-effort: its failure is
// logged and never aborts the connect.
func (c *Connector) Connect(ctx context.Context, preferredWalletID string) (*Session, error) {
	if preferredWalletID == "" {
		return nil, ErrNoWalletSelected
	}
	if preferredWalletID != c.required {
		return nil, &WrongWalletSelectedError{Selected: preferredWalletID, Required: c.required}
	}

	provider, ok := c.providers[preferredWalletID]
	if !ok {
		return nil, ErrNoWalletSelected
	}

	account, err := provider.Connect(ctx)
	if err != nil {
		return nil, errors.Join(ErrProviderUnreachable, err)
	}

	address, err := chain.NormalizeAddress(account.Address())
	if err != nil {
		return nil, fmt.Errorf("wallet returned invalid address: %w", err)
	}

	if c.watchedAsset != "" {
		if err := account.WatchAsset(ctx, c.watchedAsset); err != nil {
			c.lg.Warn().Err(err).Str("asset", c.watchedAsset).Msg("watchAsset failed")
		}
	}

	c.lg.Info().Str("wallet", preferredWalletID).Str("address", address).Msg("Wallet connected")
	return &Session{
		Account:       account,
		Address:       address,
		ChainEndpoint: c.chainEndpoint,
	}, nil
}
