package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/trevor-gituru/solaris-conexus/chain"
)

// BridgeProvider talks JSON-RPC to a locally running wallet daemon that
// owns the keys and prompts the resident for approval. It is the service
// rendition of the browser wallet extension.
type BridgeProvider struct {
	id  string
	url string
}

func NewBridgeProvider(id, bridgeURL string) *BridgeProvider {
	return &BridgeProvider{id: id, url: bridgeURL}
}

func (p *BridgeProvider) ID() string {
	return p.id
}

// Connect asks the daemon for its active account.
func (p *BridgeProvider) Connect(ctx context.Context) (Account, error) {
	client, err := rpc.DialContext(ctx, p.url)
	if err != nil {
		return nil, fmt.Errorf("wallet bridge dial error: %w", err)
	}

	var accounts []string
	if err := client.CallContext(ctx, &accounts, "wallet_requestAccounts"); err != nil {
		client.Close()
		return nil, fmt.Errorf("wallet_requestAccounts error: %w", err)
	}
	if len(accounts) == 0 {
		client.Close()
		return nil, errors.New("wallet bridge returned no accounts")
	}

	return &bridgeAccount{client: client, address: accounts[0]}, nil
}

type bridgeAccount struct {
	client  *rpc.Client
	address string
}

func (a *bridgeAccount) Address() string {
	return a.address
}

// Execute submits an unsigned invoke call; the daemon signs it with the
// resident's key and returns the transaction hash.
func (a *bridgeAccount) Execute(ctx context.Context, call *chain.InvokeCall) (string, error) {
	var result struct {
		TransactionHash string `json:"transaction_hash"`
	}
	err := a.client.CallContext(ctx, &result, "wallet_addInvokeTransaction", call)
	if err != nil {
		return "", fmt.Errorf("wallet_addInvokeTransaction error: %w", err)
	}
	if result.TransactionHash == "" {
		return "", errors.New("wallet bridge returned empty transaction hash")
	}
	return result.TransactionHash, nil
}

func (a *bridgeAccount) WatchAsset(ctx context.Context, tokenAddress string) error {
	var accepted bool
	err := a.client.CallContext(ctx, &accepted, "wallet_watchAsset", map[string]any{
		"type":    "ERC20",
		"options": map[string]string{"address": tokenAddress},
	})
	if err != nil {
		return err
	}
	if !accepted {
		return errors.New("watch asset declined")
	}
	return nil
}
