package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
)

var (
	// ErrNoAbiFound is returned when the node has no ABI for an address.
	ErrNoAbiFound = errors.New("no ABI found for contract")
	// ErrReceiptUnavailable is returned when a receipt cannot be fetched.
	ErrReceiptUnavailable = errors.New("transaction receipt unavailable")
	// ErrEventNotFound is returned when a receipt carries no matching event.
	ErrEventNotFound = errors.New("event not found in transaction receipt")
)

// Provider wraps one chain RPC endpoint and resolves deployed contracts.
type Provider struct {
	client *rpc.Client
	url    string

	mu       sync.Mutex
	resolved map[string]*Contract

	lg zerolog.Logger
}

func NewProvider(nodeURL string) (*Provider, error) {
	client, err := rpc.Dial(nodeURL)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("provider dial error, url: %s", nodeURL), err)
	}

	return &Provider{
		client:   client,
		url:      nodeURL,
		resolved: make(map[string]*Contract),
		lg:       zerolog.New(os.Stdout).With().Str("Module", "ChainProvider").Timestamp().Logger(),
	}, nil
}

// URL returns the configured chain endpoint.
func (p *Provider) URL() string {
	return p.url
}

// Resolve fetches the class ABI deployed at contractAddress and returns a
// typed call builder for it. Resolved interfaces are cached per address.
func (p *Provider) Resolve(ctx context.Context, contractAddress string) (*Contract, error) {
	addr, err := NormalizeAddress(contractAddress)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("resolve error, address: %s", contractAddress), err)
	}

	p.mu.Lock()
	if c, ok := p.resolved[addr]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	var class contractClass
	err = p.client.CallContext(ctx, &class, "starknet_getClassAt", "latest", addr)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("getClassAt error, address: %s", addr), err)
	}

	entries, err := parseABI(class.ABI)
	if err != nil {
		return nil, err
	}

	functions := make(map[string][]abiParam)
	for _, e := range entries {
		if e.Type == "function" || e.Type == "l1_handler" {
			functions[e.Name] = e.Inputs
		}
	}
	if len(functions) == 0 {
		return nil, ErrNoAbiFound
	}

	c := &Contract{
		address:   addr,
		functions: functions,
	}

	p.mu.Lock()
	p.resolved[addr] = c
	p.mu.Unlock()

	p.lg.Debug().Str("address", addr).Int("functions", len(functions)).Msg("Contract resolved")
	return c, nil
}

// GetReceipt fetches the receipt of a submitted transaction.
func (p *Provider) GetReceipt(ctx context.Context, txHash string) (*TxReceipt, error) {
	var r *TxReceipt
	err := p.client.CallContext(ctx, &r, "starknet_getTransactionReceipt", txHash)
	if err != nil {
		return nil, errors.Join(ErrReceiptUnavailable, err)
	}
	if r == nil {
		return nil, ErrReceiptUnavailable
	}
	return r, nil
}

// ContractFromABI builds a call builder from a known ABI document without
// touching the chain, for contracts whose ABI ships with the dashboard.
func ContractFromABI(address string, abi json.RawMessage) (*Contract, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	entries, err := parseABI(abi)
	if err != nil {
		return nil, err
	}

	functions := make(map[string][]abiParam)
	for _, e := range entries {
		if e.Type == "function" || e.Type == "l1_handler" {
			functions[e.Name] = e.Inputs
		}
	}
	if len(functions) == 0 {
		return nil, ErrNoAbiFound
	}

	return &Contract{address: addr, functions: functions}, nil
}

// parseABI handles both ABI encodings the node returns: a JSON array, or
// the same array wrapped in a JSON string.
func parseABI(raw json.RawMessage) ([]abiEntry, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNoAbiFound
	}

	var entries []abiEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}

	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, ErrNoAbiFound
	}
	if err := json.Unmarshal([]byte(wrapped), &entries); err != nil {
		return nil, errors.Join(ErrNoAbiFound, err)
	}
	return entries, nil
}

// Contract is a resolved contract interface. Populate builds unsigned call
// descriptions; it never touches the chain itself.
type Contract struct {
	address   string
	functions map[string][]abiParam
}

// Args carries named arguments for Populate. Supported values: *big.Int
// (felt or u256 depending on the declared input type), int64/uint64, and
// hex strings for addresses.
type Args map[string]any

func (c *Contract) Address() string {
	return c.address
}

// Populate builds an unsigned invoke call for the named function, encoding
// the arguments in the order the ABI declares them.
func (c *Contract) Populate(function string, args Args) (*InvokeCall, error) {
	inputs, ok := c.functions[function]
	if !ok {
		return nil, fmt.Errorf("function %q not in contract %s ABI", function, c.address)
	}

	calldata := make([]string, 0, len(inputs))
	for _, in := range inputs {
		v, ok := args[in.Name]
		if !ok {
			return nil, fmt.Errorf("%s: missing argument %q", function, in.Name)
		}

		felts, err := encodeArg(v, in.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %q: %w", function, in.Name, err)
		}
		calldata = append(calldata, felts...)
	}

	return &InvokeCall{
		ContractAddress: c.address,
		EntryPoint:      function,
		Selector:        NameHash(function),
		Calldata:        calldata,
	}, nil
}

func encodeArg(v any, abiType string) ([]string, error) {
	value, err := toFelt(v)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(abiType, "u256") || strings.HasSuffix(abiType, "Uint256") {
		low, high := U256(value)
		return []string{feltHex(low), feltHex(high)}, nil
	}
	return []string{feltHex(value)}, nil
}

func toFelt(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		return x, nil
	case int64:
		return big.NewInt(x), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case int:
		return big.NewInt(int64(x)), nil
	case string:
		f, ok := parseFelt(x)
		if !ok {
			return nil, fmt.Errorf("invalid felt %q", x)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported argument type %T", v)
	}
}

func feltHex(v *big.Int) string {
	return "0x" + v.Text(16)
}
