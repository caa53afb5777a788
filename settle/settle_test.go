package settle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/wallet"
)

const (
	residentAddr = "0x04a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1"
	lenderAddr   = "0x05b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
	sctAddr      = "0x0000000000000000000000000000000000000000000000000000000000000002"
	strkAddr     = "0x0000000000000000000000000000000000000000000000000000000000000003"
)

const tokenABI = `[
	{"type":"function","name":"transfer","inputs":[{"name":"recipient","type":"core::starknet::contract_address::ContractAddress"},{"name":"amount","type":"core::integer::u256"}]},
	{"type":"function","name":"createTrade","inputs":[{"name":"amount","type":"core::integer::u256"}]},
	{"type":"function","name":"deleteTrade","inputs":[{"name":"trade_id","type":"core::felt252"}]}
]`

/***************************** fakes ***********************************/

type fakeAccount struct {
	address string
	calls   []*chain.InvokeCall
	execErr error
}

func (a *fakeAccount) Address() string { return a.address }

func (a *fakeAccount) Execute(ctx context.Context, call *chain.InvokeCall) (string, error) {
	if a.execErr != nil {
		return "", a.execErr
	}
	a.calls = append(a.calls, call)
	return "0xabc", nil
}

func (a *fakeAccount) WatchAsset(ctx context.Context, tokenAddress string) error { return nil }

type fakeWallets struct {
	account *fakeAccount
	err     error
}

func (w *fakeWallets) Connect(ctx context.Context, preferredWalletID string) (*wallet.Session, error) {
	if w.err != nil {
		return nil, w.err
	}
	return &wallet.Session{Account: w.account, Address: w.account.address}, nil
}

type fakeChain struct {
	contracts map[string]*chain.Contract
	event     *chain.TradeEvent
	eventErr  error
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()

	contracts := make(map[string]*chain.Contract)
	for _, addr := range []string{sctAddr, strkAddr} {
		c, err := chain.ContractFromABI(addr, json.RawMessage(tokenABI))
		if err != nil {
			t.Fatal(err)
		}
		contracts[addr] = c
	}
	return &fakeChain{contracts: contracts}
}

func (f *fakeChain) Resolve(ctx context.Context, contractAddress string) (*chain.Contract, error) {
	c, ok := f.contracts[contractAddress]
	if !ok {
		return nil, fmt.Errorf("unknown contract %s", contractAddress)
	}
	return c, nil
}

func (f *fakeChain) ExtractEvent(ctx context.Context, txHash, eventName string) (*chain.TradeEvent, error) {
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.event, nil
}

type fakeBackend struct {
	createReqs   []gateway.CreateTradeReq
	cancelReqs   []gateway.CancelTradeReq
	acceptReqs   []gateway.AcceptTradeReq
	purchaseReqs []gateway.AddPurchaseReq
	trade        *m.Trade
	purchase     *m.Purchase
	err          error
}

func (b *fakeBackend) CreateTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.CreateTradeReq) (*m.Trade, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.createReqs = append(b.createReqs, req)
	return b.trade, nil
}

func (b *fakeBackend) CancelTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.CancelTradeReq) (*m.Trade, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.cancelReqs = append(b.cancelReqs, req)
	return b.trade, nil
}

func (b *fakeBackend) AcceptTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.AcceptTradeReq) error {
	if b.err != nil {
		return b.err
	}
	b.acceptReqs = append(b.acceptReqs, req)
	return nil
}

func (b *fakeBackend) AddPurchase(ctx context.Context, sess *gateway.AuthSession, req gateway.AddPurchaseReq) (*m.Purchase, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.purchaseReqs = append(b.purchaseReqs, req)
	return b.purchase, nil
}

type fakeJournal struct {
	saved []m.Divergence
	err   error
}

func (j *fakeJournal) SaveDivergence(d *m.Divergence) error {
	if j.err != nil {
		return j.err
	}
	j.saved = append(j.saved, *d)
	return nil
}

type fakeAlerter struct {
	msgs []string
}

func (a *fakeAlerter) SendMessage(msg string) {
	a.msgs = append(a.msgs, msg)
}

/***************************** fixtures ***********************************/

type fixture struct {
	orch    *Orchestrator
	account *fakeAccount
	wallets *fakeWallets
	chain   *fakeChain
	backend *fakeBackend
	journal *fakeJournal
	alert   *fakeAlerter
	sess    *gateway.AuthSession
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	account := &fakeAccount{address: residentAddr}
	wallets := &fakeWallets{account: account}
	fc := newFakeChain(t)
	backend := &fakeBackend{
		trade:    &m.Trade{ID: 7, Status: m.TradePending},
		purchase: &m.Purchase{ID: 3, Status: m.PurchaseComplete},
	}
	journal := &fakeJournal{}
	alert := &fakeAlerter{}

	orch := New(Config{
		Wallets: wallets,
		Chain:   fc,
		Backend: backend,
		Journal: journal,
		Alert:   alert,
		Sct:     chain.Token{Symbol: "SCT", Address: sctAddr, Decimals: 0},
		Strk:    chain.Token{Symbol: "STRK", Address: strkAddr, Decimals: 18},
	})

	return &fixture{
		orch:    orch,
		account: account,
		wallets: wallets,
		chain:   fc,
		backend: backend,
		journal: journal,
		alert:   alert,
		sess: &gateway.AuthSession{
			Token:           "backend-token",
			ExpectedAddress: residentAddr,
			Expiry:          time.Now().Add(time.Hour),
		},
	}
}

/***************************** trade create ***********************************/

func TestCreateTrade(t *testing.T) {

	t.Run("full settlement", func(t *testing.T) {
		f := newFixture(t)

		trade, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "10",
			StrkPrice:  "2",
			WalletID:   "braavos",
		})
		assert.Nil(t, ferr)
		assert.Equal(t, uint(7), trade.ID)
		assert.Equal(t, m.TradePending, trade.Status)

		// chain call locks the offered SCT
		assert.Equal(t, 1, len(f.account.calls))
		call := f.account.calls[0]
		assert.Equal(t, "createTrade", call.EntryPoint)
		assert.Equal(t, []string{"0xa", "0x0"}, call.Calldata)

		// backend sees the raw digits and the tx hash
		assert.Equal(t, 1, len(f.backend.createReqs))
		req := f.backend.createReqs[0]
		assert.Equal(t, json.Number("10"), req.SctOffered)
		assert.Equal(t, json.Number("2"), req.StrkPrice)
		assert.Equal(t, "0xabc", req.TxHash)

		assert.Equal(t, 0, len(f.journal.saved))
	})

	t.Run("address mismatch aborts before the chain", func(t *testing.T) {
		f := newFixture(t)
		f.account.address = lenderAddr

		_, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "10", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepAddressVerifying, ferr.Step)
		assert.False(t, ferr.Divergence())
		assert.Equal(t, 0, len(f.account.calls))
		assert.Equal(t, 0, len(f.backend.createReqs))
	})

	t.Run("missing profile address aborts", func(t *testing.T) {
		f := newFixture(t)
		f.sess.ExpectedAddress = ""

		_, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "10", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepAddressVerifying, ferr.Step)
	})

	t.Run("invalid amount fails before connecting", func(t *testing.T) {
		f := newFixture(t)

		_, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "1.5", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepIdle, ferr.Step)
	})

	t.Run("backend failure after chain success is a divergence", func(t *testing.T) {
		f := newFixture(t)
		f.backend.err = &gateway.ServerRejectedError{Status: 500, Detail: "database down"}

		_, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "10", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.True(t, ferr.Divergence())
		assert.Equal(t, "0xabc", ferr.TxHash)
		assert.True(t, strings.Contains(ferr.Error(), "0xabc"))

		assert.Equal(t, 1, len(f.journal.saved))
		assert.Equal(t, FlowTradeCreate, f.journal.saved[0].Flow)
		assert.Equal(t, "0xabc", f.journal.saved[0].TxHash)

		assert.Equal(t, 1, len(f.alert.msgs))
		assert.Contains(t, f.alert.msgs[0], "DIVERGENCE")
	})

	t.Run("wallet failure is not a divergence", func(t *testing.T) {
		f := newFixture(t)
		f.wallets.err = wallet.ErrNoWalletSelected

		_, ferr := f.orch.CreateTrade(context.Background(), f.sess, CreateTradeInput{
			SctOffered: "10", StrkPrice: "2", WalletID: "",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepConnecting, ferr.Step)
		assert.ErrorIs(t, ferr, wallet.ErrNoWalletSelected)
		assert.Equal(t, 0, len(f.journal.saved))
	})
}

/***************************** trade accept ***********************************/

func TestAcceptTrade(t *testing.T) {

	t.Run("pays the lender from the creation receipt", func(t *testing.T) {
		f := newFixture(t)
		f.chain.event = &chain.TradeEvent{LocalID: 42, Counterparty: lenderAddr}

		ferr := f.orch.AcceptTrade(context.Background(), f.sess, AcceptTradeInput{
			TradeID:      7,
			CreateTxHash: "0xcreate",
			SctOffered:   "10",
			StrkPrice:    "2",
			WalletID:     "braavos",
		})
		assert.Nil(t, ferr)

		assert.Equal(t, 1, len(f.account.calls))
		call := f.account.calls[0]
		assert.Equal(t, "transfer", call.EntryPoint)
		// recipient comes from the event, never from user input
		assert.Equal(t, "0x"+strings.TrimLeft(strings.TrimPrefix(lenderAddr, "0x"), "0"), call.Calldata[0])

		assert.Equal(t, 1, len(f.backend.acceptReqs))
		req := f.backend.acceptReqs[0]
		assert.Equal(t, int64(42), req.TradeContractID)
		assert.Equal(t, uint(7), req.TradeBackendID)
		assert.Equal(t, "0xabc", req.TxHash)
	})

	t.Run("missing event stops the flow cold", func(t *testing.T) {
		f := newFixture(t)
		f.chain.eventErr = chain.ErrEventNotFound

		ferr := f.orch.AcceptTrade(context.Background(), f.sess, AcceptTradeInput{
			TradeID: 7, CreateTxHash: "0xcreate", SctOffered: "10", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepAwaitingReceipt, ferr.Step)
		assert.ErrorIs(t, ferr, chain.ErrEventNotFound)
		assert.Equal(t, 0, len(f.account.calls))
		assert.Equal(t, 0, len(f.backend.acceptReqs))
	})

	t.Run("backend rejection after payment diverges", func(t *testing.T) {
		f := newFixture(t)
		f.chain.event = &chain.TradeEvent{LocalID: 42, Counterparty: lenderAddr}
		f.backend.err = &gateway.ServerRejectedError{Status: 409, Detail: "trade already accepted"}

		ferr := f.orch.AcceptTrade(context.Background(), f.sess, AcceptTradeInput{
			TradeID: 7, CreateTxHash: "0xcreate", SctOffered: "10", StrkPrice: "2", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.True(t, ferr.Divergence())
		assert.Equal(t, 1, len(f.journal.saved))
		assert.Contains(t, f.journal.saved[0].Detail, "trade already accepted")
	})
}

/***************************** trade cancel ***********************************/

func TestCancelTrade(t *testing.T) {

	t.Run("deletes by contract-local id", func(t *testing.T) {
		f := newFixture(t)
		f.chain.event = &chain.TradeEvent{LocalID: 42, Counterparty: lenderAddr}

		trade, ferr := f.orch.CancelTrade(context.Background(), f.sess, CancelTradeInput{
			TradeID:      7,
			CreateTxHash: "0xcreate",
			WalletID:     "braavos",
		})
		assert.Nil(t, ferr)
		assert.Equal(t, uint(7), trade.ID)

		assert.Equal(t, 1, len(f.account.calls))
		call := f.account.calls[0]
		assert.Equal(t, "deleteTrade", call.EntryPoint)
		assert.Equal(t, []string{"0x2a"}, call.Calldata)

		assert.Equal(t, 1, len(f.backend.cancelReqs))
		assert.Equal(t, uint(7), f.backend.cancelReqs[0].TradeID)
	})

	t.Run("execute failure is not a divergence", func(t *testing.T) {
		f := newFixture(t)
		f.chain.event = &chain.TradeEvent{LocalID: 42, Counterparty: lenderAddr}
		f.account.execErr = errors.New("user rejected in wallet")

		_, ferr := f.orch.CancelTrade(context.Background(), f.sess, CancelTradeInput{
			TradeID: 7, CreateTxHash: "0xcreate", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.Equal(t, StepSubmitting, ferr.Step)
		assert.False(t, ferr.Divergence())
		assert.Equal(t, 0, len(f.journal.saved))
	})
}

/***************************** purchase ***********************************/

func TestPurchaseTokens(t *testing.T) {

	t.Run("transfers strk at the fixed rate", func(t *testing.T) {
		f := newFixture(t)

		purchase, ferr := f.orch.PurchaseTokens(context.Background(), f.sess, PurchaseInput{
			AmountSct: "50",
			WalletID:  "braavos",
		})
		assert.Nil(t, ferr)
		assert.Equal(t, uint(3), purchase.ID)

		assert.Equal(t, 1, len(f.account.calls))
		call := f.account.calls[0]
		assert.Equal(t, "transfer", call.EntryPoint)
		// 50 SCT -> 0.05 STRK -> 5e16 units low limb
		assert.Equal(t, "0xb1a2bc2ec50000", call.Calldata[1])

		assert.Equal(t, 1, len(f.backend.purchaseReqs))
		req := f.backend.purchaseReqs[0]
		assert.Equal(t, m.PayStrk, req.PaymentMethod)
		assert.Equal(t, json.Number("50"), req.AmountSct)
		assert.Equal(t, json.Number("0.05"), req.StrkUsed)
		assert.Equal(t, "0xabc", req.PaymentTxID)
	})

	t.Run("backend failure journals the purchase", func(t *testing.T) {
		f := newFixture(t)
		f.backend.err = gateway.ErrNetworkUnreachable

		_, ferr := f.orch.PurchaseTokens(context.Background(), f.sess, PurchaseInput{
			AmountSct: "50", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.True(t, ferr.Divergence())
		assert.Equal(t, FlowPurchase, f.journal.saved[0].Flow)
	})

	t.Run("journal failure still reports the divergence", func(t *testing.T) {
		f := newFixture(t)
		f.backend.err = gateway.ErrNetworkUnreachable
		f.journal.err = errors.New("disk full")

		_, ferr := f.orch.PurchaseTokens(context.Background(), f.sess, PurchaseInput{
			AmountSct: "50", WalletID: "braavos",
		})
		assert.NotNil(t, ferr)
		assert.True(t, ferr.Divergence())
		// the alert still fires even when the journal write failed
		assert.Equal(t, 1, len(f.alert.msgs))
	})
}
