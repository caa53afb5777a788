// Package settle sequences the settlement flows: wallet connect, address
// guard, contract call, receipt decode, backend reconciliation. Each
// invocation walks an explicit state machine so a failure is a value
// naming the step it happened at, not an exception message.
package settle

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/wallet"
)

// Step names one state of a settlement invocation. The machine is not
// persisted; it lives only for the duration of one user action.
type Step string

const (
	StepIdle             Step = "idle"
	StepConnecting       Step = "connecting"
	StepAddressVerifying Step = "address_verifying"
	StepAwaitingReceipt  Step = "awaiting_receipt"
	StepSubmitting       Step = "submitting"
	StepNotifyingBackend Step = "notifying_backend"
	StepDone             Step = "done"
)

// Flow names for logging and the divergence journal.
const (
	FlowPurchase    = "purchase"
	FlowTradeCreate = "trade_create"
	FlowTradeAccept = "trade_accept"
	FlowTradeCancel = "trade_cancel"
)

// FlowError is a failure at a named step. When Step is NotifyingBackend
// and TxHash is set, the chain effect already happened and was NOT rolled
// back: the caller must surface TxHash to the resident for manual
// reconciliation instead of hiding the divergence.
type FlowError struct {
	Flow   string
	Step   Step
	TxHash string
	Err    error
}

func (e *FlowError) Error() string {
	if e.Divergence() {
		return fmt.Sprintf("%s failed at %s, chain tx %s already submitted: %v", e.Flow, e.Step, e.TxHash, e.Err)
	}
	return fmt.Sprintf("%s failed at %s: %v", e.Flow, e.Step, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// Divergence reports whether the chain succeeded while the backend did not.
func (e *FlowError) Divergence() bool {
	return e.Step == StepNotifyingBackend && e.TxHash != ""
}

type WalletService interface {
	Connect(ctx context.Context, preferredWalletID string) (*wallet.Session, error)
}

type ChainService interface {
	Resolve(ctx context.Context, contractAddress string) (*chain.Contract, error)
	ExtractEvent(ctx context.Context, txHash, eventName string) (*chain.TradeEvent, error)
}

type Backend interface {
	CreateTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.CreateTradeReq) (*m.Trade, error)
	CancelTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.CancelTradeReq) (*m.Trade, error)
	AcceptTrade(ctx context.Context, sess *gateway.AuthSession, req gateway.AcceptTradeReq) error
	AddPurchase(ctx context.Context, sess *gateway.AuthSession, req gateway.AddPurchaseReq) (*m.Purchase, error)
}

// Journal persists divergences for manual reconciliation.
type Journal interface {
	SaveDivergence(d *m.Divergence) error
}

type Alerter interface {
	SendMessage(msg string)
}

type Orchestrator struct {
	wallets WalletService
	chain   ChainService
	backend Backend
	journal Journal
	alert   Alerter
	sct     chain.Token
	strk    chain.Token
	lg      zerolog.Logger
}

type Config struct {
	Wallets WalletService
	Chain   ChainService
	Backend Backend
	Journal Journal
	// Alert may be nil; divergences are then journaled only.
	Alert Alerter
	Sct   chain.Token
	Strk  chain.Token
}

func New(conf Config) *Orchestrator {
	return &Orchestrator{
		wallets: conf.Wallets,
		chain:   conf.Chain,
		backend: conf.Backend,
		journal: conf.Journal,
		alert:   conf.Alert,
		sct:     conf.Sct,
		strk:    conf.Strk,
		lg:      zerolog.New(os.Stdout).With().Str("Module", "Settle").Timestamp().Logger(),
	}
}

// run tracks one invocation's position in the state machine.
type run struct {
	flow string
	step Step
	lg   zerolog.Logger
}

func (o *Orchestrator) start(flow string) *run {
	return &run{flow: flow, step: StepIdle, lg: o.lg.With().Str("flow", flow).Logger()}
}

func (r *run) to(s Step) {
	r.lg.Debug().Str("from", string(r.step)).Str("to", string(s)).Msg("Settlement step")
	r.step = s
}

func (r *run) fail(txHash string, err error) *FlowError {
	r.lg.Error().Err(err).Str("step", string(r.step)).Str("tx", txHash).Msg("Settlement failed")
	return &FlowError{Flow: r.flow, Step: r.step, TxHash: txHash, Err: err}
}

// connectAndVerify runs the Connecting and AddressVerifying steps shared
// by every flow: the connected account must equal the profile's recorded
// address (normalized) before any chain call is built.
func (o *Orchestrator) connectAndVerify(ctx context.Context, r *run, sess *gateway.AuthSession, walletID string) (*wallet.Session, *FlowError) {
	r.to(StepConnecting)
	ws, err := o.wallets.Connect(ctx, walletID)
	if err != nil {
		return nil, r.fail("", err)
	}

	r.to(StepAddressVerifying)
	if sess.ExpectedAddress == "" {
		return nil, r.fail("", fmt.Errorf("no account address on profile; set it before trading"))
	}
	if !chain.SameAddress(ws.Address, sess.ExpectedAddress) {
		return nil, r.fail("", fmt.Errorf("connected account %s does not match profile address %s", ws.Address, sess.ExpectedAddress))
	}
	return ws, nil
}

// diverge journals a chain-succeeded / backend-failed settlement and
// alerts the resident. Journal failures are logged, never masked over the
// original error.
func (o *Orchestrator) diverge(flow, txHash string, cause error) {
	d := &m.Divergence{
		Flow:   flow,
		TxHash: txHash,
		Detail: cause.Error(),
	}
	if o.journal != nil {
		if err := o.journal.SaveDivergence(d); err != nil {
			o.lg.Error().Err(err).Str("tx", txHash).Msg("Divergence journal write failed")
		}
	}
	if o.alert != nil {
		o.alert.SendMessage(fmt.Sprintf("DIVERGENCE %s: chain tx %s succeeded but backend said: %v", flow, txHash, cause))
	}
}
