package settle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type CreateTradeInput struct {
	// Human-readable decimal amounts, exactly as entered.
	SctOffered string
	StrkPrice  string
	WalletID   string
}

type AcceptTradeInput struct {
	TradeID      uint
	CreateTxHash string
	SctOffered   string
	StrkPrice    string
	WalletID     string
}

type CancelTradeInput struct {
	TradeID      uint
	CreateTxHash string
	WalletID     string
}

// CreateTrade locks SCT into a new trade listing on-chain, then records
// the listing with the backend. The returned trade row is canonical.
func (o *Orchestrator) CreateTrade(ctx context.Context, sess *gateway.AuthSession, input CreateTradeInput) (*m.Trade, *FlowError) {
	r := o.start(FlowTradeCreate)

	units, err := o.sct.ParseAmount(input.SctOffered)
	if err != nil {
		return nil, r.fail("", err)
	}
	if _, err := o.strk.ParseAmount(input.StrkPrice); err != nil {
		return nil, r.fail("", fmt.Errorf("invalid price: %w", err))
	}

	ws, ferr := o.connectAndVerify(ctx, r, sess, input.WalletID)
	if ferr != nil {
		return nil, ferr
	}

	r.to(StepSubmitting)
	contract, err := o.chain.Resolve(ctx, o.sct.Address)
	if err != nil {
		return nil, r.fail("", err)
	}
	call, err := contract.Populate("createTrade", chain.Args{"amount": units})
	if err != nil {
		return nil, r.fail("", err)
	}
	txHash, err := ws.Account.Execute(ctx, call)
	if err != nil {
		return nil, r.fail("", err)
	}

	r.to(StepNotifyingBackend)
	trade, err := o.backend.CreateTrade(ctx, sess, gateway.CreateTradeReq{
		SctOffered: json.Number(input.SctOffered),
		StrkPrice:  json.Number(input.StrkPrice),
		TxHash:     txHash,
	})
	if err != nil {
		o.diverge(FlowTradeCreate, txHash, err)
		return nil, r.fail(txHash, err)
	}

	r.to(StepDone)
	o.lg.Info().Uint("trade", trade.ID).Str("tx", txHash).Msg("Trade created")
	return trade, nil
}

// AcceptTrade pays the lender for an open trade. The creation receipt is
// decoded first: the contract-local trade id and the lender address only
// exist in the emitted Trade event, never in the backend record.
func (o *Orchestrator) AcceptTrade(ctx context.Context, sess *gateway.AuthSession, input AcceptTradeInput) *FlowError {
	r := o.start(FlowTradeAccept)

	priceUnits, err := o.strk.ParseAmount(input.StrkPrice)
	if err != nil {
		return r.fail("", fmt.Errorf("invalid price: %w", err))
	}

	ws, ferr := o.connectAndVerify(ctx, r, sess, input.WalletID)
	if ferr != nil {
		return ferr
	}

	r.to(StepAwaitingReceipt)
	event, err := o.chain.ExtractEvent(ctx, input.CreateTxHash, chain.TradeEventName)
	if err != nil {
		return r.fail("", err)
	}

	r.to(StepSubmitting)
	contract, err := o.chain.Resolve(ctx, o.strk.Address)
	if err != nil {
		return r.fail("", err)
	}
	call, err := contract.Populate("transfer", chain.Args{
		"recipient": event.Counterparty,
		"amount":    priceUnits,
	})
	if err != nil {
		return r.fail("", err)
	}
	txHash, err := ws.Account.Execute(ctx, call)
	if err != nil {
		return r.fail("", err)
	}

	r.to(StepNotifyingBackend)
	err = o.backend.AcceptTrade(ctx, sess, gateway.AcceptTradeReq{
		TradeContractID: event.LocalID,
		TradeBackendID:  input.TradeID,
		TxHash:          txHash,
		SctOffered:      json.Number(input.SctOffered),
	})
	if err != nil {
		o.diverge(FlowTradeAccept, txHash, err)
		return r.fail(txHash, err)
	}

	r.to(StepDone)
	o.lg.Info().Uint("trade", input.TradeID).Str("tx", txHash).Msg("Trade accepted")
	return nil
}

// CancelTrade deletes a pending trade on-chain by its contract-local id,
// then marks the backend record cancelled.
func (o *Orchestrator) CancelTrade(ctx context.Context, sess *gateway.AuthSession, input CancelTradeInput) (*m.Trade, *FlowError) {
	r := o.start(FlowTradeCancel)

	ws, ferr := o.connectAndVerify(ctx, r, sess, input.WalletID)
	if ferr != nil {
		return nil, ferr
	}

	r.to(StepAwaitingReceipt)
	event, err := o.chain.ExtractEvent(ctx, input.CreateTxHash, chain.TradeEventName)
	if err != nil {
		return nil, r.fail("", err)
	}

	r.to(StepSubmitting)
	contract, err := o.chain.Resolve(ctx, o.sct.Address)
	if err != nil {
		return nil, r.fail("", err)
	}
	call, err := contract.Populate("deleteTrade", chain.Args{"trade_id": event.LocalID})
	if err != nil {
		return nil, r.fail("", err)
	}
	txHash, err := ws.Account.Execute(ctx, call)
	if err != nil {
		return nil, r.fail("", err)
	}

	r.to(StepNotifyingBackend)
	trade, err := o.backend.CancelTrade(ctx, sess, gateway.CancelTradeReq{
		TradeID: input.TradeID,
		TxHash:  txHash,
	})
	if err != nil {
		o.diverge(FlowTradeCancel, txHash, err)
		return nil, r.fail(txHash, err)
	}

	r.to(StepDone)
	o.lg.Info().Uint("trade", input.TradeID).Str("tx", txHash).Msg("Trade cancelled")
	return trade, nil
}
