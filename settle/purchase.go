package settle

import (
	"context"
	"encoding/json"

	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
)

type PurchaseInput struct {
	// AmountSct is the human-readable SCT amount being bought.
	AmountSct string
	WalletID  string
}

// PurchaseTokens buys SCT by transferring STRK to the token treasury at
// the fixed rate, then records the purchase with the backend.
func (o *Orchestrator) PurchaseTokens(ctx context.Context, sess *gateway.AuthSession, input PurchaseInput) (*m.Purchase, *FlowError) {
	r := o.start(FlowPurchase)

	strkUnits, err := o.strk.StrkForSct(input.AmountSct)
	if err != nil {
		return nil, r.fail("", err)
	}
	strkUsed := o.strk.FormatAmount(strkUnits)

	ws, ferr := o.connectAndVerify(ctx, r, sess, input.WalletID)
	if ferr != nil {
		return nil, ferr
	}

	r.to(StepSubmitting)
	contract, err := o.chain.Resolve(ctx, o.strk.Address)
	if err != nil {
		return nil, r.fail("", err)
	}
	call, err := contract.Populate("transfer", chain.Args{
		"recipient": o.sct.Address,
		"amount":    strkUnits,
	})
	if err != nil {
		return nil, r.fail("", err)
	}
	txHash, err := ws.Account.Execute(ctx, call)
	if err != nil {
		return nil, r.fail("", err)
	}

	r.to(StepNotifyingBackend)
	purchase, err := o.backend.AddPurchase(ctx, sess, gateway.AddPurchaseReq{
		PaymentTxID:   txHash,
		PaymentMethod: m.PayStrk,
		AmountSct:     json.Number(input.AmountSct),
		StrkUsed:      json.Number(strkUsed),
	})
	if err != nil {
		o.diverge(FlowPurchase, txHash, err)
		return nil, r.fail(txHash, err)
	}

	r.to(StepDone)
	o.lg.Info().Uint("purchase", purchase.ID).Str("tx", txHash).Msg("Tokens purchased")
	return purchase, nil
}
