package chain

import (
	"context"
	"errors"
	"fmt"
)

// TradeEventName is the event the trade contract emits on createTrade.
const TradeEventName = "Trade"

// ExtractEvent fetches the receipt of txHash and scans its emitted events
// for the first one whose keys[0] matches the hash of eventName, decoding
// the positional payload into a TradeEvent.
func (p *Provider) ExtractEvent(ctx context.Context, txHash string, eventName string) (*TradeEvent, error) {
	receipt, err := p.GetReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	return DecodeTradeEvent(receipt, eventName)
}

// DecodeTradeEvent scans a fetched receipt for the named event. Split out
// of ExtractEvent so decoding is testable without a node.
func DecodeTradeEvent(receipt *TxReceipt, eventName string) (*TradeEvent, error) {
	key := NameHash(eventName)

	for _, ev := range receipt.Events {
		if len(ev.Keys) == 0 || !sameFelt(ev.Keys[0], key) {
			continue
		}

		// data[1] local id, data[2] counterparty: fixed offsets of the
		// deployed contract version.
		if len(ev.Data) < 3 {
			return nil, errors.Join(ErrEventNotFound,
				fmt.Errorf("%s event has %d data fields, want at least 3", eventName, len(ev.Data)))
		}

		localID, ok := parseFelt(ev.Data[1])
		if !ok || !localID.IsInt64() {
			return nil, errors.Join(ErrEventNotFound,
				fmt.Errorf("%s event local id %q is not a valid integer", eventName, ev.Data[1]))
		}

		counterparty, err := NormalizeAddress(ev.Data[2])
		if err != nil {
			return nil, errors.Join(ErrEventNotFound,
				fmt.Errorf("%s event counterparty invalid", eventName), err)
		}

		return &TradeEvent{
			LocalID:      localID.Int64(),
			Counterparty: counterparty,
		}, nil
	}

	return nil, ErrEventNotFound
}
