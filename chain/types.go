package chain

import "encoding/json"

// TxReceipt is the receipt returned by the chain node for a submitted
// transaction. Only the fields the settlement flows read are kept.
type TxReceipt struct {
	TxHash          string  `json:"transaction_hash"`
	ExecutionStatus string  `json:"execution_status"`
	FinalityStatus  string  `json:"finality_status"`
	RevertReason    string  `json:"revert_reason,omitempty"`
	Events          []Event `json:"events"`
}

// Event is one emitted log entry inside a receipt. Keys[0] carries the
// event-name hash, Data carries positional payload fields.
type Event struct {
	FromAddress string   `json:"from_address"`
	Keys        []string `json:"keys"`
	Data        []string `json:"data"`
}

// TradeEvent is the decoded form of the contract's Trade event.
// Data layout: data[1] = contract-local trade id, data[2] = lender address.
// The offsets are part of the deployed contract version, not a convention.
type TradeEvent struct {
	LocalID      int64  `json:"local_id"`
	Counterparty string `json:"counterparty"`
}

// contractClass is the subset of the node's getClassAt response needed to
// resolve a contract interface.
type contractClass struct {
	ABI json.RawMessage `json:"abi"`
}

// abiEntry is one declaration inside a contract ABI.
type abiEntry struct {
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Inputs []abiParam `json:"inputs"`
}

type abiParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InvokeCall is an unsigned call description produced by Contract.Populate.
// It carries no signature and performs no on-chain interaction by itself.
type InvokeCall struct {
	ContractAddress string   `json:"contract_address"`
	EntryPoint      string   `json:"entry_point"`
	Selector        string   `json:"entry_point_selector"`
	Calldata        []string `json:"calldata"`
}
