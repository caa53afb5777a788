package model

import (
	"time"

	"gorm.io/datatypes"
)

// Trade statuses as the central backend reports them.
const (
	TradePending   = "pending"
	TradeAccepted  = "accepted"
	TradeCancelled = "cancelled"
)

// Purchase payment methods.
const (
	PayStrk  = "strk"
	PayMpesa = "mpesa"
)

// Purchase statuses. Mpesa purchases enter Processing until confirmed.
const (
	PurchaseProcessing = "processing"
	PurchaseComplete   = "complete"
	PurchaseFailed     = "failed"
)

// Trade is a peer-to-peer token trade listing. The central backend owns
// every mutation; local rows are a display cache refreshed from responses.
type Trade struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Date         time.Time `json:"date"`
	TxHash       string    `json:"tx_hash"`
	AcceptTxHash string    `json:"accept_tx_hash,omitempty"`
	CancelTxHash string    `json:"cancel_tx_hash,omitempty"`
	SctOffered   float64   `json:"sct_offered"`
	StrkPrice    float64   `json:"strk_price"`
	Status       string    `json:"status"`
	Buyer        string    `json:"buyer,omitempty"`
	Seller       string    `json:"seller,omitempty"`
}

// Purchase is one SCT token purchase, paid on-chain or via mpesa.
type Purchase struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Date          time.Time `json:"date"`
	PaymentTxID   string    `json:"payment_tx_id"`
	PaymentMethod string    `json:"payment_method"`
	AmountSct     float64   `json:"amount_sct"`
	StrkUsed      float64   `json:"strk_used"`
	Status        string    `json:"status"`
}

// Device is the resident's registered hardware device.
type Device struct {
	ID             uint           `json:"id,omitempty" gorm:"primaryKey"`
	DeviceType     string         `json:"device_type"`
	DeviceID       string         `json:"device_id" gorm:"uniqueIndex"`
	ConnectionType string         `json:"connection_type"`
	Estate         string         `json:"estate"`
	PinLoads       datatypes.JSON `json:"pin_loads"`
	Status         string         `json:"status,omitempty"`
}

// PinLoad is one pin-to-load mapping inside Device.PinLoads.
type PinLoad struct {
	Pin  string `json:"pin"`
	Load string `json:"load"`
}

// Profile is the resident's backend profile. AccountAddress is the wallet
// address every settlement must be signed with.
type Profile struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Dob            string `json:"dob"`
	Gender         string `json:"gender"`
	Phone          string `json:"phone,omitempty"`
	Phone2         string `json:"phone2,omitempty"`
	Notification   string `json:"notification,omitempty"`
	AccountAddress string `json:"account_address,omitempty"`
}

// Divergence journals a settlement whose chain call succeeded but whose
// backend notification failed. Kept locally so the resident can reconcile
// with support; nothing resolves these automatically.
type Divergence struct {
	ID        uint      `gorm:"primaryKey"`
	Flow      string    `json:"flow"`
	TxHash    string    `json:"tx_hash"`
	Detail    string    `json:"detail"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// PowerSample is one reading from the power feed, persisted for history.
type PowerSample struct {
	ID    uint      `gorm:"primaryKey"`
	Power float64   `json:"power"`
	At    time.Time `json:"at"`
}
