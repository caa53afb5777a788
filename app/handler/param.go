package handler

/***************************************************************** request ****************************************************************/

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type CreateTradeParam struct {
	SctOffered string `json:"sct_offered" validate:"required,amount"`
	StrkPrice  string `json:"strk_price" validate:"required,amount"`
	WalletID   string `json:"wallet_id"`
}

type AcceptTradeParam struct {
	TradeID    uint   `json:"trade_id" validate:"required"`
	TxHash     string `json:"tx_hash" validate:"required"`
	SctOffered string `json:"sct_offered" validate:"required,amount"`
	StrkPrice  string `json:"strk_price" validate:"required,amount"`
	WalletID   string `json:"wallet_id"`
}

type CancelTradeParam struct {
	TradeID  uint   `json:"trade_id" validate:"required"`
	TxHash   string `json:"tx_hash" validate:"required"`
	WalletID string `json:"wallet_id"`
}

type PurchaseParam struct {
	AmountSct string `json:"amount_sct" validate:"required,amount"`
	WalletID  string `json:"wallet_id"`
}

type MpesaPurchaseParam struct {
	AmountSct string `json:"amount_sct" validate:"required,amount"`
}

type PinLoadParam struct {
	Pin  string `json:"pin" validate:"required,numeric,max=5"`
	Load string `json:"load" validate:"required,max=30"`
}

type DeviceParam struct {
	DeviceType     string         `json:"device_type" validate:"required"`
	DeviceID       string         `json:"device_id" validate:"required,device_id"`
	ConnectionType string         `json:"connection_type" validate:"required"`
	Estate         string         `json:"estate" validate:"required"`
	PinLoads       []PinLoadParam `json:"pin_loads" validate:"required,min=1,dive"`
}

type ProfileParam struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Dob            string `json:"dob" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	Phone          string `json:"phone"`
	Phone2         string `json:"phone2"`
	Notification   string `json:"notification"`
	AccountAddress string `json:"account_address" validate:"omitempty,address"`
}

type ResolveDivergenceParam struct {
	ID uint `json:"id" validate:"required"`
}

/***************************************************************** response ****************************************************************/

// JWTResponse is the response sent after successful authentication
type JWTResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// divergenceResponse surfaces a chain-succeeded / backend-failed
// settlement. TxHash must reach the resident for manual reconciliation.
type divergenceResponse struct {
	Message string `json:"message"`
	Flow    string `json:"flow"`
	TxHash  string `json:"tx_hash"`
}

type powerWindowResponse struct {
	Samples []powerSampleResponse `json:"samples"`
	Latest  float64               `json:"latest"`
}

type powerSampleResponse struct {
	Power float64 `json:"power"`
	At    string  `json:"at"`
}
