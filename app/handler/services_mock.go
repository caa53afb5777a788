package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/power"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

/***************************** Auth ***********************************/

type AuthenticatorMock struct {
	token string
	err   error
}

func (mock *AuthenticatorMock) Login(ctx context.Context, creds gateway.Credentials) (string, error) {
	fmt.Println("Login Called")

	if mock.err != nil {
		return "", mock.err
	}
	return mock.token, nil
}

func (mock *AuthenticatorMock) Register(ctx context.Context, reg gateway.Registration) (string, error) {
	fmt.Println("Register Called")

	if mock.err != nil {
		return "", mock.err
	}
	return "User registered successfully", nil
}

type ProfileServiceMock struct {
	profile *m.Profile
	updated *m.Profile
	err     error
}

func (mock *ProfileServiceMock) Profile(ctx context.Context, sess *gateway.AuthSession) (*m.Profile, error) {
	fmt.Println("Profile Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.profile, nil
}

func (mock *ProfileServiceMock) CreateProfile(ctx context.Context, sess *gateway.AuthSession, profile m.Profile) (string, error) {
	fmt.Println("CreateProfile Called")

	if mock.err != nil {
		return "", mock.err
	}
	mock.profile = &profile
	return "Profile created", nil
}

func (mock *ProfileServiceMock) UpdateProfile(ctx context.Context, sess *gateway.AuthSession, profile m.Profile) (string, error) {
	fmt.Println("UpdateProfile Called")

	if mock.err != nil {
		return "", mock.err
	}
	mock.updated = &profile
	return "Profile updated", nil
}

/***************************** Trade ***********************************/

type TradeListerMock struct {
	user      []m.Trade
	available []m.Trade
	err       error
}

func (mock *TradeListerMock) UserTrades(ctx context.Context, sess *gateway.AuthSession) ([]m.Trade, error) {
	fmt.Println("UserTrades Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.user, nil
}

func (mock *TradeListerMock) AvailableTrades(ctx context.Context, sess *gateway.AuthSession) ([]m.Trade, error) {
	fmt.Println("AvailableTrades Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.available, nil
}

type TradeSettlerMock struct {
	trade   *m.Trade
	created []settle.CreateTradeInput
	ferr    *settle.FlowError
}

func (mock *TradeSettlerMock) CreateTrade(ctx context.Context, sess *gateway.AuthSession, input settle.CreateTradeInput) (*m.Trade, *settle.FlowError) {
	fmt.Println("CreateTrade Called")

	if mock.ferr != nil {
		return nil, mock.ferr
	}
	mock.created = append(mock.created, input)
	return mock.trade, nil
}

func (mock *TradeSettlerMock) AcceptTrade(ctx context.Context, sess *gateway.AuthSession, input settle.AcceptTradeInput) *settle.FlowError {
	fmt.Println("AcceptTrade Called")

	return mock.ferr
}

func (mock *TradeSettlerMock) CancelTrade(ctx context.Context, sess *gateway.AuthSession, input settle.CancelTradeInput) (*m.Trade, *settle.FlowError) {
	fmt.Println("CancelTrade Called")

	if mock.ferr != nil {
		return nil, mock.ferr
	}
	return mock.trade, nil
}

type TradeCacherMock struct {
	cached []m.Trade
	err    error
}

func (mock *TradeCacherMock) CacheTrades(trades []m.Trade) error {
	if mock.err != nil {
		return mock.err
	}
	mock.cached = trades
	return nil
}

func (mock *TradeCacherMock) RetrieveTrades() ([]m.Trade, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	return mock.cached, nil
}

/***************************** Purchase ***********************************/

type PurchaseListerMock struct {
	purchases []m.Purchase
	err       error
}

func (mock *PurchaseListerMock) Purchases(ctx context.Context, sess *gateway.AuthSession) ([]m.Purchase, error) {
	fmt.Println("Purchases Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.purchases, nil
}

type TokenPurchaserMock struct {
	purchase *m.Purchase
	inputs   []settle.PurchaseInput
	ferr     *settle.FlowError
}

func (mock *TokenPurchaserMock) PurchaseTokens(ctx context.Context, sess *gateway.AuthSession, input settle.PurchaseInput) (*m.Purchase, *settle.FlowError) {
	fmt.Println("PurchaseTokens Called")

	if mock.ferr != nil {
		return nil, mock.ferr
	}
	mock.inputs = append(mock.inputs, input)
	return mock.purchase, nil
}

type MpesaServiceMock struct {
	started  []gateway.MpesaPurchaseReq
	purchase *m.Purchase
	err      error
}

func (mock *MpesaServiceMock) AddMpesaPurchase(ctx context.Context, sess *gateway.AuthSession, req gateway.MpesaPurchaseReq) (string, error) {
	fmt.Println("AddMpesaPurchase Called")

	if mock.err != nil {
		return "", mock.err
	}
	mock.started = append(mock.started, req)
	return "Purchase processing", nil
}

func (mock *MpesaServiceMock) ConfirmMpesa(ctx context.Context, sess *gateway.AuthSession) (*m.Purchase, error) {
	fmt.Println("ConfirmMpesa Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.purchase, nil
}

func (mock *MpesaServiceMock) CancelMpesa(ctx context.Context, sess *gateway.AuthSession) (string, error) {
	fmt.Println("CancelMpesa Called")

	if mock.err != nil {
		return "", mock.err
	}
	return "Purchase cancelled", nil
}

type PurchaseCacherMock struct {
	cached []m.Purchase
	err    error
}

func (mock *PurchaseCacherMock) CachePurchases(purchases []m.Purchase) error {
	if mock.err != nil {
		return mock.err
	}
	mock.cached = purchases
	return nil
}

func (mock *PurchaseCacherMock) RetrievePurchases() ([]m.Purchase, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	return mock.cached, nil
}

/***************************** Device ***********************************/

type DeviceServiceMock struct {
	device *m.Device
	err    error
}

func (mock *DeviceServiceMock) Device(ctx context.Context, sess *gateway.AuthSession) (*m.Device, error) {
	fmt.Println("Device Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.device, nil
}

func (mock *DeviceServiceMock) CreateDevice(ctx context.Context, sess *gateway.AuthSession, device m.Device) (string, error) {
	fmt.Println("CreateDevice Called")

	if mock.err != nil {
		return "", mock.err
	}
	mock.device = &device
	return "Device created", nil
}

func (mock *DeviceServiceMock) UpdateDevice(ctx context.Context, sess *gateway.AuthSession, device m.Device) (string, error) {
	fmt.Println("UpdateDevice Called")

	if mock.err != nil {
		return "", mock.err
	}
	mock.device = &device
	return "Device updated", nil
}

/***************************** Power / Journal ***********************************/

type FeedRunnerMock struct {
	mu     sync.Mutex
	runs   int
	tokens func() string
}

func (mock *FeedRunnerMock) Run(ctx context.Context, tokens func() string) error {
	fmt.Println("Run Called")

	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.runs++
	mock.tokens = tokens
	return nil
}

func (mock *FeedRunnerMock) Runs() int {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.runs
}

func (mock *FeedRunnerMock) Token() string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	if mock.tokens == nil {
		return ""
	}
	return mock.tokens()
}

type PowerWindowMock struct {
	samples []power.Sample
}

func (mock *PowerWindowMock) Window() []power.Sample {
	return mock.samples
}

func (mock *PowerWindowMock) Latest() (power.Sample, bool) {
	if len(mock.samples) == 0 {
		return power.Sample{}, false
	}
	return mock.samples[len(mock.samples)-1], true
}

type PowerHistoryMock struct {
	samples []m.PowerSample
	err     error
}

func (mock *PowerHistoryMock) RetrieveRecentPower(n int) ([]m.PowerSample, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	if n > len(mock.samples) {
		n = len(mock.samples)
	}
	return mock.samples[:n], nil
}

type DivergenceJournalMock struct {
	divergences []m.Divergence
	resolved    []uint
	err         error
}

func (mock *DivergenceJournalMock) RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error) {
	fmt.Println("RetrieveDivergences Called")

	if mock.err != nil {
		return nil, mock.err
	}
	if !unresolvedOnly {
		return mock.divergences, nil
	}
	var rtn []m.Divergence
	for _, d := range mock.divergences {
		if !d.Resolved {
			rtn = append(rtn, d)
		}
	}
	return rtn, nil
}

func (mock *DivergenceJournalMock) ResolveDivergence(id uint) error {
	fmt.Println("ResolveDivergence Called")

	if mock.err != nil {
		return mock.err
	}
	mock.resolved = append(mock.resolved, id)
	return nil
}
