package handler

import (
	"context"

	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/power"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

type Authenticator interface {
	Login(ctx context.Context, creds gateway.Credentials) (string, error)
	Register(ctx context.Context, reg gateway.Registration) (string, error)
}

type ProfileService interface {
	Profile(ctx context.Context, sess *gateway.AuthSession) (*m.Profile, error)
	CreateProfile(ctx context.Context, sess *gateway.AuthSession, profile m.Profile) (string, error)
	UpdateProfile(ctx context.Context, sess *gateway.AuthSession, profile m.Profile) (string, error)
}

type DeviceService interface {
	Device(ctx context.Context, sess *gateway.AuthSession) (*m.Device, error)
	CreateDevice(ctx context.Context, sess *gateway.AuthSession, device m.Device) (string, error)
	UpdateDevice(ctx context.Context, sess *gateway.AuthSession, device m.Device) (string, error)
}

type TradeLister interface {
	UserTrades(ctx context.Context, sess *gateway.AuthSession) ([]m.Trade, error)
	AvailableTrades(ctx context.Context, sess *gateway.AuthSession) ([]m.Trade, error)
}

type TradeSettler interface {
	CreateTrade(ctx context.Context, sess *gateway.AuthSession, input settle.CreateTradeInput) (*m.Trade, *settle.FlowError)
	AcceptTrade(ctx context.Context, sess *gateway.AuthSession, input settle.AcceptTradeInput) *settle.FlowError
	CancelTrade(ctx context.Context, sess *gateway.AuthSession, input settle.CancelTradeInput) (*m.Trade, *settle.FlowError)
}

type PurchaseLister interface {
	Purchases(ctx context.Context, sess *gateway.AuthSession) ([]m.Purchase, error)
}

type TokenPurchaser interface {
	PurchaseTokens(ctx context.Context, sess *gateway.AuthSession, input settle.PurchaseInput) (*m.Purchase, *settle.FlowError)
}

type MpesaService interface {
	AddMpesaPurchase(ctx context.Context, sess *gateway.AuthSession, req gateway.MpesaPurchaseReq) (string, error)
	ConfirmMpesa(ctx context.Context, sess *gateway.AuthSession) (*m.Purchase, error)
	CancelMpesa(ctx context.Context, sess *gateway.AuthSession) (string, error)
}

// TradeCacher keeps a local display copy of backend trade lists so the
// dashboard still renders when the backend is down.
type TradeCacher interface {
	CacheTrades(trades []m.Trade) error
	RetrieveTrades() ([]m.Trade, error)
}

type PurchaseCacher interface {
	CachePurchases(purchases []m.Purchase) error
	RetrievePurchases() ([]m.Purchase, error)
}

type DivergenceJournal interface {
	RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error)
	ResolveDivergence(id uint) error
}

type PowerWindow interface {
	Window() []power.Sample
	Latest() (power.Sample, bool)
}

type PowerHistory interface {
	RetrieveRecentPower(n int) ([]m.PowerSample, error)
}

// FeedRunner is started once a backend token exists; the power socket
// rejects unauthenticated dials. tokens is re-read on every reconnect so
// the feed always dials with the newest login's credential.
type FeedRunner interface {
	Run(ctx context.Context, tokens func() string) error
}
