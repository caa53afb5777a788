package solaris

import (
	"context"
	"fmt"

	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/power"
)

type StorageMock struct {
	samples     []m.PowerSample
	divergences []m.Divergence
	err         error
}

func (mock *StorageMock) SavePowerSample(sample *m.PowerSample) error {
	if mock.err != nil {
		return mock.err
	}
	mock.samples = append(mock.samples, *sample)
	return nil
}

func (mock *StorageMock) RetrieveDivergences(unresolvedOnly bool) ([]m.Divergence, error) {
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

type PowerSourceMock struct {
	sample power.Sample
	ok     bool
}

func (mock *PowerSourceMock) Latest() (power.Sample, bool) {
	return mock.sample, mock.ok
}

type SessionSourceMock struct {
	sessions []*gateway.AuthSession
}

func (mock *SessionSourceMock) Sessions() []*gateway.AuthSession {
	return mock.sessions
}

type PurchaseServiceMock struct {
	purchases []m.Purchase
	confirmed int
	err       error
}

func (mock *PurchaseServiceMock) Purchases(ctx context.Context, sess *gateway.AuthSession) ([]m.Purchase, error) {
	fmt.Println("Purchases Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.purchases, nil
}

func (mock *PurchaseServiceMock) ConfirmMpesa(ctx context.Context, sess *gateway.AuthSession) (*m.Purchase, error) {
	fmt.Println("ConfirmMpesa Called")

	mock.confirmed++
	return &m.Purchase{Status: m.PurchaseProcessing}, nil
}
