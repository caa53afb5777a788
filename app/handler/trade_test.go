package handler

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/trevor-gituru/solaris-conexus/app/middleware"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	m "github.com/trevor-gituru/solaris-conexus/internal/model"
	"github.com/trevor-gituru/solaris-conexus/settle"
)

func TestTradeHandler(t *testing.T) {

	app := fiber.New()
	middleware.SetupMiddleware(app)

	listerMock := &TradeListerMock{
		user: []m.Trade{
			{ID: 7, TxHash: "0xabc", SctOffered: 10, StrkPrice: 2, Status: m.TradePending},
		},
	}
	settlerMock := &TradeSettlerMock{
		trade: &m.Trade{ID: 7, TxHash: "0xabc", SctOffered: 10, StrkPrice: 2, Status: m.TradePending},
	}
	cacheMock := &TradeCacherMock{}

	h := NewTradeHandler(listerMock, settlerMock, cacheMock)
	h.InitRoute(app)

	t.Run("user trades refresh the cache", func(t *testing.T) {
		var resp []m.Trade
		err := sendReqeust(app, "/trades/user", "GET", nil, &resp)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(resp))
		assert.Equal(t, uint(7), resp[0].ID)
		assert.Equal(t, 1, len(cacheMock.cached))
	})

	t.Run("cache serves when backend unreachable", func(t *testing.T) {
		listerMock.err = gateway.ErrNetworkUnreachable
		defer func() { listerMock.err = nil }()

		var resp []m.Trade
		err := sendReqeust(app, "/trades/user", "GET", nil, &resp)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(resp))
		assert.Equal(t, "0xabc", resp[0].TxHash)
	})

	t.Run("available trades never cached", func(t *testing.T) {
		listerMock.available = []m.Trade{{ID: 9, Status: m.TradePending}}
		before := len(cacheMock.cached)

		var resp []m.Trade
		err := sendReqeust(app, "/trades/available", "GET", nil, &resp)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(resp))
		assert.Equal(t, before, len(cacheMock.cached))
	})

	t.Run("create trade passes raw amounts through", func(t *testing.T) {
		param := CreateTradeParam{
			SctOffered: "10",
			StrkPrice:  "2",
		}
		var resp m.Trade
		err := sendReqeust(app, "/trades/create", "POST", param, &resp)
		assert.NoError(t, err)
		assert.Equal(t, uint(7), resp.ID)
		assert.Equal(t, m.TradePending, resp.Status)
		assert.Equal(t, 1, len(settlerMock.created))
		assert.Equal(t, "10", settlerMock.created[0].SctOffered)
		assert.Equal(t, "2", settlerMock.created[0].StrkPrice)
	})

	t.Run("create trade rejects malformed amount", func(t *testing.T) {
		param := CreateTradeParam{
			SctOffered: "ten",
			StrkPrice:  "2",
		}
		err := sendReqeust(app, "/trades/create", "POST", param, nil)
		assert.Error(t, err)
		assert.Equal(t, 1, len(settlerMock.created))
	})

	t.Run("divergence surfaces the tx hash", func(t *testing.T) {
		settlerMock.ferr = &settle.FlowError{
			Flow:   settle.FlowTradeAccept,
			Step:   settle.StepNotifyingBackend,
			TxHash: "0xdeadbeef",
			Err:    errors.New("trade already accepted"),
		}
		defer func() { settlerMock.ferr = nil }()

		param := AcceptTradeParam{
			TradeID:    7,
			TxHash:     "0xabc",
			SctOffered: "10",
			StrkPrice:  "2",
		}
		body, _ := jsonBody(param)
		req := httptest.NewRequest("POST", "/trades/accept", body)
		req.Header.Set("Content-Type", "application/json")

		res, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, res.StatusCode)

		var resp divergenceResponse
		readJSON(t, res, &resp)
		assert.Equal(t, "0xdeadbeef", resp.TxHash)
		assert.Equal(t, settle.FlowTradeAccept, resp.Flow)
		assert.True(t, strings.Contains(resp.Message, "already submitted"))
	})

	t.Run("cancel trade returns canonical row", func(t *testing.T) {
		param := CancelTradeParam{
			TradeID: 7,
			TxHash:  "0xabc",
		}
		var resp m.Trade
		err := sendReqeust(app, "/trades/cancel", "POST", param, &resp)
		assert.NoError(t, err)
		assert.Equal(t, uint(7), resp.ID)
	})
}
