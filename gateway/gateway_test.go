package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSession() *AuthSession {
	return &AuthSession{
		Token:  "backend-token",
		Email:  "jane@estate.co.ke",
		Expiry: time.Now().Add(time.Hour),
	}
}

func TestCallEnvelope(t *testing.T) {

	t.Run("success envelope unwraps data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer backend-token", r.Header.Get("Authorization"))
			assert.Equal(t, "/resident/trade/user", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": []map[string]any{
					{"id": 7, "sct_offered": 10.0, "strk_price": 2.0, "status": "pending", "tx_hash": "0xabc"},
				},
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		trades, err := c.UserTrades(context.Background(), testSession())
		assert.NoError(t, err)
		assert.Equal(t, 1, len(trades))
		assert.Equal(t, uint(7), trades[0].ID)
		assert.Equal(t, "0xabc", trades[0].TxHash)
	})

	t.Run("success false carries the detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"detail":  "trade already accepted",
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		err := c.AcceptTrade(context.Background(), testSession(), AcceptTradeReq{TradeContractID: 7})

		var rejected *ServerRejectedError
		assert.ErrorAs(t, err, &rejected)
		assert.Equal(t, "trade already accepted", rejected.Detail)
	})

	t.Run("http error with enveloped detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"detail": "database down"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Purchases(context.Background(), testSession())

		var rejected *ServerRejectedError
		assert.ErrorAs(t, err, &rejected)
		assert.Equal(t, http.StatusInternalServerError, rejected.Status)
		assert.Equal(t, "database down", rejected.Detail)
	})

	t.Run("401 maps to auth expired", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"detail": "Could not validate credentials"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.UserTrades(context.Background(), testSession())
		assert.ErrorIs(t, err, ErrAuthExpired)
	})

	t.Run("missing success field is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.UserTrades(context.Background(), testSession())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("non-json body is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway timeout</html>"))
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.UserTrades(context.Background(), testSession())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("nil session never sends", func(t *testing.T) {
		c := NewClient("http://localhost:0")
		_, err := c.UserTrades(context.Background(), nil)
		assert.ErrorIs(t, err, ErrAuthMissing)
	})

	t.Run("expired session never sends", func(t *testing.T) {
		sess := testSession()
		sess.Expiry = time.Now().Add(-time.Minute)

		c := NewClient("http://localhost:0")
		_, err := c.UserTrades(context.Background(), sess)
		assert.ErrorIs(t, err, ErrAuthExpired)
	})

	t.Run("dead endpoint is network unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := NewClient(srv.URL)
		_, err := c.UserTrades(context.Background(), testSession())
		assert.ErrorIs(t, err, ErrNetworkUnreachable)
	})
}

func TestCreateTradePayload(t *testing.T) {

	var got map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 7, "status": "pending", "tx_hash": "0xabc"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	trade, err := c.CreateTrade(context.Background(), testSession(), CreateTradeReq{
		SctOffered: json.Number("10"),
		StrkPrice:  json.Number("2"),
		TxHash:     "0xabc",
	})
	assert.NoError(t, err)
	assert.Equal(t, uint(7), trade.ID)

	// the backend must see the raw digits, not a float rendering
	assert.Equal(t, "10", string(got["sct_offered"]))
	assert.Equal(t, "2", string(got["strk_price"]))
	assert.Equal(t, `"0xabc"`, string(got["tx_hash"]))
}

func TestLogin(t *testing.T) {

	t.Run("flat token response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)

			var creds map[string]string
			json.NewDecoder(r.Body).Decode(&creds)
			assert.Equal(t, 2, len(creds))

			json.NewEncoder(w).Encode(map[string]string{
				"access_token": "backend-token",
				"token_type":   "bearer",
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		token, err := c.Login(context.Background(), Credentials{Email: "jane@estate.co.ke", Password: "pw"})
		assert.NoError(t, err)
		assert.Equal(t, "backend-token", token)
	})

	t.Run("rejection carries detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid credentials"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Login(context.Background(), Credentials{Email: "jane@estate.co.ke", Password: "bad"})

		var rejected *ServerRejectedError
		assert.ErrorAs(t, err, &rejected)
		assert.Equal(t, "Invalid credentials", rejected.Detail)
	})

	t.Run("empty token is malformed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"token_type": "bearer"})
		}))
		defer srv.Close()

		c := NewClient(srv.URL)
		_, err := c.Login(context.Background(), Credentials{Email: "jane@estate.co.ke", Password: "pw"})
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}

func TestMpesaMessages(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resident/token_purchase/add_mpesa":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Purchase processing"})
		case "/resident/token_purchase/cancel_mpesa":
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Purchase cancelled"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	msg, err := c.AddMpesaPurchase(context.Background(), testSession(), MpesaPurchaseReq{AmountSct: "50", StrkUsed: "0.05"})
	assert.NoError(t, err)
	assert.Equal(t, "Purchase processing", msg)

	msg, err = c.CancelMpesa(context.Background(), testSession())
	assert.NoError(t, err)
	assert.Equal(t, "Purchase cancelled", msg)
}

func TestSessionRegistry(t *testing.T) {

	reg := NewSessionRegistry()
	id := NewSessionID()
	assert.Equal(t, 32, len(id))

	reg.Put(id, testSession())

	sess, ok := reg.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "jane@estate.co.ke", sess.Email)

	t.Run("expired sessions drop on read", func(t *testing.T) {
		expired := testSession()
		expired.Expiry = time.Now().Add(-time.Minute)
		reg.Put("old", expired)

		_, ok := reg.Get("old")
		assert.False(t, ok)
		_, ok = reg.Get("old")
		assert.False(t, ok)
	})

	t.Run("sessions lists only live entries", func(t *testing.T) {
		live := reg.Sessions()
		assert.Equal(t, 1, len(live))
		assert.Equal(t, "jane@estate.co.ke", live[0].Email)
	})

	reg.Delete(id)
	_, ok = reg.Get(id)
	assert.False(t, ok)
	assert.Empty(t, reg.Sessions())

	assert.NotEqual(t, id, NewSessionID())
}
