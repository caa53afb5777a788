package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func sendReqeust(app *fiber.App, path, method string, param any, resp any) error {

	var body io.Reader
	if param != nil {
		b, err := json.Marshal(param)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req, -1)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", res.StatusCode, string(raw))
	}

	if resp != nil {
		return json.Unmarshal(raw, resp)
	}
	return nil
}

func jsonBody(param any) (io.Reader, error) {
	b, err := json.Marshal(param)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func readJSON(t *testing.T, res *http.Response, out any) {
	t.Helper()

	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal %s: %v", string(raw), err)
	}
}
