package teletest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"
)

// Call is one Bot API request seen by API.
type Call struct {
	Method string
	Params map[string]any
}

// API is a fake Bot API behind an http.RoundTripper. Every method answers
// ok unless Fail was called for it.
type API struct {
	mu    sync.Mutex
	calls []Call
	fail  map[string]string
}

// NewAPI returns an API that accepts every call.
func NewAPI() *API {
	return &API{fail: make(map[string]string)}
}

// Client returns an http.Client routed to the fake.
func (a *API) Client() *http.Client {
	return &http.Client{Transport: a}
}

// Fail makes method answer ok:false with description.
func (a *API) Fail(method, description string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fail[method] = description
}

// RoundTrip implements http.RoundTripper.
func (a *API) RoundTrip(req *http.Request) (*http.Response, error) {
	method := path.Base(req.URL.Path)
	params := map[string]any{}
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		_ = req.Body.Close()
		_ = json.Unmarshal(raw, &params)
	}

	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: method, Params: params})
	desc, failing := a.fail[method]
	a.mu.Unlock()

	body := `{"ok":true,"result":true}`
	switch {
	case failing:
		raw, _ := json.Marshal(map[string]any{"ok": false, "error_code": 400, "description": desc})
		body = string(raw)
	case method == "getUpdates":
		// Keep the poll loop from spinning.
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(5 * time.Millisecond):
		}
		body = `{"ok":true,"result":[]}`
	case method == "sendMessage":
		body = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}, nil
}

// Calls returns the recorded requests for method, or all of them when
// method is empty.
func (a *API) Calls(method string) []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Call
	for _, c := range a.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the text of every sendMessage call in order.
func (a *API) Texts() []string {
	var out []string
	for _, c := range a.Calls("sendMessage") {
		s, _ := c.Params["text"].(string)
		out = append(out, s)
	}
	return out
}

// Markup decodes the reply_markup of a call, which telebot sends as an
// encoded JSON string.
func (c Call) Markup() *tele.ReplyMarkup {
	var raw []byte
	switch v := c.Params["reply_markup"].(type) {
	case string:
		raw = []byte(v)
	case nil:
		return nil
	default:
		raw, _ = json.Marshal(v)
	}
	var m tele.ReplyMarkup
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

// String returns a string param or "".
func (c Call) String(key string) string {
	s, _ := c.Params[key].(string)
	return s
}
