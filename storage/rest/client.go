// Package restgw is the gateway to a managed backend: PostgREST tables and procedures under
// /rest/v1 and a GoTrue-style auth service under /auth/v1.
package restgw

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/ministerio-jovenes/asistencia/core"
)

const (
	restPrefix = "/rest/v1"
	authPrefix = "/auth/v1"
)

// Error is a non-2xx answer from the backend, carrying its message.
type Error struct {
	Status  int
	Message string
}

func (err *Error) Error() string {
	return fmt.Sprintf("gateway: %d %s", err.Status, err.Message)
}

// StatusOf returns the status of a gateway Error, or 0.
func StatusOf(err error) int {
	if gwErr, ok := errors.Cause(err).(*Error); ok {
		return gwErr.Status
	}
	return 0
}

// Client sends the requests of every repository. The access token of the signed-in operator,
// when set, replaces the anon key in the Authorization header.
type Client struct {
	baseURL string
	anonKey string
	http    *rest.Client

	mu    sync.RWMutex
	token string
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Gateway.URL, "/"),
		anonKey: conf.Gateway.AnonKey,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Gateway.Timeout}},
	}
}

func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token != "" {
		return c.token
	}
	return c.anonKey
}

type call struct {
	method  rest.Method
	path    string
	query   map[string]string
	headers map[string]string
	body    interface{}
	token   string // overrides the client token
}

// do sends `cl` and decodes the JSON answer into `out` when not nil.
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	req := rest.Request{
		Method:      cl.method,
		BaseURL:     c.baseURL + cl.path,
		QueryParams: cl.query,
		Headers: map[string]string{
			"apikey":        c.anonKey,
			"Authorization": "Bearer " + c.bearer(),
			"Accept":        "application/json",
		},
	}
	if cl.token != "" {
		req.Headers["Authorization"] = "Bearer " + cl.token
	}
	for k, v := range cl.headers {
		req.Headers[k] = v
	}
	if cl.body != nil {
		body, err := json.Marshal(cl.body)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", cl.method, cl.path)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return parseError(res)
	}
	if out == nil || strings.TrimSpace(res.Body) == "" {
		return nil
	}
	return errors.Wrapf(json.Unmarshal([]byte(res.Body), out), "decoding %s %s", cl.method, cl.path)
}

func parseError(res *rest.Response) error {
	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	_ = json.Unmarshal([]byte(res.Body), &body)

	msg := http.StatusText(res.StatusCode)
	for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
		if m != "" {
			msg = m
			break
		}
	}
	return &Error{Status: res.StatusCode, Message: msg}
}

func eq(v interface{}) string {
	return fmt.Sprintf("eq.%v", v)
}

// order renders an `order=` value, eg: "name.asc,id.asc".
func order(ordering []core.DBOrdering) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.PostgRESTString())
	}
	return strings.Join(orderList, ",")
}
