// Package apiclient is the single point through which the application talks
// to the REST API. It injects the session token, normalizes failures and
// notifies the user exactly once per failed call.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nape-ntsoane/trax/internal/apierr"
	"github.com/nape-ntsoane/trax/internal/models"
	"github.com/nape-ntsoane/trax/internal/notify"
	"github.com/nape-ntsoane/trax/internal/session"
)

const (
	maxBodyBytes = 4 << 20

	// MalformedMessage is shown when a success response cannot be used.
	MalformedMessage = "Unexpected response from the server."
)

// Request describes one call. Body is sent as JSON; Form, when set, is sent
// url-encoded instead.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   url.Values
	Header http.Header
}

type Client struct {
	baseURL  string
	http     *http.Client
	session  *session.Session
	notifier notify.Notifier
	logger   *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the traced default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger enables a log line per failed call.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, sess *session.Session, notifier notify.Notifier, opts ...Option) *Client {
	if notifier == nil {
		notifier = notify.New("log")
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		session:  sess,
		notifier: notifier,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) Notifier() notify.Notifier {
	return c.notifier
}

// URL resolves a relative endpoint against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do performs req and decodes a JSON success body into out (which may be
// nil). A 204 response leaves out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	_, err := c.do(ctx, req, out)
	return err
}

// Fetch performs req and returns the decoded body, or nil for 204 No Content.
func Fetch[T any](ctx context.Context, c *Client, req Request) (*T, error) {
	var out T
	status, err := c.do(ctx, req, &out)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, req Request, out any) (int, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return 0, c.fail(method, req.Path, invalidError(err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return 0, c.fail(method, req.Path, &Error{Kind: KindInvalid, Message: err.Error(), Err: err})
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}
	if c.session != nil {
		c.session.Authorize(httpReq)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, c.fail(method, req.Path, &Error{Kind: KindNetwork, Message: apierr.NetworkMessage, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, c.fail(method, req.Path, statusError(resp))
	}
	if resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, c.fail(method, req.Path, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: apierr.NetworkMessage, Err: err})
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, c.fail(method, req.Path, &Error{Kind: KindMalformed, Status: resp.StatusCode, Message: MalformedMessage, Err: err})
	}
	return resp.StatusCode, nil
}

// Report notifies a failure found by a caller after a successful call, such as
// a response missing a required field, and returns it marked as notified.
func (c *Client) Report(method, path string, apiErr *Error) *Error {
	return c.fail(method, path, apiErr)
}

// fail is the only place that notifies the user.
func (c *Client) fail(method, path string, apiErr *Error) *Error {
	apiErr.Notified = true
	c.notifier.Notify(notify.LevelError, apiErr.Message)
	if c.logger != nil {
		c.logger.Printf("api call failed method=%s path=%s kind=%s status=%d message=%q", method, path, apiErr.Kind, apiErr.Status, apiErr.Message)
	}
	return apiErr
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Form != nil {
		if req.Body != nil {
			return nil, "", errors.New("request has both a JSON body and form fields")
		}
		return strings.NewReader(req.Form.Encode()), "application/x-www-form-urlencoded", nil
	}
	if req.Body == nil {
		return nil, "application/json", nil
	}
	if err := models.Validate(req.Body); err != nil {
		return nil, "", err
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func invalidError(err error) *Error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: KindInvalid, Message: verr.Error(), Detail: verr.Issues, Err: err}
	}
	return &Error{Kind: KindInvalid, Message: err.Error(), Err: err}
}

// statusError reads the {detail} body of a failed response. Unreadable
// bodies fall back to a generic detail.
func statusError(resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	var payload struct {
		Detail any `json:"detail"`
	}
	kind := KindHTTP
	var detail any = apierr.DefaultDetail
	if err := json.Unmarshal(raw, &payload); err != nil {
		kind = KindMalformed
	} else if payload.Detail != nil && payload.Detail != "" {
		detail = payload.Detail
	}
	return &Error{
		Kind:    kind,
		Status:  resp.StatusCode,
		Message: apierr.Normalize(detail),
		Detail:  detail,
	}
}
