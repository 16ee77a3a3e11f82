package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultConnectTimeout bounds dialing, TLS handshake included.
	DefaultConnectTimeout = 20000 * time.Millisecond
	// DefaultReadTimeout bounds each individual read from the connection.
	DefaultReadTimeout = 20000 * time.Millisecond

	headerContentType = "Content-Type"
	jsonContentType   = "application/json; charset=utf-8"
	formContentType   = "application/x-www-form-urlencoded"
)

var errMissingStream = errors.New("response stream is not available")

// Options holds the per-exchange timeouts. Zero values fall back to the defaults.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func normalizeOptions(opts Options) Options {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return opts
}

// Executor issues one blocking exchange per call and normalizes its outcome into a *Response or
// a *ConnectionError. It holds no mutable state and is safe for concurrent use.
type Executor struct {
	opts      Options
	transport Transport
	log       Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithOptions sets the connect and read timeouts used by the default transport.
func WithOptions(opts Options) Option {
	return func(e *Executor) { e.opts = opts }
}

// WithTransport replaces the resty-backed transport.
func WithTransport(t Transport) Option {
	return func(e *Executor) { e.transport = t }
}

// WithLogger enables debug logging of each exchange.
func WithLogger(log Logger) Option {
	return func(e *Executor) { e.log = log }
}

// NewExecutor creates an Executor. Without WithTransport it uses a RestyTransport built from
// the configured timeouts.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	e.opts = normalizeOptions(e.opts)
	e.log = ensureLogger(e.log)
	if e.transport == nil {
		e.transport = NewRestyTransport(e.opts, e.log)
	}
	return e
}

// Options returns the effective timeouts.
func (e *Executor) Options() Options { return e.opts }

// Get appends the encoded params to url after a literal '?', even when params is empty.
func (e *Executor) Get(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error) {
	return e.exchange(ctx, GetRequest(url, headers, params))
}

func (e *Executor) Post(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error) {
	return e.exchange(ctx, FormRequest(http.MethodPost, url, headers, params))
}

func (e *Executor) PostJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error) {
	return e.exchange(ctx, JSONRequest(http.MethodPost, url, headers, json))
}

func (e *Executor) Put(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error) {
	return e.exchange(ctx, FormRequest(http.MethodPut, url, headers, params))
}

func (e *Executor) PutJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error) {
	return e.exchange(ctx, JSONRequest(http.MethodPut, url, headers, json))
}

// Delete sends the encoded params as the request body.
func (e *Executor) Delete(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error) {
	return e.exchange(ctx, FormRequest(http.MethodDelete, url, headers, params))
}

func (e *Executor) DeleteJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error) {
	return e.exchange(ctx, JSONRequest(http.MethodDelete, url, headers, json))
}

// GetRequest assembles a GET: params go to the query string after a literal '?', no body.
func GetRequest(url string, headers map[string]string, params Params) *WireRequest {
	return &WireRequest{
		Method: http.MethodGet,
		URL:    url + "?" + params.Encode(),
		Header: copyHeaders(headers),
	}
}

// FormRequest assembles a request whose body is the encoded params. A form Content-Type is
// added unless the caller supplied one.
func FormRequest(method, url string, headers map[string]string, params Params) *WireRequest {
	return &WireRequest{
		Method:  method,
		URL:     url,
		Header:  withDefaultHeader(headers, headerContentType, formContentType),
		HasBody: true,
		Body:    []byte(params.Encode()),
	}
}

// JSONRequest assembles a request carrying json verbatim, with the JSON Content-Type forced.
func JSONRequest(method, url string, headers map[string]string, json string) *WireRequest {
	return &WireRequest{
		Method:  method,
		URL:     url,
		Header:  withHeader(headers, headerContentType, jsonContentType),
		HasBody: true,
		Body:    []byte(json),
	}
}

// exchange runs the request through the transport and converts the outcome.
func (e *Executor) exchange(ctx context.Context, req *WireRequest) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	wire, err := e.transport.Exchange(ctx, req)
	if err != nil {
		e.log.DebugObj("http exchange failed", "exchange", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  err.Error(),
		})
		return nil, &ConnectionError{Method: req.Method, URL: req.URL, Err: err}
	}
	defer wire.Close()

	// A failed read of the success stream falls back to the error stream once; a failure
	// there is final.
	body, err := readStream(wire.Body)
	if err != nil {
		var fallbackErr error
		body, fallbackErr = readStream(wire.ErrorBody)
		if fallbackErr != nil {
			return nil, &ConnectionError{Method: req.Method, URL: req.URL, Err: errors.Join(err, fallbackErr)}
		}
	}

	url := wire.URL()
	if url == "" {
		url = req.URL
	}
	resp := NewResponse(url, wire.StatusCode(), wire.StatusMessage(), joinHeaders(wire.Header()), body)

	e.log.DebugObj("http exchange completed", "exchange", map[string]any{
		"method":     req.Method,
		"url":        url,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}

// readStream opens a body stream and reads it fully. A missing stream is an error.
func readStream(open func() (io.Reader, error)) (string, error) {
	r, err := open()
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", errMissingStream
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// joinHeaders flattens a multi-valued header, joining values with a single space.
func joinHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[k] = strings.Join(vals, " ")
	}
	return out
}

func copyHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	return out
}

// withHeader returns a copy of headers with name set to value, dropping any case variant.
func withHeader(headers map[string]string, name, value string) map[string]string {
	out := copyHeaders(headers)
	for k := range out {
		if strings.EqualFold(k, name) {
			delete(out, k)
		}
	}
	out[name] = value
	return out
}

// withDefaultHeader returns a copy of headers with name set only when the caller did not set it.
func withDefaultHeader(headers map[string]string, name, value string) map[string]string {
	out := copyHeaders(headers)
	for k := range out {
		if strings.EqualFold(k, name) {
			return out
		}
	}
	out[name] = value
	return out
}

var _ Client = (*Executor)(nil)
