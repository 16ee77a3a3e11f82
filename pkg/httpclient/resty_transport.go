package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// errNoSuccessStream is returned by the success stream opener when the status routed the
// content to the error stream.
var errNoSuccessStream = errors.New("response content is on the error stream")

// errNoErrorStream is returned by the error stream opener when the status kept the content on
// the success stream.
var errNoErrorStream = errors.New("response has no error stream")

// RestyTransport adapts resty.Client to the Transport interface. Each exchange uses its own
// connection, which is closed when the response is closed.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a RestyTransport using the given connect and read timeouts.
func NewRestyTransport(opts Options, log Logger) *RestyTransport {
	return &RestyTransport{client: newRestyBaseClient(normalizeOptions(opts), ensureLogger(log))}
}

// newRestyBaseClient creates a resty.Client without cookie jar, overall timeout, or connection reuse.
func newRestyBaseClient(opts Options, log Logger) *resty.Client {
	c := resty.New()
	c.SetTransport(newHTTPTransport(opts))
	c.SetCookieJar(nil)
	c.SetDoNotParseResponse(true)
	c.SetLogger(restyLogger{log: log})
	return c
}

func newHTTPTransport(opts Options) *http.Transport {
	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &readTimeoutConn{Conn: conn, timeout: opts.ReadTimeout}, nil
		},
		TLSHandshakeTimeout: opts.ConnectTimeout,
		DisableKeepAlives:   true,
		DisableCompression:  true,
	}
}

// readTimeoutConn arms a fresh read deadline before every Read.
type readTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *readTimeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

// Exchange performs the request and returns once the status line and headers are read.
func (t *RestyTransport) Exchange(ctx context.Context, req *WireRequest) (WireResponse, error) {
	r := t.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		r.SetHeaders(req.Header)
	}
	if req.HasBody {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			resp.RawBody().Close()
		}
		return nil, err
	}
	return &restyWireResponse{resp: resp}, nil
}

// restyWireResponse adapts resty.Response to the WireResponse interface. Statuses of 400 and
// above expose their content only through ErrorBody.
type restyWireResponse struct {
	resp *resty.Response
}

func (r *restyWireResponse) URL() string {
	if raw := r.resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.String()
	}
	return ""
}

func (r *restyWireResponse) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyWireResponse) Header() http.Header { return r.resp.Header() }

// StatusMessage strips the numeric code from the status line, "404 Not Found" -> "Not Found".
func (r *restyWireResponse) StatusMessage() string {
	status := r.resp.Status()
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(r.resp.StatusCode())))
}

func (r *restyWireResponse) Body() (io.Reader, error) {
	if r.resp.StatusCode() >= http.StatusBadRequest {
		return nil, errNoSuccessStream
	}
	return r.resp.RawBody(), nil
}

func (r *restyWireResponse) ErrorBody() (io.Reader, error) {
	if r.resp.StatusCode() < http.StatusBadRequest {
		return nil, errNoErrorStream
	}
	return r.resp.RawBody(), nil
}

func (r *restyWireResponse) Close() error {
	if body := r.resp.RawBody(); body != nil {
		return body.Close()
	}
	return nil
}

// restyLogger routes resty's internal messages to the executor logger.
type restyLogger struct {
	log Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.DebugObj("resty error", "detail", fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.DebugObj("resty warning", "detail", fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.DebugObj("resty debug", "detail", fmt.Sprintf(format, v...))
}
