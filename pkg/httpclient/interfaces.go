package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Client abstracts the blocking request operations so callers can inject mocks.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error)
	Post(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error)
	PostJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error)
	Put(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error)
	PutJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error)
	Delete(ctx context.Context, url string, headers map[string]string, params Params) (*Response, error)
	DeleteJSON(ctx context.Context, url string, headers map[string]string, json string) (*Response, error)
}

// Transport performs exactly one wire exchange.
type Transport interface {
	Exchange(ctx context.Context, req *WireRequest) (WireResponse, error)
}

// WireRequest is the fully assembled request handed to a Transport.
type WireRequest struct {
	Method string
	URL    string
	Header map[string]string
	// HasBody is false for GET; Body may be empty when HasBody is true.
	HasBody bool
	Body    []byte
}

// HTTPRequest converts the wire request into a net/http request, e.g. for rendering.
func (r *WireRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.HasBody {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}
	return req, nil
}

// WireResponse is what a Transport hands back once the status line and headers are read.
// Body opens the success stream and ErrorBody the error stream; which one carries content
// depends on the transport and the status code.
type WireResponse interface {
	URL() string
	StatusCode() int
	StatusMessage() string
	Header() http.Header
	Body() (io.Reader, error)
	ErrorBody() (io.Reader, error)
	Close() error
}

// Logger defines the logging surface the executor relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
