package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records the request and replays a canned response or error.
type fakeTransport struct {
	got  *WireRequest
	resp *fakeWire
	err  error
}

func (f *fakeTransport) Exchange(_ context.Context, req *WireRequest) (WireResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeWire struct {
	url       string
	code      int
	message   string
	header    http.Header
	body      io.Reader
	bodyErr   error
	errBody   io.Reader
	errBodyFn func() (io.Reader, error)
	closed    bool
}

func (w *fakeWire) URL() string           { return w.url }
func (w *fakeWire) StatusCode() int       { return w.code }
func (w *fakeWire) StatusMessage() string { return w.message }
func (w *fakeWire) Header() http.Header   { return w.header }
func (w *fakeWire) Close() error          { w.closed = true; return nil }

func (w *fakeWire) Body() (io.Reader, error) {
	if w.bodyErr != nil {
		return nil, w.bodyErr
	}
	return w.body, nil
}

func (w *fakeWire) ErrorBody() (io.Reader, error) {
	if w.errBodyFn != nil {
		return w.errBodyFn()
	}
	return w.errBody, nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func okWire(body string) *fakeWire {
	return &fakeWire{code: 200, message: "OK", header: http.Header{}, body: bytes.NewBufferString(body)}
}

func TestGetAppendsQueryInOrder(t *testing.T) {
	ft := &fakeTransport{resp: okWire("hello")}
	exec := NewExecutor(WithTransport(ft))

	resp, err := exec.Get(context.Background(), "http://example.com/items", nil, NewParams("b", "2", "a", "1"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, ft.got.Method)
	assert.Equal(t, "http://example.com/items?b=2&a=1", ft.got.URL)
	assert.False(t, ft.got.HasBody)
	assert.Nil(t, ft.got.Body)
	assert.Equal(t, "http://example.com/items?b=2&a=1", resp.URL())
	assert.Equal(t, "hello", resp.Body())
}

func TestGetWithoutParamsKeepsTrailingQuestionMark(t *testing.T) {
	ft := &fakeTransport{resp: okWire("")}
	exec := NewExecutor(WithTransport(ft))

	resp, err := exec.Get(context.Background(), "http://example.com/items", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/items?", ft.got.URL)
	assert.Equal(t, "http://example.com/items?", resp.URL())
}

func TestGetDoesNotEscapeParams(t *testing.T) {
	ft := &fakeTransport{resp: okWire("")}
	exec := NewExecutor(WithTransport(ft))

	_, err := exec.Get(context.Background(), "http://example.com", nil, NewParams("q", "a b&c"))
	require.NoError(t, err)
	assert.Equal(t, "http://example.com?q=a b&c", ft.got.URL)
}

func TestFormVariantsSendEncodedBody(t *testing.T) {
	params := NewParams("a", "1", "b", "2")
	cases := []struct {
		method string
		call   func(*Executor) (*Response, error)
	}{
		{http.MethodPost, func(e *Executor) (*Response, error) {
			return e.Post(context.Background(), "http://example.com/x", nil, params)
		}},
		{http.MethodPut, func(e *Executor) (*Response, error) {
			return e.Put(context.Background(), "http://example.com/x", nil, params)
		}},
		{http.MethodDelete, func(e *Executor) (*Response, error) {
			return e.Delete(context.Background(), "http://example.com/x", nil, params)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			ft := &fakeTransport{resp: okWire("")}
			_, err := tc.call(NewExecutor(WithTransport(ft)))
			require.NoError(t, err)

			assert.Equal(t, tc.method, ft.got.Method)
			assert.Equal(t, "http://example.com/x", ft.got.URL)
			assert.True(t, ft.got.HasBody)
			assert.Equal(t, "a=1&b=2", string(ft.got.Body))
			assert.Equal(t, formContentType, ft.got.Header[headerContentType])
		})
	}
}

func TestFormVariantKeepsCallerContentType(t *testing.T) {
	ft := &fakeTransport{resp: okWire("")}
	exec := NewExecutor(WithTransport(ft))

	_, err := exec.Post(context.Background(), "http://example.com", map[string]string{"content-type": "text/plain"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ft.got.Header["content-type"])
	assert.NotContains(t, ft.got.Header, headerContentType)
	assert.Equal(t, "", string(ft.got.Body))
}

func TestJSONVariantsOverrideContentType(t *testing.T) {
	headers := map[string]string{"content-type": "text/xml", "X-Trace": "t1"}
	cases := []struct {
		method string
		call   func(*Executor) (*Response, error)
	}{
		{http.MethodPost, func(e *Executor) (*Response, error) {
			return e.PostJSON(context.Background(), "http://example.com", headers, `{"a":1}`)
		}},
		{http.MethodPut, func(e *Executor) (*Response, error) {
			return e.PutJSON(context.Background(), "http://example.com", headers, `{"a":1}`)
		}},
		{http.MethodDelete, func(e *Executor) (*Response, error) {
			return e.DeleteJSON(context.Background(), "http://example.com", headers, `{"a":1}`)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			ft := &fakeTransport{resp: okWire("")}
			_, err := tc.call(NewExecutor(WithTransport(ft)))
			require.NoError(t, err)

			assert.Equal(t, tc.method, ft.got.Method)
			assert.Equal(t, `{"a":1}`, string(ft.got.Body))
			assert.Equal(t, map[string]string{
				"Content-Type": "application/json; charset=utf-8",
				"X-Trace":      "t1",
			}, ft.got.Header)
		})
	}

	// caller map is untouched
	assert.Equal(t, map[string]string{"content-type": "text/xml", "X-Trace": "t1"}, headers)
}

func TestErrorStreamFallback(t *testing.T) {
	ft := &fakeTransport{resp: &fakeWire{
		code:    404,
		message: "Not Found",
		header:  http.Header{},
		bodyErr: errors.New("no success stream"),
		errBody: bytes.NewBufferString("missing"),
	}}
	exec := NewExecutor(WithTransport(ft))

	resp, err := exec.Get(context.Background(), "http://example.com/nope", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())
	assert.Equal(t, "Not Found", resp.StatusMessage())
	assert.Equal(t, "missing", resp.Body())
	assert.False(t, resp.IsSuccess())
	assert.True(t, ft.resp.closed)
}

func TestSuccessStreamReadFailureFallsBack(t *testing.T) {
	ft := &fakeTransport{resp: &fakeWire{
		code:    500,
		header:  http.Header{},
		body:    failingReader{err: io.ErrUnexpectedEOF},
		errBody: bytes.NewBufferString("boom"),
	}}
	resp, err := NewExecutor(WithTransport(ft)).Post(context.Background(), "http://example.com", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "boom", resp.Body())
}

func TestErrorStreamFailureIsConnectionError(t *testing.T) {
	cause := errors.New("reset by peer")
	ft := &fakeTransport{resp: &fakeWire{
		code:      502,
		header:    http.Header{},
		bodyErr:   errors.New("no success stream"),
		errBodyFn: func() (io.Reader, error) { return failingReader{err: cause}, nil },
	}}

	resp, err := NewExecutor(WithTransport(ft)).Get(context.Background(), "http://example.com", nil, nil)
	assert.Nil(t, resp)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, cause)
	assert.True(t, ft.resp.closed)
}

func TestTransportFailureIsConnectionError(t *testing.T) {
	ft := &fakeTransport{err: context.DeadlineExceeded}

	resp, err := NewExecutor(WithTransport(ft)).PutJSON(context.Background(), "http://example.com/x", nil, "{}")
	assert.Nil(t, resp)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, http.MethodPut, connErr.Method)
	assert.Equal(t, "http://example.com/x", connErr.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMultiValuedHeadersJoinedWithSpace(t *testing.T) {
	w := okWire("")
	w.header = http.Header{"Set-Cookie": {"a=1;", "b=2;"}, "X-One": {"v"}}
	ft := &fakeTransport{resp: w}

	resp, err := NewExecutor(WithTransport(ft)).Get(context.Background(), "http://example.com", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "a=1; b=2;", resp.Header("set-cookie"))
	assert.Equal(t, "v", resp.Headers()["X-One"])
}

func TestNewExecutorDefaultsTimeouts(t *testing.T) {
	exec := NewExecutor()
	assert.Equal(t, DefaultConnectTimeout, exec.Options().ConnectTimeout)
	assert.Equal(t, DefaultReadTimeout, exec.Options().ReadTimeout)
	assert.Equal(t, int64(20000), DefaultConnectTimeout.Milliseconds())
	assert.Equal(t, int64(20000), DefaultReadTimeout.Milliseconds())
}

func TestSuccessStreamFailureWithoutErrorStreamIsConnectionError(t *testing.T) {
	ft := &fakeTransport{resp: &fakeWire{
		code:   200,
		header: http.Header{},
		body:   failingReader{err: io.ErrUnexpectedEOF},
	}}

	resp, err := NewExecutor(WithTransport(ft)).Get(context.Background(), "http://example.com", nil, nil)
	assert.Nil(t, resp)

	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, ft.resp.closed)
}
