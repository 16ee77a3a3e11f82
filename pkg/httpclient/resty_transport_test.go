package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestExecutorAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Add("X-Multi", "one")
		w.Header().Add("X-Multi", "two")
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Query", r.URL.RawQuery)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.Header().Set("X-Token", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	exec := NewExecutor(WithOptions(Options{ConnectTimeout: 2 * time.Second, ReadTimeout: 2 * time.Second}))
	ctx := context.Background()
	headers := map[string]string{"X-Token": "abc", "Content-Type": "text/plain"}

	resp, err := exec.Get(ctx, srv.URL+"/items", headers, NewParams("a", "1", "b", "2"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := resp.Header("X-Query"); got != "a=1&b=2" {
		t.Fatalf("expected query a=1&b=2, got %q", got)
	}
	if resp.URL() != srv.URL+"/items?a=1&b=2" {
		t.Fatalf("unexpected url %q", resp.URL())
	}
	if got := resp.Header("X-Multi"); got != "one two" {
		t.Fatalf("expected joined header, got %q", got)
	}
	if got := resp.Header("X-Token"); got != "abc" {
		t.Fatalf("expected caller header forwarded, got %q", got)
	}
	if !resp.IsSuccess() || resp.StatusMessage() != "OK" {
		t.Fatalf("unexpected status %d %q", resp.StatusCode(), resp.StatusMessage())
	}

	resp, err = exec.Delete(ctx, srv.URL, nil, NewParams("id", "7"))
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if resp.Body() != "id=7" || resp.Header("X-Method") != http.MethodDelete {
		t.Fatalf("expected DELETE body echoed, got %q via %s", resp.Body(), resp.Header("X-Method"))
	}
	if resp.Header("X-Query") != "" {
		t.Fatalf("expected no query string, got %q", resp.Header("X-Query"))
	}

	resp, err = exec.PutJSON(ctx, srv.URL, headers, `{"a":1}`)
	if err != nil {
		t.Fatalf("PutJSON: %v", err)
	}
	if resp.Body() != `{"a":1}` {
		t.Fatalf("expected json echoed, got %q", resp.Body())
	}
	if got := resp.Header("X-Content-Type"); got != "application/json; charset=utf-8" {
		t.Fatalf("expected json content type, got %q", got)
	}
}

func TestExecutorEmptyGetQuery(t *testing.T) {
	var requestURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestURI = r.RequestURI
	}))
	defer srv.Close()

	resp, err := NewExecutor().Get(context.Background(), srv.URL+"/path", nil, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if requestURI != "/path?" {
		t.Fatalf("expected trailing '?', got %q", requestURI)
	}
	if resp.URL() != srv.URL+"/path?" {
		t.Fatalf("unexpected url %q", resp.URL())
	}
}

func TestExecutorReadsErrorStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewExecutor().PostJSON(context.Background(), srv.URL, nil, "{}")
	if err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound || resp.StatusMessage() != "Not Found" {
		t.Fatalf("unexpected status %d %q", resp.StatusCode(), resp.StatusMessage())
	}
	if resp.Body() != "nope\n" {
		t.Fatalf("expected error body, got %q", resp.Body())
	}
	if resp.IsSuccess() {
		t.Fatalf("404 must not be success")
	}
}

func TestExecutorReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	exec := NewExecutor(WithOptions(Options{ConnectTimeout: time.Second, ReadTimeout: 100 * time.Millisecond}))
	resp, err := exec.Get(context.Background(), srv.URL, nil, nil)
	if resp != nil {
		t.Fatalf("expected no response on timeout")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected read deadline in cause chain, got %v", err)
	}
}

func TestExecutorConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	resp, err := NewExecutor().Post(context.Background(), "http://"+addr, nil, NewParams("a", "1"))
	if resp != nil {
		t.Fatalf("expected no response")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestExecutorCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor().Get(ctx, srv.URL, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
}

func TestExecutorSuccessBodyReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	exec := NewExecutor(WithOptions(Options{ConnectTimeout: time.Second, ReadTimeout: 200 * time.Millisecond}))
	resp, err := exec.Get(context.Background(), srv.URL, nil, nil)
	if resp != nil {
		t.Fatalf("expected no response, got status=%d body=%q", resp.StatusCode(), resp.Body())
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("expected read deadline in cause chain, got %v", err)
	}
}

func TestExecutorTruncatedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short"))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	resp, err := NewExecutor().Post(context.Background(), srv.URL, nil, NewParams("a", "1"))
	if resp != nil {
		t.Fatalf("expected no response, got body=%q", resp.Body())
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}
