package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/httpcall/internal/domain"
	"github.com/samvad-hq/httpcall/internal/logger"
	"github.com/samvad-hq/httpcall/internal/requestfile"
	"github.com/samvad-hq/httpcall/internal/storage"
	"github.com/samvad-hq/httpcall/pkg/httpclient"
)

// Runner dispatches request definitions to the matching client operation and records each
// completed exchange in the history store.
type Runner struct {
	client httpclient.Client
	store  storage.Store
	log    logger.Logger
}

// NewRunner wires a runner. A nil store disables history and a nil logger discards logs.
func NewRunner(client httpclient.Client, store storage.Store, log logger.Logger) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("http client must not be nil")
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Runner{client: client, store: store, log: log}, nil
}

// Run validates def, performs the exchange, and records it. Connection errors are returned
// unchanged and not recorded.
func (r *Runner) Run(ctx context.Context, def requestfile.Definition) (*httpclient.Response, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	if err := requestfile.Validate(def); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	start := time.Now()
	resp, err := r.dispatch(ctx, def)
	elapsed := time.Since(start)
	if err != nil {
		r.log.ErrorObj("request failed", "error", err)
		return nil, err
	}

	ex := domain.Exchange{
		ID:         uuid.NewString(),
		Method:     def.Method,
		URL:        resp.URL(),
		StatusCode: resp.StatusCode(),
		Success:    resp.IsSuccess(),
		DurationMS: elapsed.Milliseconds(),
		At:         start.UTC(),
	}
	r.log.InfoObj("request completed", "exchange", ex)
	if err := r.store.Record(ex); err != nil {
		r.log.WarnObj("history record failed", "error", err)
	}
	return resp, nil
}

func (r *Runner) dispatch(ctx context.Context, def requestfile.Definition) (*httpclient.Response, error) {
	switch {
	case def.Method == http.MethodGet:
		return r.client.Get(ctx, def.URL, def.Headers, def.Params)
	case def.Method == http.MethodPost && def.HasJSON():
		return r.client.PostJSON(ctx, def.URL, def.Headers, def.JSON.Text)
	case def.Method == http.MethodPost:
		return r.client.Post(ctx, def.URL, def.Headers, def.Params)
	case def.Method == http.MethodPut && def.HasJSON():
		return r.client.PutJSON(ctx, def.URL, def.Headers, def.JSON.Text)
	case def.Method == http.MethodPut:
		return r.client.Put(ctx, def.URL, def.Headers, def.Params)
	case def.Method == http.MethodDelete && def.HasJSON():
		return r.client.DeleteJSON(ctx, def.URL, def.Headers, def.JSON.Text)
	case def.Method == http.MethodDelete:
		return r.client.Delete(ctx, def.URL, def.Headers, def.Params)
	default:
		return nil, fmt.Errorf("unsupported method %q", def.Method)
	}
}

// History returns the most recent recorded exchanges.
func (r *Runner) History(limit int) ([]domain.Exchange, error) {
	if r == nil || r.store == nil {
		return nil, nil
	}
	return r.store.Recent(limit)
}

// Close releases the history store.
func (r *Runner) Close() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}

// Prepare assembles the wire request Run would send for def.
func Prepare(def requestfile.Definition) (*httpclient.WireRequest, error) {
	if err := requestfile.Validate(def); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	switch {
	case def.Method == http.MethodGet:
		return httpclient.GetRequest(def.URL, def.Headers, def.Params), nil
	case def.HasJSON():
		return httpclient.JSONRequest(def.Method, def.URL, def.Headers, def.JSON.Text), nil
	default:
		return httpclient.FormRequest(def.Method, def.URL, def.Headers, def.Params), nil
	}
}
