package httpclient

import "strings"

// Response is the immutable outcome of one completed exchange. A 4xx or 5xx status is still a
// Response; only transport failures produce a *ConnectionError instead.
type Response struct {
	url           string
	statusCode    int
	statusMessage string
	headers       map[string]string
	body          string
}

// NewResponse builds a Response, copying headers so later changes to the map are not observed.
func NewResponse(url string, statusCode int, statusMessage string, headers map[string]string, body string) *Response {
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	return &Response{
		url:           url,
		statusCode:    statusCode,
		statusMessage: statusMessage,
		headers:       copied,
		body:          body,
	}
}

// URL is the URL the exchange was performed against, query string included for GET.
func (r *Response) URL() string { return r.url }

func (r *Response) StatusCode() int       { return r.statusCode }
func (r *Response) StatusMessage() string { return r.statusMessage }
func (r *Response) Body() string          { return r.body }

// Headers returns a copy of the response headers. Multi-valued headers are joined by a single
// space in delivery order.
func (r *Response) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

// Header looks up a header value case-insensitively.
func (r *Response) Header(name string) string {
	if v, ok := r.headers[name]; ok {
		return v
	}
	for k, v := range r.headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// IsSuccess reports whether the status code is in [200, 400).
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 400
}
