// Package output renders responses and history for the terminal.
package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/moul/http2curl"
	"github.com/samvad-hq/httpcall/internal/domain"
	"github.com/samvad-hq/httpcall/pkg/httpclient"
	"github.com/tidwall/gjson"
)

// RenderOptions selects what Response prints.
type RenderOptions struct {
	// ShowHeaders prints the status line and headers before the body.
	ShowHeaders bool
	// Query is a gjson path applied to a JSON body; only the match is printed.
	Query string
}

// Printer writes responses to out.
type Printer struct {
	out    io.Writer
	green  *color.Color
	yellow *color.Color
	red    *color.Color
	cyan   *color.Color
	bold   *color.Color
}

// NewPrinter creates a Printer. noColor strips all ANSI sequences.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:    out,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		cyan:   color.New(color.FgCyan),
		bold:   color.New(color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{p.green, p.yellow, p.red, p.cyan, p.bold} {
			c.DisableColor()
		}
	}
	return p
}

// Response prints resp according to opts.
func (p *Printer) Response(resp *httpclient.Response, opts RenderOptions) error {
	if opts.ShowHeaders {
		status := p.statusColor(resp.StatusCode())
		fmt.Fprintln(p.out, status.Sprintf("HTTP %d %s", resp.StatusCode(), resp.StatusMessage()))

		headers := resp.Headers()
		names := make([]string, 0, len(headers))
		for name := range headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(p.out, "%s: %s\n", p.cyan.Sprint(name), headers[name])
		}
		fmt.Fprintln(p.out)
	}

	body := resp.Body()
	if opts.Query != "" {
		if !gjson.Valid(body) {
			return fmt.Errorf("query %q: response body is not valid JSON", opts.Query)
		}
		res := gjson.Get(body, opts.Query)
		if !res.Exists() {
			return fmt.Errorf("query %q matched nothing", opts.Query)
		}
		body = res.String()
	}

	fmt.Fprint(p.out, body)
	if body != "" && body[len(body)-1] != '\n' {
		fmt.Fprintln(p.out)
	}
	return nil
}

// History prints one line per exchange.
func (p *Printer) History(entries []domain.Exchange) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "no exchanges recorded")
		return
	}
	for _, ex := range entries {
		fmt.Fprintf(p.out, "%s  %s %-6s %s %s (%dms)\n",
			ex.At.Local().Format("2006-01-02 15:04:05"),
			ex.ID[:min(8, len(ex.ID))],
			ex.Method,
			p.statusColor(ex.StatusCode).Sprint(ex.StatusCode),
			ex.URL,
			ex.DurationMS,
		)
	}
}

func (p *Printer) statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 400:
		return p.green
	case code >= 400 && code < 500:
		return p.yellow
	default:
		return p.red
	}
}

// Curl renders the request as an equivalent curl command line.
func Curl(req *httpclient.WireRequest) (string, error) {
	httpReq, err := req.HTTPRequest(context.Background())
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	cmd, err := http2curl.GetCurlCommand(httpReq)
	if err != nil {
		return "", fmt.Errorf("render curl: %w", err)
	}
	return cmd.String(), nil
}
